package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer records every search call and jump, standing in for a
// mounted rendering surface.
type fakeRenderer struct {
	searches [][]Keyword
	next     int
	previous int
}

func (f *fakeRenderer) Search(keywords []Keyword) error {
	f.searches = append(f.searches, keywords)
	return nil
}

func (f *fakeRenderer) JumpToNextMatch() error {
	f.next++
	return nil
}

func (f *fakeRenderer) JumpToPreviousMatch() error {
	f.previous++
	return nil
}

type fakeSource struct {
	lines []string
}

func (f fakeSource) ContentLines() []string { return f.lines }

func TestDispatcherGuardsUnattachedRenderer(t *testing.T) {
	d := NewDispatcher(Config{}, nil)

	assert.False(t, d.Ready())
	assert.ErrorIs(t, d.HighlightTopSource([]Source{fakeSource{lines: []string{"x"}}}), ErrNotReady)
	assert.ErrorIs(t, d.HighlightAnswerSearch("text"), ErrNotReady)
	assert.ErrorIs(t, d.SearchText("text"), ErrNotReady)
	assert.ErrorIs(t, d.Next(), ErrNotReady)
	assert.ErrorIs(t, d.Previous(), ErrNotReady)
}

func TestDispatcherHighlightTopSource(t *testing.T) {
	r := &fakeRenderer{}
	d := NewDispatcher(Config{}, nil)
	d.Attach(r)

	sources := []Source{
		fakeSource{lines: []string{"the termination clause applies", "after thirty days notice"}},
		fakeSource{lines: []string{"second source"}},
	}

	require.NoError(t, d.HighlightTopSource(sources))
	require.Len(t, r.searches, 1)

	// Lines are joined with spaces before segmentation, so segments
	// come from the first source only.
	assert.Equal(t, "the termination clause applies after thirty days notice", rejoin(r.searches[0]))
	for _, seg := range r.searches[0] {
		assert.LessOrEqual(t, len(seg.Keyword), DefaultAnswerMaxLen)
	}
}

func TestDispatcherReplacesHighlightSet(t *testing.T) {
	r := &fakeRenderer{}
	d := NewDispatcher(Config{}, nil)
	d.Attach(r)

	sources := []Source{
		fakeSource{lines: []string{"first source content"}},
		fakeSource{lines: []string{"second source content"}},
	}

	require.NoError(t, d.HighlightTopSource(sources))
	require.NoError(t, d.HighlightSource(sources, 1))

	// Each dispatch is one Search call; the renderer owns replacement.
	require.Len(t, r.searches, 2)
	assert.Equal(t, "second source content", rejoin(r.searches[1]))
}

func TestDispatcherSourceIndexOutOfRange(t *testing.T) {
	d := NewDispatcher(Config{}, nil)
	d.Attach(&fakeRenderer{})

	assert.ErrorIs(t, d.HighlightSource(nil, 0), ErrNoSources)
	assert.ErrorIs(t, d.HighlightSource([]Source{fakeSource{}}, 1), ErrNoSources)
	assert.ErrorIs(t, d.HighlightSource([]Source{fakeSource{}}, -1), ErrNoSources)
}

func TestDispatcherHighlightAnswerSearch(t *testing.T) {
	r := &fakeRenderer{}
	d := NewDispatcher(Config{}, nil)
	d.Attach(r)

	// Trailing period, surrounding space, and internal runs are
	// normalized away before segmentation.
	require.NoError(t, d.HighlightAnswerSearch("  The fee   is $500. "))
	require.Len(t, r.searches, 1)
	assert.Equal(t, "The fee is $500", rejoin(r.searches[0]))
}

func TestDispatcherHighlightAnswerSearchEmpty(t *testing.T) {
	r := &fakeRenderer{}
	d := NewDispatcher(Config{}, nil)
	d.Attach(r)

	require.NoError(t, d.HighlightAnswerSearch("  . "))
	assert.Empty(t, r.searches)
}

func TestDispatcherSearchText(t *testing.T) {
	r := &fakeRenderer{}
	d := NewDispatcher(Config{AnswerMaxLen: 40, SearchMaxLen: 50}, nil)
	d.Attach(r)

	long := "one two three four five six seven eight nine ten eleven twelve"
	require.NoError(t, d.SearchText(long))
	require.Len(t, r.searches, 1)
	assert.Equal(t, long, rejoin(r.searches[0]))
	for _, seg := range r.searches[0] {
		assert.LessOrEqual(t, len(seg.Keyword), 50)
	}

	// Blank queries never reach the renderer.
	require.NoError(t, d.SearchText("   "))
	assert.Len(t, r.searches, 1)
}

func TestDispatcherNavigation(t *testing.T) {
	r := &fakeRenderer{}
	d := NewDispatcher(Config{}, nil)
	d.Attach(r)

	require.NoError(t, d.Next())
	require.NoError(t, d.Next())
	require.NoError(t, d.Previous())
	assert.Equal(t, 2, r.next)
	assert.Equal(t, 1, r.previous)
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultAnswerMaxLen, cfg.AnswerMaxLen)
	assert.Equal(t, DefaultSearchMaxLen, cfg.SearchMaxLen)
}
