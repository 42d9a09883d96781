package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rejoin reconstructs the word sequence from segments.
func rejoin(segments []Keyword) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Keyword
	}
	return strings.Join(parts, " ")
}

func TestSegmentChunking(t *testing.T) {
	got := Segment("aaaa bbbb cccc dddd", 9)

	require.NotEmpty(t, got)
	assert.Equal(t, "aaaa bbbb cccc dddd", rejoin(got))
	for _, seg := range got {
		assert.LessOrEqual(t, len(seg.Keyword), 9)
	}
}

func TestSegmentPreservesWords(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLength int
	}{
		{"short text single segment", "hello world", 40},
		{"exact boundary", "abcd efgh", 9},
		{"one word per segment", "alpha beta gamma delta", 5},
		{"long sentence", "the quick brown fox jumps over the lazy dog near the river bank", 20},
		{"single word", "word", 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.text, tt.maxLength)
			assert.Equal(t, tt.text, rejoin(got), "word sequence must be preserved")
			for _, seg := range got {
				assert.LessOrEqual(t, len(seg.Keyword), tt.maxLength)
			}
		})
	}
}

func TestSegmentOversizedWord(t *testing.T) {
	word := strings.Repeat("x", 60)
	got := Segment("small "+word+" tail", 10)

	assert.Equal(t, "small "+word+" tail", rejoin(got))

	// The oversized word is emitted whole, never split mid-word.
	var found bool
	for _, seg := range got {
		if seg.Keyword == word {
			found = true
		} else {
			assert.LessOrEqual(t, len(seg.Keyword), 10)
		}
	}
	assert.True(t, found, "oversized word must appear unsplit")
}

func TestSegmentOnlyOversizedWord(t *testing.T) {
	word := strings.Repeat("y", 45)
	got := Segment(word, 40)
	require.Len(t, got, 1)
	assert.Equal(t, word, got[0].Keyword)
}

func TestSegmentMatchPolicy(t *testing.T) {
	for _, seg := range Segment("case Insensitive Matching policy", 12) {
		assert.False(t, seg.MatchCase)
		assert.False(t, seg.WholeWords)
	}
}

func TestSegmentEmpty(t *testing.T) {
	assert.Empty(t, Segment("", 40))
}

func TestSegmentNewlinesNotBoundaries(t *testing.T) {
	// Newlines inside joined passage lines are not split points; the
	// word containing one stays intact.
	got := Segment("first\nsecond third", 40)
	require.Len(t, got, 1)
	assert.Equal(t, "first\nsecond third", got[0].Keyword)
}
