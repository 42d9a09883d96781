package passage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer(t *testing.T, cfg Config) *Normalizer {
	t.Helper()
	cfg.ApplyDefaults()
	n, err := NewNormalizer(cfg)
	require.NoError(t, err)
	return n
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "header stripped and whitespace collapsed",
			raw:  "Header: Section 2\nThe   fee is  $500...ignore this",
			want: []string{"The fee is $500"},
		},
		{
			name: "no newline leaves content without header strip",
			raw:  "single line without header",
			want: []string{"single line without header"},
		},
		{
			name: "multiline chunk keeps line segmentation",
			raw:  "page 3 of contract.pdf\nFirst sentence here.\nSecond sentence here.",
			want: []string{"First sentence here.", "Second sentence here."},
		},
		{
			name: "empty lines retained",
			raw:  "hdr\nfirst\n\nsecond",
			want: []string{"first", "", "second"},
		},
		{
			name: "only first ellipsis removed to end of its line",
			raw:  "hdr\ncut here...trailing junk\nnext line survives",
			want: []string{"cut here", "next line survives"},
		},
		{
			name: "four dots treated as truncation marker",
			raw:  "hdr\nvalue is 7....rest",
			want: []string{"value is 7"},
		},
		{
			name: "tabs collapse but newlines survive",
			raw:  "hdr\na\t\tb\nc   d",
			want: []string{"a b", "c d"},
		},
		{
			name: "header only chunk becomes empty",
			raw:  "just a header line\n",
			want: []string{""},
		},
	}

	n := newTestNormalizer(t, Config{StripHeader: true})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := newTestNormalizer(t, Config{StripHeader: true})
	raw := "hdr\nsome  text...cut\nmore"
	first := n.Normalize(raw)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, n.Normalize(raw))
	}
}

func TestNormalizeNoHeaderStrip(t *testing.T) {
	n := newTestNormalizer(t, Config{StripHeader: false})
	got := n.Normalize("first line\nsecond line")
	assert.Equal(t, []string{"first line", "second line"}, got)
}

func TestNormalizeTruncationDisabled(t *testing.T) {
	cfg := Config{StripHeader: true, TruncationMarker: ""}
	// Bypass ApplyDefaults: empty marker means truncation off.
	n, err := NewNormalizer(cfg)
	require.NoError(t, err)
	got := n.Normalize("hdr\nkeep...everything")
	assert.Equal(t, []string{"keep...everything"}, got)
}

func TestNormalizeBadMarker(t *testing.T) {
	_, err := NewNormalizer(Config{TruncationMarker: "("})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncation marker")
}

func TestNormalizedEmpty(t *testing.T) {
	assert.True(t, Normalized{Lines: []string{""}}.Empty())
	assert.True(t, Normalized{Lines: []string{" ", "\t"}}.Empty())
	assert.True(t, Normalized{}.Empty())
	assert.False(t, Normalized{Lines: []string{"", "text"}}.Empty())
}

func TestNormalizedText(t *testing.T) {
	n := Normalized{Lines: []string{"a", "b", "c"}}
	assert.Equal(t, "a\nb\nc", n.Text())
	assert.Equal(t, 2, strings.Count(n.Text(), "\n"))
}
