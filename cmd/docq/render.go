package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fyrsmithlabs/docqd/internal/highlight"
)

// span is one matched region within a line.
type span struct {
	line  int
	start int
	end   int
}

// termRenderer implements highlight.Renderer over a block of source
// lines, marking matched regions when the block is printed.
type termRenderer struct {
	w       io.Writer
	lines   []string
	spans   []span
	current int

	// markStart and markEnd wrap each matched region. Defaulting to
	// ANSI reverse video; tests swap in visible markers.
	markStart string
	markEnd   string
}

func newTermRenderer(w io.Writer) *termRenderer {
	return &termRenderer{
		w:         w,
		current:   -1,
		markStart: "\x1b[7m",
		markEnd:   "\x1b[0m",
	}
}

// SetLines replaces the rendered block and clears the highlight set.
func (r *termRenderer) SetLines(lines []string) {
	r.lines = lines
	r.spans = nil
	r.current = -1
}

// foldedLine pairs a case-folded line with a byte-offset table back
// into the original. Lowercasing can change a rune's UTF-8 length
// (İ shrinks, Ⱥ grows), so match indices in the folded text cannot be
// used on the original line directly.
type foldedLine struct {
	text string
	// back[i] is the original byte offset of the folded byte i;
	// back[len(text)] is len(original).
	back []int
}

func foldLine(s string) foldedLine {
	var b strings.Builder
	b.Grow(len(s))
	back := make([]int, 0, len(s)+1)
	for i, r := range s {
		lr := unicode.ToLower(r)
		for j := 0; j < utf8.RuneLen(lr); j++ {
			back = append(back, i)
		}
		b.WriteRune(lr)
	}
	back = append(back, len(s))
	return foldedLine{text: b.String(), back: back}
}

// Search replaces the current highlight set with matches for the given
// keyword segments. Matching honors each keyword's case flag; a
// keyword may match several times across lines.
func (r *termRenderer) Search(keywords []highlight.Keyword) error {
	r.spans = nil
	r.current = -1

	for _, kw := range keywords {
		if kw.Keyword == "" {
			continue
		}
		for i, line := range r.lines {
			haystack := line
			needle := kw.Keyword
			var back []int
			if !kw.MatchCase {
				folded := foldLine(line)
				haystack = folded.text
				back = folded.back
				needle = strings.ToLower(kw.Keyword)
			}

			offset := 0
			for {
				idx := strings.Index(haystack[offset:], needle)
				if idx < 0 {
					break
				}
				start := offset + idx
				end := start + len(needle)
				origStart, origEnd := start, end
				if back != nil {
					origStart, origEnd = back[start], back[end]
				}
				r.spans = append(r.spans, span{line: i, start: origStart, end: origEnd})
				offset = end
			}
		}
	}

	sort.Slice(r.spans, func(a, b int) bool {
		if r.spans[a].line != r.spans[b].line {
			return r.spans[a].line < r.spans[b].line
		}
		return r.spans[a].start < r.spans[b].start
	})

	if len(r.spans) > 0 {
		r.current = 0
	}

	return nil
}

// JumpToNextMatch advances the current match, wrapping around.
func (r *termRenderer) JumpToNextMatch() error {
	if len(r.spans) == 0 {
		return nil
	}
	r.current = (r.current + 1) % len(r.spans)
	return nil
}

// JumpToPreviousMatch steps back to the previous match, wrapping.
func (r *termRenderer) JumpToPreviousMatch() error {
	if len(r.spans) == 0 {
		return nil
	}
	r.current = (r.current - 1 + len(r.spans)) % len(r.spans)
	return nil
}

// MatchCount returns the size of the current highlight set.
func (r *termRenderer) MatchCount() int {
	return len(r.spans)
}

// Render prints the block with every matched region marked.
func (r *termRenderer) Render() error {
	for i, line := range r.lines {
		if _, err := fmt.Fprintln(r.w, r.markLine(i, line)); err != nil {
			return err
		}
	}
	if len(r.spans) > 0 {
		if _, err := fmt.Fprintf(r.w, "(%d matched segments)\n", len(r.spans)); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurrent prints the current match's position and its line with
// every matched region on that line marked.
func (r *termRenderer) RenderCurrent() error {
	if r.current < 0 || r.current >= len(r.spans) {
		_, err := fmt.Fprintln(r.w, "No matches.")
		return err
	}
	s := r.spans[r.current]
	_, err := fmt.Fprintf(r.w, "match %d/%d line %d: %s\n",
		r.current+1, len(r.spans), s.line+1, r.markLine(s.line, r.lines[s.line]))
	return err
}

// markLine wraps the line's matched regions in the configured markers.
// Overlapping spans are merged so markers never nest.
func (r *termRenderer) markLine(lineIdx int, line string) string {
	var regions []span
	for _, s := range r.spans {
		if s.line == lineIdx {
			regions = append(regions, s)
		}
	}
	if len(regions) == 0 {
		return line
	}

	merged := regions[:1]
	for _, s := range regions[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	prev := 0
	for _, s := range merged {
		b.WriteString(line[prev:s.start])
		b.WriteString(r.markStart)
		b.WriteString(line[s.start:s.end])
		b.WriteString(r.markEnd)
		prev = s.end
	}
	b.WriteString(line[prev:])
	return b.String()
}
