// Package highlight converts answer and passage text into
// renderer-safe search keywords and drives the rendering surface's
// search capability.
//
// The rendering engine's highlight matching degrades on long or
// irregular strings, so any text destined for highlighting is first
// chunked into bounded-length keyword segments.
package highlight

import "strings"

// Default maximum segment lengths for the two call sites. Programmatic
// highlight-on-answer uses the tighter bound; user-typed interactive
// search tolerates slightly longer segments.
const (
	DefaultAnswerMaxLen = 40
	DefaultSearchMaxLen = 50
)

// Keyword is one bounded-length search unit for the renderer. Matching
// is case-insensitive and substring-tolerant by default: answers may
// differ in casing from the source text.
type Keyword struct {
	Keyword    string `json:"keyword"`
	MatchCase  bool   `json:"matchCase"`
	WholeWords bool   `json:"wholeWords"`
}

// Segment splits text into keyword segments no longer than maxLength.
//
// Words are split on single spaces only; newlines inside joined passage
// lines are not boundaries at this stage. Words accumulate greedily: a
// word that would push the running chunk past maxLength closes the
// chunk and starts the next one.
//
// Invariants:
//   - Rejoining the segments with single spaces reproduces the original
//     word sequence exactly; no word is dropped or duplicated.
//   - No segment exceeds maxLength, except that a single word longer
//     than maxLength is emitted whole. Words are never split.
func Segment(text string, maxLength int) []Keyword {
	words := strings.Split(text, " ")

	var segments []Keyword
	var current string

	for _, word := range words {
		if len(current)+len(word) > maxLength {
			if trimmed := strings.TrimSpace(current); trimmed != "" {
				segments = append(segments, newKeyword(trimmed))
			}
			current = word + " "
		} else {
			current += word + " "
		}
	}

	if trimmed := strings.TrimSpace(current); trimmed != "" {
		segments = append(segments, newKeyword(trimmed))
	}

	return segments
}

func newKeyword(chunk string) Keyword {
	return Keyword{Keyword: chunk, MatchCase: false, WholeWords: false}
}
