// Package qa composes grounded answers to document questions and
// parses model output into the response contract.
package qa

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUpstream indicates the model invocation failed or timed out.
	ErrUpstream = errors.New("model invocation failed")

	// ErrParse indicates the model returned non-conforming output in
	// structured mode.
	ErrParse = errors.New("unparseable model response")
)

// Mode selects the response contract variant.
type Mode string

const (
	// ModePlain returns a bare answer paired with the full source
	// passage list; the viewer highlights by source selection.
	ModePlain Mode = "plain"

	// ModeStructured asks the model for a JSON object carrying the
	// answer plus a verbatim context substring used for highlighting.
	ModeStructured Mode = "structured"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePlain, "":
		return ModePlain, nil
	case ModeStructured:
		return ModeStructured, nil
	default:
		return "", fmt.Errorf("unknown answer mode %q (supported: plain, structured)", s)
	}
}

// Outcome labels how a pipeline run ended, for logging and metrics.
type Outcome string

const (
	OutcomeAnswered       Outcome = "answered"
	OutcomeNoMatches      Outcome = "no_matches"
	OutcomeRetrievalError Outcome = "retrieval_error"
	OutcomeUpstreamError  Outcome = "upstream_error"
	OutcomeParseError     Outcome = "parse_error"
)

// SourceMetadata tags a source with its page location. PageNumber is
// nil when the chunk carried no page metadata; clients render that as
// an explicit "Unknown" rather than omitting the field.
type SourceMetadata struct {
	PageNumber *int `json:"pageNumber"`
}

// Source is one answer-grounding passage in rank order.
type Source struct {
	PageContent []string       `json:"pageContent"`
	Metadata    SourceMetadata `json:"metadata"`
}

// ContentLines returns the source's cleaned content lines, the
// highlightable view of the source.
func (s Source) ContentLines() []string {
	return s.PageContent
}

// Result is the answer contract returned to clients.
//
// Sources preserve retrieval rank order (index 0 most relevant) and is
// an empty (non-nil) slice for canned fallback answers. Structured-mode
// answers leave Sources nil and carry Search, a verbatim substring of
// the grounding context, instead. Search is only set in structured
// mode.
type Result struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Search  string   `json:"search,omitempty"`

	// Outcome is operational, never serialized to clients.
	Outcome Outcome `json:"-"`
}

// MarshalJSON drops the sources field when Sources is nil, so a
// structured-mode answer serializes as {answer, search}. Plain and
// canned results always serialize sources, as an empty array when
// there are none.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Sources == nil {
		return json.Marshal(struct {
			Answer string `json:"answer"`
			Search string `json:"search,omitempty"`
		}{Answer: r.Answer, Search: r.Search})
	}
	type plain Result
	return json.Marshal(plain(r))
}

// Canned fallback answers. Fixed, pre-authored strings used when the
// pipeline cannot produce a grounded answer.
const (
	cannedDontKnow   = "I don't know the answer to that question."
	cannedError      = "An error occurred while processing your question."
	cannedParseError = "I couldn't parse the model's response. Please try asking again."
)

func dontKnowResult() Result {
	return Result{Answer: cannedDontKnow, Sources: []Source{}, Outcome: OutcomeNoMatches}
}

func errorResult(outcome Outcome) Result {
	return Result{Answer: cannedError, Sources: []Source{}, Outcome: outcome}
}

func parseErrorResult() Result {
	return Result{Answer: cannedParseError, Sources: []Source{}, Outcome: OutcomeParseError}
}
