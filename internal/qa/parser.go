package qa

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/docqd/internal/passage"
)

// Parser turns raw model output into a Result according to the mode.
type Parser struct {
	mode Mode
}

// NewParser creates a Parser for the given mode.
func NewParser(mode Mode) *Parser {
	return &Parser{mode: mode}
}

// structuredOutput is the exact shape structured mode demands.
type structuredOutput struct {
	Answer string `json:"answer"`
	Search string `json:"search"`
}

// Parse builds the response contract from the model's raw output.
//
// Plain mode pairs the answer with the full ordered source list; no
// substring extraction is attempted. Structured mode decodes strictly
// into {answer, search}; a decode failure returns ErrParse and the
// caller substitutes the canned parse-failure answer without retrying
// the model.
func (p *Parser) Parse(raw string, passages []passage.Normalized) (Result, error) {
	switch p.mode {
	case ModeStructured:
		return p.parseStructured(raw)
	default:
		return Result{
			Answer:  strings.TrimSpace(raw),
			Sources: buildSources(passages),
			Outcome: OutcomeAnswered,
		}, nil
	}
}

func (p *Parser) parseStructured(raw string) (Result, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()

	var out structuredOutput
	if err := dec.Decode(&out); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if out.Answer == "" {
		return Result{}, fmt.Errorf("%w: missing answer field", ErrParse)
	}

	// Sources stays nil so the serialized result is {answer, search};
	// structured answers locate the answer via the search substring
	// rather than a source list.
	return Result{
		Answer:  out.Answer,
		Search:  out.Search,
		Outcome: OutcomeAnswered,
	}, nil
}

// stripCodeFence removes a surrounding markdown code fence. Models
// routinely wrap JSON output in one despite instructions.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// buildSources converts normalized passages into response sources,
// preserving rank order.
func buildSources(passages []passage.Normalized) []Source {
	sources := make([]Source, len(passages))
	for i, p := range passages {
		src := Source{PageContent: p.Lines, Metadata: SourceMetadata{}}
		if p.HasPage {
			page := p.PageNumber
			src.Metadata.PageNumber = &page
		}
		sources[i] = src
	}
	return sources
}
