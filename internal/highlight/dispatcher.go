package highlight

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ErrNotReady is returned when a dispatch method is called before a
// renderer has been attached. The renderer must be mounted before its
// search capability is invoked; this is a guard, not a race.
var ErrNotReady = errors.New("renderer not attached")

// ErrNoSources is returned when a highlight is requested for a result
// that carries no sources.
var ErrNoSources = errors.New("result has no sources")

// Renderer is the search capability a rendering surface exposes. The
// dispatcher holds a handle to it but does not otherwise control the
// surface; match-index state lives behind this interface.
type Renderer interface {
	// Search replaces the current highlight set with matches for the
	// given keyword segments.
	Search(keywords []Keyword) error

	// JumpToNextMatch and JumpToPreviousMatch navigate the current
	// highlight set.
	JumpToNextMatch() error
	JumpToPreviousMatch() error
}

// Source is the highlightable view of one answer source: its cleaned
// content lines.
type Source interface {
	ContentLines() []string
}

// Config bounds segment lengths for the two dispatch entry points.
type Config struct {
	// AnswerMaxLen applies to programmatic highlighting of answer
	// sources. Default 40.
	AnswerMaxLen int `koanf:"answer_max_len"`

	// SearchMaxLen applies to user-typed interactive search. Default 50.
	SearchMaxLen int `koanf:"search_max_len"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.AnswerMaxLen == 0 {
		c.AnswerMaxLen = DefaultAnswerMaxLen
	}
	if c.SearchMaxLen == 0 {
		c.SearchMaxLen = DefaultSearchMaxLen
	}
}

// Dispatcher turns source selections and typed queries into renderer
// search calls. Each dispatch replaces the previous highlight set.
type Dispatcher struct {
	config   Config
	logger   *zap.Logger
	renderer Renderer
}

// NewDispatcher creates a Dispatcher. The renderer is attached later,
// once the rendering surface is mounted.
func NewDispatcher(cfg Config, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	return &Dispatcher{config: cfg, logger: logger}
}

// Attach hands the dispatcher a mounted renderer. Passing nil detaches.
func (d *Dispatcher) Attach(r Renderer) {
	d.renderer = r
}

// Ready reports whether a renderer is attached.
func (d *Dispatcher) Ready() bool {
	return d.renderer != nil
}

// HighlightTopSource highlights the top-ranked source of a new result,
// the default "show me where the answer came from" behavior.
func (d *Dispatcher) HighlightTopSource(sources []Source) error {
	return d.HighlightSource(sources, 0)
}

// HighlightSource highlights the source at index i, replacing any
// previous highlight set.
func (d *Dispatcher) HighlightSource(sources []Source, i int) error {
	if d.renderer == nil {
		return ErrNotReady
	}
	if i < 0 || i >= len(sources) {
		return ErrNoSources
	}

	text := strings.Join(sources[i].ContentLines(), " ")
	keywords := Segment(text, d.config.AnswerMaxLen)

	d.logger.Debug("highlighting source",
		zap.Int("source_index", i),
		zap.Int("segments", len(keywords)),
	)

	return d.renderer.Search(keywords)
}

// answerSearchSpace collapses whitespace runs in the model's search
// string before segmentation.
var answerSearchSpace = regexp.MustCompile(`\s+`)

// HighlightAnswerSearch highlights the verbatim context substring a
// structured-mode answer carries. The string comes back from the model
// with cosmetic noise, so surrounding whitespace, a trailing period,
// and internal whitespace runs are normalized first.
func (d *Dispatcher) HighlightAnswerSearch(search string) error {
	if d.renderer == nil {
		return ErrNotReady
	}

	s := strings.TrimSpace(search)
	s = strings.TrimSuffix(s, ".")
	s = answerSearchSpace.ReplaceAllString(s, " ")
	if s == "" {
		return nil
	}

	keywords := Segment(s, d.config.AnswerMaxLen)

	d.logger.Debug("highlighting answer search text",
		zap.Int("segments", len(keywords)),
	)

	return d.renderer.Search(keywords)
}

// SearchText is the user-typed entry point, independent of the answer
// pipeline. Same segmentation contract, looser length bound.
func (d *Dispatcher) SearchText(query string) error {
	if d.renderer == nil {
		return ErrNotReady
	}
	if strings.TrimSpace(query) == "" {
		return nil
	}

	return d.renderer.Search(Segment(query, d.config.SearchMaxLen))
}

// Next jumps to the next match in the current highlight set.
func (d *Dispatcher) Next() error {
	if d.renderer == nil {
		return ErrNotReady
	}
	return d.renderer.JumpToNextMatch()
}

// Previous jumps to the previous match in the current highlight set.
func (d *Dispatcher) Previous() error {
	if d.renderer == nil {
		return ErrNotReady
	}
	return d.renderer.JumpToPreviousMatch()
}
