// Package passage cleans raw retrieved chunk text into stable,
// comparable line sequences.
//
// Chunks coming back from the vector store carry artifacts of the
// ingestion chunker: a non-semantic header line, irregular whitespace,
// and mid-sentence truncation markers. None of that may leak into the
// grounding prompt or the highlight keywords, so every retrieved chunk
// passes through a Normalizer before anything else sees it.
package passage

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTruncationMarker matches three or more consecutive dots and
// everything after them. Ingestion marks mid-sentence cuts this way.
const DefaultTruncationMarker = `\.{3,}.*`

// Config captures the assumptions the Normalizer makes about the
// ingestion chunker's output shape. They are configuration rather than
// hardcoded regex so the normalizer can follow an ingestion format change.
type Config struct {
	// StripHeader drops the first line of each chunk. The default
	// chunker prefixes every chunk with a source/page marker line.
	StripHeader bool `koanf:"strip_header"`

	// TruncationMarker is a regexp source. The first match and
	// everything after it is removed. Empty disables truncation.
	TruncationMarker string `koanf:"truncation_marker"`
}

// ApplyDefaults sets default values for unset fields.
//
// StripHeader is not defaulted here: its zero value is meaningful and
// the config loader owns the default (true).
func (c *Config) ApplyDefaults() {
	if c.TruncationMarker == "" {
		c.TruncationMarker = DefaultTruncationMarker
	}
}

// Normalized is a cleaned passage ready for prompting and highlighting.
type Normalized struct {
	// Lines preserves the chunk's original newline segmentation. Empty
	// lines are retained so downstream highlighting granularity matches
	// the source layout.
	Lines []string

	// PageNumber is the 1-based page the chunk came from. Only valid
	// when HasPage is true.
	PageNumber int
	HasPage    bool
}

// Empty reports whether the passage has no usable content. Callers must
// treat an empty passage as "nothing to ground on" and fall back to the
// canned empty-state answer.
func (n Normalized) Empty() bool {
	for _, line := range n.Lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// Text joins the passage lines back into a single block, the form the
// grounding prompt embeds.
func (n Normalized) Text() string {
	return strings.Join(n.Lines, "\n")
}

// Normalizer deterministically cleans raw chunk content.
type Normalizer struct {
	stripHeader bool
	truncation  *regexp.Regexp
}

// headerLine matches the first line of a chunk, newline included. The
// anchored start means content without any newline is left untouched.
var headerLine = regexp.MustCompile(`^[^\n]*\n`)

// interiorSpace matches runs of non-newline whitespace.
var interiorSpace = regexp.MustCompile(`[^\S\n]+`)

// NewNormalizer creates a Normalizer from config.
func NewNormalizer(cfg Config) (*Normalizer, error) {
	n := &Normalizer{stripHeader: cfg.StripHeader}
	if cfg.TruncationMarker != "" {
		re, err := regexp.Compile(cfg.TruncationMarker)
		if err != nil {
			return nil, fmt.Errorf("compiling truncation marker %q: %w", cfg.TruncationMarker, err)
		}
		n.truncation = re
	}
	return n, nil
}

// Normalize cleans raw chunk content into an ordered line sequence.
//
// Steps, in order:
//  1. Drop the header line (only when a newline exists).
//  2. Collapse runs of non-newline whitespace to a single space; trim.
//  3. Cut at the first truncation marker.
//  4. Split on newlines, retaining empty lines.
//
// The function is pure: identical input always yields identical output.
func (n *Normalizer) Normalize(raw string) []string {
	s := raw
	if n.stripHeader {
		s = headerLine.ReplaceAllString(s, "")
	}

	s = strings.TrimSpace(interiorSpace.ReplaceAllString(s, " "))

	// Remove only the first match. The marker pattern stops at the end
	// of its line, so later lines of the chunk survive.
	if n.truncation != nil {
		if loc := n.truncation.FindStringIndex(s); loc != nil {
			s = s[:loc[0]] + s[loc[1]:]
		}
	}

	return strings.Split(s, "\n")
}
