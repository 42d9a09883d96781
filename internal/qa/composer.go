package qa

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/docqd/internal/llm"
	"github.com/fyrsmithlabs/docqd/internal/passage"
)

var composerTracer = otel.Tracer("docqd.qa.composer")

// promptPreamble grounds the model: answer only from the supplied
// context and decline when it is insufficient.
const promptPreamble = `You are a helpful AI assistant. Using the following context from the document,
please answer the question accurately and concisely. If the context doesn't contain
relevant information to answer the question, please say so.`

// structuredInstruction extends the preamble for structured mode. The
// "consecutive part of the context" constraint is load-bearing:
// highlighting only works if the search text literally appears in the
// source passages.
const structuredInstruction = `Respond with a JSON object containing exactly two keys:
"answer" (your answer as a string) and "search" (a consecutive, verbatim part of the
context above that supports the answer, copied character for character). Do not add
any other keys or any text outside the JSON object.`

// Composer builds the grounding prompt and invokes the model.
type Composer struct {
	model llm.Model
	mode  Mode
}

// NewComposer creates a Composer for the given mode.
func NewComposer(model llm.Model, mode Mode) *Composer {
	return &Composer{model: model, mode: mode}
}

// ContextText joins normalized passages into the context block the
// prompt embeds: each passage's lines joined by newline, passages
// concatenated in rank order separated by newline.
func ContextText(passages []passage.Normalized) string {
	blocks := make([]string, len(passages))
	for i, p := range passages {
		blocks[i] = p.Text()
	}
	return strings.Join(blocks, "\n")
}

// BuildPrompt assembles the grounding prompt for a question over the
// given context block.
func (c *Composer) BuildPrompt(question, contextText string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nContext:\n```\n")
	b.WriteString(contextText)
	b.WriteString("\n```\n\nQuestion: ")
	b.WriteString(question)
	if c.mode == ModeStructured {
		b.WriteString("\n\n")
		b.WriteString(structuredInstruction)
	}
	return b.String()
}

// Compose invokes the model with the grounding prompt and returns its
// raw output. Failures wrap ErrUpstream; the caller substitutes a
// canned answer rather than propagating.
func (c *Composer) Compose(ctx context.Context, question string, passages []passage.Normalized) (string, error) {
	ctx, span := composerTracer.Start(ctx, "Composer.Compose")
	defer span.End()
	span.SetAttributes(
		attribute.String("mode", string(c.mode)),
		attribute.Int("passages", len(passages)),
	)

	prompt := c.BuildPrompt(question, ContextText(passages))

	out, err := c.model.Invoke(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return out, nil
}
