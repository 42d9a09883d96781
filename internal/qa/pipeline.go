package qa

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docqd/internal/passage"
	"github.com/fyrsmithlabs/docqd/internal/retrieval"
)

var pipelineTracer = otel.Tracer("docqd.qa.pipeline")

// Pipeline runs one question end to end: retrieve, normalize, compose,
// parse. It carries no per-request state; a single Pipeline serves all
// requests concurrently.
type Pipeline struct {
	retriever  *retrieval.Retriever
	normalizer *passage.Normalizer
	composer   *Composer
	parser     *Parser
	logger     *zap.Logger
}

// NewPipeline wires the question pipeline.
func NewPipeline(retriever *retrieval.Retriever, normalizer *passage.Normalizer, composer *Composer, parser *Parser, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		retriever:  retriever,
		normalizer: normalizer,
		composer:   composer,
		parser:     parser,
		logger:     logger,
	}
}

// Ask answers one question about one document.
//
// Only validation failures surface as errors. Every downstream failure
// is absorbed into a canned Result so clients never need error
// branches beyond transport failure:
//
//	zero matches      -> canned don't-know answer
//	retrieval failure -> canned error answer
//	model failure     -> canned error answer
//	parse failure     -> canned parse-failure answer (no model retry)
func (p *Pipeline) Ask(ctx context.Context, q retrieval.Question) (Result, error) {
	ctx, span := pipelineTracer.Start(ctx, "Pipeline.Ask")
	defer span.End()
	span.SetAttributes(attribute.String("document_id", q.DocumentID))

	retrieveStart := time.Now()
	passages, err := p.retriever.Retrieve(ctx, q)
	StageDuration.WithLabelValues("retrieve").Observe(time.Since(retrieveStart).Seconds())
	if err != nil {
		if errors.Is(err, retrieval.ErrValidation) {
			return Result{}, err
		}
		p.logger.Error("retrieval failed",
			zap.String("document_id", q.DocumentID),
			zap.Error(err),
		)
		return errorResult(OutcomeRetrievalError), nil
	}

	if len(passages) == 0 {
		p.logger.Info("no passages matched",
			zap.String("document_id", q.DocumentID),
		)
		return dontKnowResult(), nil
	}

	normalized := p.normalize(passages)
	if allEmpty(normalized) {
		p.logger.Warn("retrieved passages had no usable content",
			zap.String("document_id", q.DocumentID),
			zap.Int("passages", len(passages)),
		)
		return dontKnowResult(), nil
	}

	composeStart := time.Now()
	raw, err := p.composer.Compose(ctx, q.Text, normalized)
	StageDuration.WithLabelValues("compose").Observe(time.Since(composeStart).Seconds())
	if err != nil {
		p.logger.Error("model invocation failed",
			zap.String("document_id", q.DocumentID),
			zap.Error(err),
		)
		return errorResult(OutcomeUpstreamError), nil
	}

	parseStart := time.Now()
	result, err := p.parser.Parse(raw, normalized)
	StageDuration.WithLabelValues("parse").Observe(time.Since(parseStart).Seconds())
	if err != nil {
		p.logger.Error("unparseable model response",
			zap.String("document_id", q.DocumentID),
			zap.Error(err),
		)
		return parseErrorResult(), nil
	}

	span.SetAttributes(attribute.Int("sources", len(result.Sources)))
	return result, nil
}

// normalize cleans every retrieved passage, preserving rank order and
// page metadata.
func (p *Pipeline) normalize(passages []retrieval.Passage) []passage.Normalized {
	normalized := make([]passage.Normalized, len(passages))
	for i, raw := range passages {
		normalized[i] = passage.Normalized{
			Lines:      p.normalizer.Normalize(raw.RawContent),
			PageNumber: raw.PageNumber,
			HasPage:    raw.HasPage,
		}
	}
	return normalized
}

func allEmpty(passages []passage.Normalized) bool {
	for _, p := range passages {
		if !p.Empty() {
			return false
		}
	}
	return true
}
