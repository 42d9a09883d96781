// Package retrieval turns a question into the top-K most relevant
// passages of one document.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docqd/internal/vectorstore"
)

var tracer = otel.Tracer("docqd.retrieval")

var (
	// ErrValidation indicates a missing/empty question or document ID.
	// Rejected before any store call.
	ErrValidation = errors.New("invalid question")

	// ErrRetrieval indicates the similarity index call failed.
	ErrRetrieval = errors.New("retrieval failed")
)

// DefaultTopK balances context completeness against prompt size.
// Policy, not user-controlled.
const DefaultTopK = 4

// documentIDKey is the metadata key every indexed chunk carries.
const documentIDKey = "document_id"

// pageNumberKeys are the metadata keys checked, in order, for a
// chunk's page location. The primary key is the flattened form the
// ingestion pipeline writes.
var pageNumberKeys = []string{"loc.pageNumber", "pageNumber", "page"}

// Question is one user question scoped to one document.
type Question struct {
	Text       string
	DocumentID string
}

// Validate checks the question invariants.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question is required", ErrValidation)
	}
	if q.DocumentID == "" {
		return fmt.Errorf("%w: documentId is required", ErrValidation)
	}
	return nil
}

// Passage is one retrieved chunk with its page location. Immutable
// once produced.
type Passage struct {
	// RawContent is the chunk text as stored, header line included.
	RawContent string

	// PageNumber is valid only when HasPage is true.
	PageNumber int
	HasPage    bool
}

// Config holds retrieval configuration.
type Config struct {
	// TopK is the number of passages retrieved per question.
	TopK int `koanf:"top_k"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.TopK == 0 {
		c.TopK = DefaultTopK
	}
}

// Retriever queries the vector store scoped to a single document.
type Retriever struct {
	store  vectorstore.Store
	config Config
	logger *zap.Logger
}

// NewRetriever creates a Retriever over the given store.
func NewRetriever(store vectorstore.Store, cfg Config, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	return &Retriever{store: store, config: cfg, logger: logger}
}

// Retrieve returns the top-K passages of the question's document,
// ordered by descending relevance.
//
// An empty result is a valid terminal state, not an error: the caller
// short-circuits to the canned don't-know answer.
func (r *Retriever) Retrieve(ctx context.Context, q Question) ([]Passage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "Retriever.Retrieve")
	defer span.End()
	span.SetAttributes(
		attribute.String("document_id", q.DocumentID),
		attribute.Int("k", r.config.TopK),
	)

	results, err := r.store.SearchWithFilters(ctx, q.Text, r.config.TopK,
		map[string]interface{}{documentIDKey: q.DocumentID})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	passages := make([]Passage, 0, len(results))
	for _, res := range results {
		p := Passage{RawContent: res.Content}
		if page, ok := pageNumber(res.Metadata); ok {
			p.PageNumber = page
			p.HasPage = true
		}
		passages = append(passages, p)
	}

	span.SetAttributes(attribute.Int("passages", len(passages)))

	r.logger.Debug("retrieved passages",
		zap.String("document_id", q.DocumentID),
		zap.Int("count", len(passages)),
	)

	return passages, nil
}

// pageNumber extracts a page location from chunk metadata. Stores
// round-trip metadata values through different scalar types, so all
// plausible encodings are accepted.
func pageNumber(metadata map[string]interface{}) (int, bool) {
	for _, key := range pageNumberKeys {
		v, ok := metadata[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case int:
			return val, true
		case int64:
			return int(val), true
		case float64:
			return int(val), true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
