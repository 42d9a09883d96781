package qa

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docqd/internal/passage"
	"github.com/fyrsmithlabs/docqd/internal/retrieval"
	"github.com/fyrsmithlabs/docqd/internal/vectorstore"
)

// scriptedStore returns fixed search results.
type scriptedStore struct {
	results []vectorstore.SearchResult
	err     error
}

func (s *scriptedStore) AddDocuments(ctx context.Context, docs []vectorstore.Document) ([]string, error) {
	return nil, nil
}

func (s *scriptedStore) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	return s.results, s.err
}

func (s *scriptedStore) SearchWithFilters(ctx context.Context, query string, k int, filters map[string]interface{}) ([]vectorstore.SearchResult, error) {
	return s.results, s.err
}

func (s *scriptedStore) Close() error { return nil }

func newTestPipeline(t *testing.T, store vectorstore.Store, model *fakeModel, mode Mode) *Pipeline {
	t.Helper()

	cfg := passage.Config{StripHeader: true}
	cfg.ApplyDefaults()
	normalizer, err := passage.NewNormalizer(cfg)
	require.NoError(t, err)

	retriever := retrieval.NewRetriever(store, retrieval.Config{}, zap.NewNop())
	return NewPipeline(retriever, normalizer, NewComposer(model, mode), NewParser(mode), zap.NewNop())
}

func contractStore() *scriptedStore {
	return &scriptedStore{
		results: []vectorstore.SearchResult{
			{
				Content:  "contract.pdf page 3\nThe termination clause requires thirty days notice.",
				Metadata: map[string]interface{}{"document_id": "doc-1", "loc.pageNumber": 3},
			},
			{
				Content:  "contract.pdf page 5\nEarly termination incurs a fee of $500...truncated",
				Metadata: map[string]interface{}{"document_id": "doc-1", "loc.pageNumber": 5},
			},
		},
	}
}

func TestAskPlainMode(t *testing.T) {
	model := &fakeModel{response: "Thirty days notice is required."}
	p := newTestPipeline(t, contractStore(), model, ModePlain)

	result, err := p.Ask(context.Background(), retrieval.Question{
		Text:       "What is the termination clause?",
		DocumentID: "doc-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Thirty days notice is required.", result.Answer)
	assert.Equal(t, OutcomeAnswered, result.Outcome)
	require.Len(t, result.Sources, 2)

	// Sources in rank order with their page numbers.
	require.NotNil(t, result.Sources[0].Metadata.PageNumber)
	assert.Equal(t, 3, *result.Sources[0].Metadata.PageNumber)
	require.NotNil(t, result.Sources[1].Metadata.PageNumber)
	assert.Equal(t, 5, *result.Sources[1].Metadata.PageNumber)

	// Normalization applied: header gone, truncation marker removed.
	assert.Equal(t, []string{"The termination clause requires thirty days notice."}, result.Sources[0].PageContent)
	assert.Equal(t, []string{"Early termination incurs a fee of $500"}, result.Sources[1].PageContent)

	// The prompt embeds cleaned context, not raw chunk text.
	assert.Contains(t, model.prompt, "The termination clause requires thirty days notice.")
	assert.NotContains(t, model.prompt, "contract.pdf page 3")
	assert.NotContains(t, model.prompt, "truncated")
}

func TestAskStructuredMode(t *testing.T) {
	model := &fakeModel{response: `{"answer":"A $500 fee applies.","search":"a fee of $500"}`}
	p := newTestPipeline(t, contractStore(), model, ModeStructured)

	result, err := p.Ask(context.Background(), retrieval.Question{Text: "What fee?", DocumentID: "doc-1"})
	require.NoError(t, err)

	assert.Equal(t, "A $500 fee applies.", result.Answer)
	assert.Equal(t, "a fee of $500", result.Search)
	assert.Empty(t, result.Sources)
}

func TestAskValidationSurfacesError(t *testing.T) {
	p := newTestPipeline(t, contractStore(), &fakeModel{}, ModePlain)

	_, err := p.Ask(context.Background(), retrieval.Question{Text: "  ", DocumentID: "doc-1"})
	assert.ErrorIs(t, err, retrieval.ErrValidation)
}

func TestAskNoMatches(t *testing.T) {
	model := &fakeModel{}
	p := newTestPipeline(t, &scriptedStore{}, model, ModePlain)

	result, err := p.Ask(context.Background(), retrieval.Question{Text: "q", DocumentID: "doc-1"})
	require.NoError(t, err)

	assert.Equal(t, "I don't know the answer to that question.", result.Answer)
	assert.Empty(t, result.Sources)
	assert.Equal(t, OutcomeNoMatches, result.Outcome)
	// The model is never invoked without grounding context.
	assert.Zero(t, model.calls)
}

func TestAskRetrievalFailure(t *testing.T) {
	p := newTestPipeline(t, &scriptedStore{err: errors.New("index down")}, &fakeModel{}, ModePlain)

	result, err := p.Ask(context.Background(), retrieval.Question{Text: "q", DocumentID: "doc-1"})
	require.NoError(t, err)

	assert.Equal(t, "An error occurred while processing your question.", result.Answer)
	assert.Empty(t, result.Sources)
	assert.Equal(t, OutcomeRetrievalError, result.Outcome)
}

func TestAskModelFailure(t *testing.T) {
	p := newTestPipeline(t, contractStore(), &fakeModel{err: errors.New("rate limited")}, ModePlain)

	result, err := p.Ask(context.Background(), retrieval.Question{Text: "q", DocumentID: "doc-1"})
	require.NoError(t, err)

	assert.Equal(t, "An error occurred while processing your question.", result.Answer)
	assert.Equal(t, OutcomeUpstreamError, result.Outcome)
}

func TestAskParseFailureNoRetry(t *testing.T) {
	model := &fakeModel{response: "not json at all"}
	p := newTestPipeline(t, contractStore(), model, ModeStructured)

	result, err := p.Ask(context.Background(), retrieval.Question{Text: "q", DocumentID: "doc-1"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeParseError, result.Outcome)
	assert.Empty(t, result.Sources)
	// Malformed output is a degradation, never a second model call.
	assert.Equal(t, 1, model.calls)
}

func TestAskAllPassagesEmptyAfterNormalization(t *testing.T) {
	// Chunks that are nothing but a header line normalize to nothing.
	store := &scriptedStore{
		results: []vectorstore.SearchResult{
			{Content: "only a header line\n", Metadata: map[string]interface{}{"loc.pageNumber": 1}},
		},
	}
	model := &fakeModel{}
	p := newTestPipeline(t, store, model, ModePlain)

	result, err := p.Ask(context.Background(), retrieval.Question{Text: "q", DocumentID: "doc-1"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoMatches, result.Outcome)
	assert.Zero(t, model.calls)
}
