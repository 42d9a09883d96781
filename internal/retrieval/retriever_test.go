package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docqd/internal/vectorstore"
)

// fakeStore records the last search and returns scripted results.
type fakeStore struct {
	results []vectorstore.SearchResult
	err     error

	lastQuery   string
	lastK       int
	lastFilters map[string]interface{}
}

func (f *fakeStore) AddDocuments(ctx context.Context, docs []vectorstore.Document) ([]string, error) {
	return nil, nil
}

func (f *fakeStore) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	return f.SearchWithFilters(ctx, query, k, nil)
}

func (f *fakeStore) SearchWithFilters(ctx context.Context, query string, k int, filters map[string]interface{}) ([]vectorstore.SearchResult, error) {
	f.lastQuery = query
	f.lastK = k
	f.lastFilters = filters
	return f.results, f.err
}

func (f *fakeStore) Close() error { return nil }

func TestRetrieveValidation(t *testing.T) {
	r := NewRetriever(&fakeStore{}, Config{}, nil)

	tests := []struct {
		name string
		q    Question
	}{
		{"empty question", Question{Text: "", DocumentID: "doc-1"}},
		{"whitespace question", Question{Text: "   \t", DocumentID: "doc-1"}},
		{"missing document id", Question{Text: "what is the fee?", DocumentID: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Retrieve(context.Background(), tt.q)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRetrieveValidationShortCircuits(t *testing.T) {
	store := &fakeStore{}
	r := NewRetriever(store, Config{}, nil)

	_, err := r.Retrieve(context.Background(), Question{})
	require.ErrorIs(t, err, ErrValidation)

	// The store must never be reached on validation failure.
	assert.Empty(t, store.lastQuery)
	assert.Zero(t, store.lastK)
}

func TestRetrieveScopesToDocument(t *testing.T) {
	store := &fakeStore{}
	r := NewRetriever(store, Config{}, nil)

	_, err := r.Retrieve(context.Background(), Question{Text: "termination?", DocumentID: "doc-1"})
	require.NoError(t, err)

	assert.Equal(t, "termination?", store.lastQuery)
	assert.Equal(t, DefaultTopK, store.lastK)
	assert.Equal(t, map[string]interface{}{"document_id": "doc-1"}, store.lastFilters)
}

func TestRetrievePassagesInRankOrder(t *testing.T) {
	store := &fakeStore{
		results: []vectorstore.SearchResult{
			{Content: "hdr\nmost relevant", Metadata: map[string]interface{}{"loc.pageNumber": 3}},
			{Content: "hdr\nsecond", Metadata: map[string]interface{}{"loc.pageNumber": 5}},
		},
	}
	r := NewRetriever(store, Config{}, nil)

	passages, err := r.Retrieve(context.Background(), Question{Text: "q", DocumentID: "doc-1"})
	require.NoError(t, err)
	require.Len(t, passages, 2)

	assert.Equal(t, "hdr\nmost relevant", passages[0].RawContent)
	assert.True(t, passages[0].HasPage)
	assert.Equal(t, 3, passages[0].PageNumber)
	assert.Equal(t, 5, passages[1].PageNumber)
}

func TestRetrieveEmptyIsNotError(t *testing.T) {
	r := NewRetriever(&fakeStore{}, Config{}, nil)

	passages, err := r.Retrieve(context.Background(), Question{Text: "q", DocumentID: "doc-1"})
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestRetrieveStoreFailure(t *testing.T) {
	r := NewRetriever(&fakeStore{err: errors.New("index unreachable")}, Config{}, nil)

	_, err := r.Retrieve(context.Background(), Question{Text: "q", DocumentID: "doc-1"})
	assert.ErrorIs(t, err, ErrRetrieval)
}

func TestPageNumberExtraction(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]interface{}
		want     int
		wantOK   bool
	}{
		{"int", map[string]interface{}{"loc.pageNumber": 3}, 3, true},
		{"int64 from qdrant payload", map[string]interface{}{"loc.pageNumber": int64(7)}, 7, true},
		{"float64 from json", map[string]interface{}{"loc.pageNumber": 12.0}, 12, true},
		{"string from chromem roundtrip", map[string]interface{}{"loc.pageNumber": "9"}, 9, true},
		{"fallback key", map[string]interface{}{"pageNumber": 2}, 2, true},
		{"page key", map[string]interface{}{"page": "4"}, 4, true},
		{"absent", map[string]interface{}{"other": 1}, 0, false},
		{"unparseable string", map[string]interface{}{"loc.pageNumber": "n/a"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pageNumber(tt.metadata)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, 4, cfg.TopK)
}
