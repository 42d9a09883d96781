// Package vectorstore provides vector storage for indexed document
// passages.
//
// Two backends implement the Store interface: an embedded chromem-go
// database (default, no external service) and Qdrant over gRPC. Both
// embed text through an injected Embedder and support exact-match
// metadata filtering, which is how retrieval is scoped to a single
// document.
package vectorstore

import (
	"context"
	"errors"
	"regexp"
)

// Sentinel errors for vector store operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrConnectionFailed indicates the Qdrant connection could not be
	// established.
	ErrConnectionFailed = errors.New("failed to connect to Qdrant")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts, one
	// vector per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Document is a passage chunk to be stored.
type Document struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is the chunk text, header line included.
	Content string

	// Metadata carries filterable key-value pairs. Every indexed chunk
	// carries document_id and a page location.
	Metadata map[string]interface{}
}

// SearchResult is one similarity match.
type SearchResult struct {
	// ID is the chunk identifier.
	ID string

	// Content is the chunk text.
	Content string

	// Score is the similarity score (higher is more similar).
	Score float32

	// Metadata contains the chunk metadata.
	Metadata map[string]interface{}
}

// Store is the interface for vector storage operations.
//
// Implementations must honor metadata filters strictly: a search
// filtered on document_id must never return chunks belonging to a
// different document.
type Store interface {
	// AddDocuments embeds and stores document chunks, returning their IDs.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// Search performs similarity search, returning up to k results
	// ordered by descending similarity.
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// SearchWithFilters performs similarity search restricted to chunks
	// whose metadata matches ALL filter conditions exactly.
	SearchWithFilters(ctx context.Context, query string, k int, filters map[string]interface{}) ([]SearchResult, error)

	// Close releases the store's resources.
	Close() error
}

// collectionNamePattern validates collection names: lowercase letters,
// numbers, underscores, 1-64 characters.
var collectionNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// ValidateCollectionName checks a collection name against the naming rules.
func ValidateCollectionName(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return ErrInvalidCollectionName
	}
	return nil
}
