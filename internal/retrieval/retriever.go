// Package retrieval runs filtered similarity search and shapes the results
// for adjudication.
package retrieval

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/policyrag/internal/schema"
	"github.com/ziadkadry99/policyrag/internal/vectorstore"
)

// ClauseHit is one retrieved chunk: the evidence unit handed to the
// adjudicator and echoed back to callers as a source document.
type ClauseHit struct {
	DocID    string              `json:"doc_id"`
	Page     int                 `json:"page"`
	ChunkID  string              `json:"chunk_id"`
	Text     string              `json:"text"`
	Metadata map[string][]string `json:"metadata,omitempty"`
	Score    float32             `json:"score"`
}

// RetrievalError means the vector store could not serve the query. It is
// fatal to the query and surfaced to the caller; there are no silent retries.
type RetrievalError struct {
	Namespace string
	Err       error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieving from namespace %q: %v", e.Namespace, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Retriever issues filtered top-k searches against the vector store.
type Retriever struct {
	store vectorstore.Store
	topK  int
}

// New creates a Retriever. Non-positive topK defaults to 3.
func New(store vectorstore.Store, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{store: store, topK: topK}
}

// Retrieve returns the top matching chunks for the query in descending
// score order, restricted to the filter and namespace.
func (r *Retriever) Retrieve(ctx context.Context, namespace, query string, filter schema.Filter) ([]ClauseHit, error) {
	return r.RetrieveK(ctx, namespace, query, filter, r.topK)
}

// RetrieveK is Retrieve with an explicit result limit. Non-positive k falls
// back to the configured default.
func (r *Retriever) RetrieveK(ctx context.Context, namespace, query string, filter schema.Filter, k int) ([]ClauseHit, error) {
	if k <= 0 {
		k = r.topK
	}
	results, err := r.store.Query(ctx, namespace, query, k, filter)
	if err != nil {
		return nil, &RetrievalError{Namespace: namespace, Err: err}
	}

	hits := make([]ClauseHit, len(results))
	for i, res := range results {
		hits[i] = ClauseHit{
			DocID:    res.Chunk.DocID,
			Page:     res.Chunk.Page,
			ChunkID:  res.Chunk.ID,
			Text:     res.Chunk.Text,
			Metadata: res.Chunk.Metadata,
			Score:    res.Score,
		}
	}
	return hits, nil
}
