// Package vectorstore stores document chunks with their extracted metadata
// and serves filtered similarity search. Two backends exist: an embedded
// chromem-go store and a Qdrant REST store. A namespace scopes one upload's
// chunks; re-uploading a document creates new chunks under a new namespace.
package vectorstore

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/ziadkadry99/policyrag/internal/schema"
)

// Chunk is the unit stored in the vector index: a bounded text span from one
// page, stamped with identity and the page's full extracted metadata.
type Chunk struct {
	ID       string
	DocID    string
	Page     int
	Text     string
	Category schema.DocumentCategory
	Metadata map[string][]string
}

// Hit pairs a stored chunk with its similarity score.
type Hit struct {
	Chunk Chunk
	Score float32
}

// Store is the vector index interface the pipeline talks to.
type Store interface {
	// Upsert adds chunks to a namespace, embedding their text.
	Upsert(ctx context.Context, namespace string, chunks []Chunk) error

	// Query returns the top-k chunks in a namespace most similar to the
	// query text, restricted to those matching the filter, in descending
	// score order.
	Query(ctx context.Context, namespace, queryText string, k int, filter schema.Filter) ([]Hit, error)

	// DeleteNamespace removes a namespace and all chunks in it.
	DeleteNamespace(ctx context.Context, namespace string) error

	// Count returns the number of chunks stored in a namespace.
	Count(ctx context.Context, namespace string) (int, error)

	// Persist flushes the store to the given directory. Backends with
	// server-side durability treat this as a no-op.
	Persist(ctx context.Context, dir string) error

	// Load restores the store from the given directory.
	Load(ctx context.Context, dir string) error
}

// Reserved metadata keys used for chunk identity alongside the extracted fields.
const (
	keyDocID    = "doc_id"
	keyPage     = "page_no"
	keyChunkID  = "chunk_id"
	keyCategory = "doc_schema"
)

// flattenMetadata encodes a chunk's identity and list-valued metadata into
// the flat string map the chromem backend stores. List values are JSON-encoded.
func flattenMetadata(c Chunk) map[string]string {
	md := map[string]string{
		keyDocID:    c.DocID,
		keyPage:     strconv.Itoa(c.Page),
		keyChunkID:  c.ID,
		keyCategory: string(c.Category),
	}
	for field, values := range c.Metadata {
		encoded, err := json.Marshal(values)
		if err != nil {
			continue
		}
		md[field] = string(encoded)
	}
	return md
}

// unflattenMetadata reverses flattenMetadata.
func unflattenMetadata(md map[string]string) (docID string, page int, chunkID string, category schema.DocumentCategory, fields map[string][]string) {
	fields = make(map[string][]string)
	for key, value := range md {
		switch key {
		case keyDocID:
			docID = value
		case keyPage:
			page, _ = strconv.Atoi(value)
		case keyChunkID:
			chunkID = value
		case keyCategory:
			category = schema.DocumentCategory(value)
		default:
			var values []string
			if err := json.Unmarshal([]byte(value), &values); err == nil {
				fields[key] = values
			} else if value != "" {
				fields[key] = []string{value}
			}
		}
	}
	return docID, page, chunkID, category, fields
}
