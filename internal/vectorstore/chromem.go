package vectorstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/policyrag/internal/embeddings"
	"github.com/ziadkadry99/policyrag/internal/schema"
)

// ChromemStore implements Store using chromem-go. Each namespace maps to its
// own chromem collection. chromem where-clauses only support exact matches,
// so any-of metadata predicates are applied after the similarity query.
type ChromemStore struct {
	db        *chromem.DB
	embedder  embeddings.Embedder
	embedFunc chromem.EmbeddingFunc
}

// NewChromemStore creates a new in-memory ChromemStore.
func NewChromemStore(embedder embeddings.Embedder) *ChromemStore {
	return &ChromemStore{
		db:        chromem.NewDB(),
		embedder:  embedder,
		embedFunc: embeddings.ToChromemFunc(embedder),
	}
}

func (s *ChromemStore) collection(namespace string) (*chromem.Collection, error) {
	col, err := s.db.GetOrCreateCollection(namespace, nil, s.embedFunc)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", namespace, err)
	}
	return col, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, namespace string, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	col, err := s.collection(namespace)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:       c.ID,
			Content:  c.Text,
			Metadata: flattenMetadata(c),
		}
	}

	return col.AddDocuments(ctx, docs, 1)
}

func (s *ChromemStore) Query(ctx context.Context, namespace, queryText string, k int, filter schema.Filter) ([]Hit, error) {
	if k <= 0 {
		k = 10
	}

	col, err := s.collection(namespace)
	if err != nil {
		return nil, err
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}

	// With a metadata filter we rank every chunk in the namespace and filter
	// afterwards; chromem cannot express membership predicates natively.
	limit := k
	if len(filter) > 0 || limit > count {
		limit = count
	}

	results, err := col.Query(ctx, queryText, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, 0, k)
	for _, r := range results {
		docID, page, chunkID, category, fields := unflattenMetadata(r.Metadata)
		if len(filter) > 0 && !filter.Matches(fields) {
			continue
		}
		hits = append(hits, Hit{
			Chunk: Chunk{
				ID:       chunkID,
				DocID:    docID,
				Page:     page,
				Text:     r.Content,
				Category: category,
				Metadata: fields,
			},
			Score: r.Similarity,
		})
		if len(hits) == k {
			break
		}
	}

	return hits, nil
}

func (s *ChromemStore) DeleteNamespace(ctx context.Context, namespace string) error {
	return s.db.DeleteCollection(namespace)
}

func (s *ChromemStore) Count(ctx context.Context, namespace string) (int, error) {
	col, err := s.collection(namespace)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

func (s *ChromemStore) Persist(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return s.db.ExportToFile(filepath.Join(dir, "chromem.gob.gz"), true, "")
}

func (s *ChromemStore) Load(ctx context.Context, dir string) error {
	path := filepath.Join(dir, "chromem.gob.gz")
	if err := s.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("import from %s: %w", path, err)
	}
	return nil
}
