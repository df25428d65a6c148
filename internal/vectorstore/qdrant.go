package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/policyrag/internal/embeddings"
	"github.com/ziadkadry99/policyrag/internal/schema"
)

// QdrantStore implements Store against a Qdrant instance over its REST API.
// Each namespace maps to a Qdrant collection; metadata predicates translate
// to native match/match-any filter conditions.
type QdrantStore struct {
	url      string
	apiKey   string
	embedder embeddings.Embedder
	client   *http.Client
}

// QdrantConfig holds connection settings for a QdrantStore.
type QdrantConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// NewQdrantStore creates a Qdrant-backed store.
func NewQdrantStore(cfg QdrantConfig, embedder embeddings.Embedder) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &QdrantStore{
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
		embedder: embedder,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *QdrantStore) ensureCollection(ctx context.Context, namespace string) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.embedder.Dimensions(),
			"distance": "Cosine",
		},
	}
	return s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", namespace), body, nil)
}

func (s *QdrantStore) Upsert(ctx context.Context, namespace string, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if err := s.ensureCollection(ctx, namespace); err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors, expected %d", len(vectors), len(chunks))
	}

	points := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		payload := map[string]any{
			keyDocID:    c.DocID,
			keyPage:     c.Page,
			keyChunkID:  c.ID,
			keyCategory: string(c.Category),
			"text":      c.Text,
		}
		for field, values := range c.Metadata {
			payload[field] = values
		}
		points[i] = map[string]any{
			// Qdrant point ids must be UUIDs or unsigned ints; derive a
			// stable UUID from the namespace-qualified chunk id.
			"id":      uuid.NewSHA1(uuid.NameSpaceURL, []byte(namespace+"/"+c.ID)).String(),
			"vector":  vectors[i],
			"payload": payload,
		}
	}

	body := map[string]any{"points": points}
	return s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", namespace), body, nil)
}

// buildQdrantFilter translates a schema.Filter into Qdrant's filter dialect.
func buildQdrantFilter(filter schema.Filter) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	var must []map[string]any
	for field, pred := range filter {
		if len(pred.AnyOf) > 0 {
			must = append(must, map[string]any{
				"key":   field,
				"match": map[string]any{"any": pred.AnyOf},
			})
		} else if pred.Equals != "" {
			must = append(must, map[string]any{
				"key":   field,
				"match": map[string]any{"value": pred.Equals},
			})
		}
	}
	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

func (s *QdrantStore) Query(ctx context.Context, namespace, queryText string, k int, filter schema.Filter) ([]Hit, error) {
	if k <= 0 {
		k = 10
	}

	vectors, err := s.embedder.Embed(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}

	req := map[string]any{
		"vector":       vectors[0],
		"limit":        k,
		"with_payload": true,
	}
	if qf := buildQdrantFilter(filter); qf != nil {
		req["filter"] = qf
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", namespace), req, &resp); err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, Hit{Chunk: chunkFromPayload(r.Payload), Score: float32(r.Score)})
	}
	return hits, nil
}

func chunkFromPayload(payload map[string]any) Chunk {
	c := Chunk{Metadata: make(map[string][]string)}
	for key, value := range payload {
		switch key {
		case keyDocID:
			c.DocID, _ = value.(string)
		case keyPage:
			if f, ok := value.(float64); ok {
				c.Page = int(f)
			}
		case keyChunkID:
			c.ID, _ = value.(string)
		case keyCategory:
			if sv, ok := value.(string); ok {
				c.Category = schema.DocumentCategory(sv)
			}
		case "text":
			c.Text, _ = value.(string)
		default:
			switch v := value.(type) {
			case []any:
				var vals []string
				for _, item := range v {
					if sv, ok := item.(string); ok {
						vals = append(vals, sv)
					}
				}
				if len(vals) > 0 {
					c.Metadata[key] = vals
				}
			case string:
				c.Metadata[key] = []string{v}
			}
		}
	}
	return c
}

func (s *QdrantStore) DeleteNamespace(ctx context.Context, namespace string) error {
	return s.do(ctx, http.MethodDelete, fmt.Sprintf("/collections/%s", namespace), nil, nil)
}

func (s *QdrantStore) Count(ctx context.Context, namespace string) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := s.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/count", namespace), map[string]any{"exact": true}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Persist and Load are no-ops: Qdrant owns durability server-side.
func (s *QdrantStore) Persist(ctx context.Context, dir string) error { return nil }
func (s *QdrantStore) Load(ctx context.Context, dir string) error    { return nil }

func (s *QdrantStore) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url+path, reader)
	if err != nil {
		return fmt.Errorf("create qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read qdrant response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode qdrant response: %w", err)
		}
	}
	return nil
}
