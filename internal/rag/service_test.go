package rag

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/ziadkadry99/policyrag/internal/config"
	"github.com/ziadkadry99/policyrag/internal/ingest"
	"github.com/ziadkadry99/policyrag/internal/keywords"
	"github.com/ziadkadry99/policyrag/internal/llm"
	"github.com/ziadkadry99/policyrag/internal/schema"
	"github.com/ziadkadry99/policyrag/internal/vectorstore"
)

// step is one scripted LLM exchange.
type step struct {
	content string
	err     error
}

// sequencedProvider plays back scripted responses in call order.
type sequencedProvider struct {
	t     *testing.T
	steps []step
	calls int
}

func (p *sequencedProvider) Name() string { return "sequenced" }

func (p *sequencedProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if p.calls >= len(p.steps) {
		p.t.Fatalf("unexpected llm call %d: %q", p.calls+1, req.Messages[len(req.Messages)-1].Content)
	}
	s := p.steps[p.calls]
	p.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content}, nil
}

// testEmbedder serves fixture vectors for known keywords and deterministic
// hash vectors for everything else (chunk texts, queries).
type testEmbedder struct {
	fixtures map[string][]float32
}

func (e *testEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e.fixtures[t]; ok {
			out[i] = v
			continue
		}
		out[i] = hashVector(t, 16)
	}
	return out, nil
}

func (e *testEmbedder) Dimensions() int { return 16 }
func (e *testEmbedder) Name() string    { return "test" }

func hashVector(text string, dims int) []float32 {
	vec := make([]float32, dims)
	for i, ch := range text {
		vec[(int(ch)+i)%dims] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func newTestEmbedder() *testEmbedder {
	pad := func(v []float32) []float32 {
		out := make([]float32, 16)
		copy(out, v)
		return out
	}
	return &testEmbedder{fixtures: map[string][]float32{
		"Cashless Treatment":       pad([]float32{1, 0, 0}),
		"Cashless Hospitalization": pad([]float32{0.98, 0.199, 0}), // cosine ~0.98
		"Dental":                   pad([]float32{0, 1, 0}),
	}}
}

func testService(t *testing.T, provider llm.Provider) (*Service, vectorstore.Store) {
	t.Helper()
	embedder := newTestEmbedder()
	store := vectorstore.NewChromemStore(embedder)
	kwStore := keywords.NewFileStore(t.TempDir())
	return New(provider, embedder, store, kwStore, config.DefaultConfig()), store
}

func threePageDoc() *ingest.Document {
	return &ingest.Document{
		Source: "policy.txt",
		Name:   "policy.txt",
		Pages: []ingest.Page{
			{Number: 0, Text: "Cashless treatment is available at all network hospitals."},
			{Number: 1, Text: "Cashless hospitalization requires pre-authorization from the insurer."},
			{Number: 2, Text: "Claims must be submitted within ninety days."},
		},
	}
}

func TestIngestThreePages(t *testing.T) {
	provider := &sequencedProvider{t: t, steps: []step{
		{content: `{"category": "Insurance"}`},
		{content: `{"coverage_type": ["Cashless Treatment"], "added_new_keyword": false}`},
		{content: `{"coverage_type": ["Cashless Hospitalization"], "added_new_keyword": true}`},
		{content: "this page confused the model entirely"},
	}}
	svc, store := testService(t, provider)

	result, err := svc.Ingest(context.Background(), threePageDoc())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if result.Category != schema.CategoryInsurance {
		t.Errorf("category = %q", result.Category)
	}
	if result.DocKey != "policy_txt" {
		t.Errorf("doc key = %q", result.DocKey)
	}
	if result.Namespace == "" {
		t.Error("namespace is empty")
	}
	if result.ChunksCreated != 3 {
		t.Errorf("chunks = %d, want 3 (one per page)", result.ChunksCreated)
	}
	if result.PagesFailed != 1 {
		t.Errorf("pages failed = %d, want 1 (the unparseable page)", result.PagesFailed)
	}

	count, err := store.Count(context.Background(), result.Namespace)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("stored chunks = %d", count)
	}
}

func TestIngestReconcilesVocabularyAcrossPages(t *testing.T) {
	provider := &sequencedProvider{t: t, steps: []step{
		{content: `{"category": "Insurance"}`},
		{content: `{"coverage_type": ["Cashless Treatment"], "added_new_keyword": false}`},
		{content: `{"coverage_type": ["Cashless Hospitalization"], "added_new_keyword": true}`},
		{content: `{"added_new_keyword": false}`},
	}}

	embedder := newTestEmbedder()
	store := vectorstore.NewChromemStore(embedder)
	kwDir := t.TempDir()
	kwStore := keywords.NewFileStore(kwDir)
	svc := New(provider, embedder, store, kwStore, config.DefaultConfig())

	result, err := svc.Ingest(context.Background(), threePageDoc())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	// Page 1's near-duplicate must resolve to page 0's canonical keyword,
	// keeping the vocabulary unfragmented.
	vocab, err := kwStore.Load(result.DocKey)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(vocab["coverage_type"], []string{"Cashless Treatment"}) {
		t.Errorf("vocabulary = %v, want the single canonical keyword", vocab["coverage_type"])
	}

	// The page 1 chunk carries the rewritten keyword, so a filter on the
	// canonical form matches chunks from both pages.
	filter := schema.Filter{"coverage_type": {AnyOf: []string{"Cashless Treatment"}}}
	hits, err := store.Query(context.Background(), result.Namespace, "cashless", 10, filter)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	pages := map[int]bool{}
	for _, h := range hits {
		pages[h.Chunk.Page] = true
	}
	if !pages[0] || !pages[1] {
		t.Errorf("filter on canonical keyword matched pages %v, want pages 0 and 1", pages)
	}
	if pages[2] {
		t.Error("metadata-less page 2 should not match the filter")
	}
}

func TestIngestClassificationFailureIsFatal(t *testing.T) {
	provider := &sequencedProvider{t: t, steps: []step{
		{content: `{"category": "Poetry"}`},
	}}
	svc, _ := testService(t, provider)

	if _, err := svc.Ingest(context.Background(), threePageDoc()); err == nil {
		t.Fatal("expected ingest to fail on an invalid category")
	}
}

func TestIngestEmptyDocument(t *testing.T) {
	provider := &sequencedProvider{t: t}
	svc, _ := testService(t, provider)

	_, err := svc.Ingest(context.Background(), &ingest.Document{Source: "empty.txt"})
	if err == nil {
		t.Fatal("expected an error for a document with no pages")
	}
}

func TestAnswerQuery(t *testing.T) {
	provider := &sequencedProvider{t: t, steps: []step{
		{content: `{"category": "Insurance"}`},
		{content: `{"coverage_type": ["Cashless Treatment"], "added_new_keyword": false}`},
		{content: `{"coverage_type": ["Cashless Hospitalization"], "added_new_keyword": true}`},
		{content: `{"added_new_keyword": false}`},
		// Query-time extraction, then adjudication.
		{content: `{"coverage_type": ["Cashless Treatment"]}`},
		{content: `{
			"decision": "COVERED",
			"evidence": [{"doc_id": "x", "page": 0, "snippet": "s", "reason": "r"}],
			"confidence": 0.9,
			"rationale": "Clearly covered.",
			"answer": "Yes, cashless treatment is covered."
		}`},
	}}
	svc, _ := testService(t, provider)

	ingestResult, err := svc.Ingest(context.Background(), threePageDoc())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	qc := QueryContext{
		Namespace: ingestResult.Namespace,
		DocKey:    ingestResult.DocKey,
		Category:  ingestResult.Category,
	}
	result, err := svc.AnswerQuery(context.Background(), qc, "Is cashless treatment covered?")
	if err != nil {
		t.Fatalf("AnswerQuery: %v", err)
	}

	if result.Decision != "COVERED" {
		t.Errorf("decision = %q", result.Decision)
	}
	if result.Answer != "Yes, cashless treatment is covered." {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Sources) == 0 {
		t.Error("no sources returned")
	}
	if _, ok := result.QueryMetadata["coverage_type"]; !ok {
		t.Errorf("query metadata = %v", result.QueryMetadata)
	}

	// The filter restricts retrieval to pages carrying the keyword.
	for _, s := range result.Sources {
		if s.Page == 2 {
			t.Error("filtered retrieval returned the metadata-less page")
		}
	}
}

func TestAnswerQueryExtractionFailureFallsBackToUnfiltered(t *testing.T) {
	provider := &sequencedProvider{t: t, steps: []step{
		{content: `{"category": "Insurance"}`},
		{content: `{"coverage_type": ["Cashless Treatment"], "added_new_keyword": false}`},
		{content: `{"coverage_type": ["Cashless Hospitalization"], "added_new_keyword": true}`},
		{content: `{"added_new_keyword": false}`},
		// Query extraction fails; the search proceeds unfiltered.
		{err: errors.New("rate limited")},
		{content: `{
			"decision": "NOT_COVERED",
			"evidence": [],
			"confidence": 0.6,
			"rationale": "r",
			"answer": "a"
		}`},
	}}
	svc, _ := testService(t, provider)

	ingestResult, err := svc.Ingest(context.Background(), threePageDoc())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	qc := QueryContext{
		Namespace: ingestResult.Namespace,
		DocKey:    ingestResult.DocKey,
		Category:  ingestResult.Category,
	}
	result, err := svc.AnswerQuery(context.Background(), qc, "Is anything covered?")
	if err != nil {
		t.Fatalf("AnswerQuery: %v", err)
	}

	if len(result.QueryMetadata) != 0 {
		t.Errorf("query metadata should be empty, got %v", result.QueryMetadata)
	}
	if len(result.Sources) == 0 {
		t.Error("unfiltered search should still return sources")
	}
}

func TestAnswerQueryWithoutNamespace(t *testing.T) {
	provider := &sequencedProvider{t: t}
	svc, _ := testService(t, provider)

	if _, err := svc.AnswerQuery(context.Background(), QueryContext{}, "q"); err == nil {
		t.Fatal("expected an error when no document is loaded")
	}
}

func TestSearchClauses(t *testing.T) {
	provider := &sequencedProvider{t: t, steps: []step{
		{content: `{"category": "Insurance"}`},
		{content: `{"coverage_type": ["Cashless Treatment"], "added_new_keyword": false}`},
		{content: `{"added_new_keyword": false}`},
		{content: `{"added_new_keyword": false}`},
		// Search-time extraction only; no adjudication call.
		{content: `{}`},
	}}
	svc, _ := testService(t, provider)

	ingestResult, err := svc.Ingest(context.Background(), threePageDoc())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	qc := QueryContext{
		Namespace: ingestResult.Namespace,
		DocKey:    ingestResult.DocKey,
		Category:  ingestResult.Category,
	}
	hits, err := svc.SearchClauses(context.Background(), qc, "claims deadline", 2)
	if err != nil {
		t.Fatalf("SearchClauses: %v", err)
	}
	if len(hits) == 0 || len(hits) > 2 {
		t.Errorf("hit count = %d, want 1..2", len(hits))
	}
}
