package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ziadkadry99/policyrag/internal/config"
	"github.com/ziadkadry99/policyrag/internal/keywords"
	"github.com/ziadkadry99/policyrag/internal/llm"
	"github.com/ziadkadry99/policyrag/internal/rag"
	"github.com/ziadkadry99/policyrag/internal/session"
	"github.com/ziadkadry99/policyrag/internal/vectorstore"
)

type scriptedStep struct {
	content string
	err     error
}

type scriptedProvider struct {
	t     *testing.T
	steps []scriptedStep
	calls int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if p.calls >= len(p.steps) {
		p.t.Fatalf("unexpected llm call %d", p.calls+1)
	}
	s := p.steps[p.calls]
	p.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content}, nil
}

type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, 16)
		for j, ch := range text {
			vec[(int(ch)+j)%16] += 1.0
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v * v)
		}
		norm = math.Sqrt(norm)
		for j := range vec {
			vec[j] = float32(float64(vec[j]) / norm)
		}
		out[i] = vec
	}
	return out, nil
}

func (hashEmbedder) Dimensions() int { return 16 }
func (hashEmbedder) Name() string    { return "hash" }

func testServer(t *testing.T, steps []scriptedStep) *Server {
	t.Helper()

	provider := &scriptedProvider{t: t, steps: steps}
	embedder := hashEmbedder{}
	store := vectorstore.NewChromemStore(embedder)
	kwStore := keywords.NewFileStore(t.TempDir())
	svc := rag.New(provider, embedder, store, kwStore, config.DefaultConfig())

	sessions, err := session.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	return New(Config{Port: 0, AllowAll: true}, svc, sessions)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, srv *Server) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d: %s", rec.Code, rec.Body.String())
	}
	var sess struct {
		ID string `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("empty session id")
	}
	return sess.ID
}

func TestHealthz(t *testing.T) {
	srv := testServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := testServer(t, nil)
	id := createSession(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get session: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("list sessions: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/sessions/"+id+"/history", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("history: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete session: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/sessions/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status %d", rec.Code)
	}
}

func TestGetUnknownSession(t *testing.T) {
	srv := testServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/sessions/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestUploadRequiresPathOrURL(t *testing.T) {
	srv := testServer(t, nil)
	id := createSession(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/upload", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestUploadAndQuery(t *testing.T) {
	srv := testServer(t, []scriptedStep{
		{content: `{"category": "Insurance"}`},
		{content: `{"coverage_type": ["Cashless Treatment"], "added_new_keyword": false}`},
		// Query extraction, then adjudication.
		{content: `{"coverage_type": ["Cashless Treatment"]}`},
		{content: `{
			"decision": "COVERED",
			"evidence": [],
			"confidence": 0.9,
			"rationale": "r",
			"answer": "Yes, it is covered."
		}`},
	})
	id := createSession(t, srv)

	docPath := filepath.Join(t.TempDir(), "policy.txt")
	if err := os.WriteFile(docPath, []byte("Cashless treatment is available at network hospitals."), 0o644); err != nil {
		t.Fatalf("writing document: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/upload", map[string]string{"path": docPath})
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: status %d: %s", rec.Code, rec.Body.String())
	}

	var upload uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &upload); err != nil {
		t.Fatalf("decoding upload response: %v", err)
	}
	if upload.DocumentType != "Insurance" {
		t.Errorf("document type = %q", upload.DocumentType)
	}
	if upload.ChunksCreated != 1 {
		t.Errorf("chunks = %d", upload.ChunksCreated)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/query", map[string]string{"query": "Is cashless treatment covered?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("query: status %d: %s", rec.Code, rec.Body.String())
	}

	var result queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding query response: %v", err)
	}
	if string(result.Decision) != "COVERED" {
		t.Errorf("decision = %q", result.Decision)
	}
	if result.Answer != "Yes, it is covered." {
		t.Errorf("answer = %q", result.Answer)
	}

	// The exchange lands in the session history.
	rec = doJSON(t, srv, http.MethodGet, "/api/sessions/"+id+"/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history: status %d", rec.Code)
	}
	var history []session.ChatMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if len(history) != 1 || history[0].Decision != "COVERED" {
		t.Errorf("history = %+v", history)
	}
}

func TestQueryWithoutDocument(t *testing.T) {
	srv := testServer(t, nil)
	id := createSession(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/query", map[string]string{"query": "anything"})
	if rec.Code == http.StatusOK {
		t.Error("query without an uploaded document should fail")
	}
}

func TestQueryRequiresBody(t *testing.T) {
	srv := testServer(t, nil)
	id := createSession(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/query", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}
