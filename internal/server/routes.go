package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/policyrag/internal/classify"
	"github.com/ziadkadry99/policyrag/internal/decision"
	"github.com/ziadkadry99/policyrag/internal/ingest"
	"github.com/ziadkadry99/policyrag/internal/rag"
	"github.com/ziadkadry99/policyrag/internal/retrieval"
	"github.com/ziadkadry99/policyrag/internal/schema"
)

type uploadRequest struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`
}

type uploadResponse struct {
	SessionID     string `json:"session_id"`
	Filename      string `json:"filename"`
	DocumentType  string `json:"document_type"`
	ChunksCreated int    `json:"chunks_created"`
	Message       string `json:"message"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	SessionID     string                `json:"session_id"`
	Query         string                `json:"query"`
	Answer        string                `json:"answer"`
	Decision      decision.Verdict      `json:"decision"`
	Confidence    float64               `json:"confidence"`
	Rationale     string                `json:"rationale,omitempty"`
	Evidence      []decision.Evidence   `json:"evidence"`
	QueryMetadata map[string][]string   `json:"query_metadata,omitempty"`
	Sources       []retrieval.ClauseHit `json:"sources,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "session deactivated"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.sessions.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	sess, err := s.sessions.Get(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Path == "" && req.URL == "" {
		http.Error(w, "either path or url must be provided", http.StatusBadRequest)
		return
	}

	var doc *ingest.Document
	if req.Path != "" {
		doc, err = ingest.LoadFile(req.Path)
	} else {
		doc, err = ingest.LoadURL(r.Context(), req.URL)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.svc.Ingest(r.Context(), doc)
	if err != nil {
		status := http.StatusInternalServerError
		var classErr *classify.ClassificationError
		if errors.As(err, &classErr) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	err = s.sessions.SetDocument(r.Context(), sess.ID, doc.Name, string(result.Category),
		doc.Source, result.DocKey, result.Namespace, result.ChunksCreated)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		SessionID:     sess.ID,
		Filename:      doc.Name,
		DocumentType:  string(result.Category),
		ChunksCreated: result.ChunksCreated,
		Message:       "document ingested",
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	sess, err := s.sessions.Get(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	result, err := s.answer(r, sess.Namespace, sess.DocKey, sess.DocumentCategory, req.Query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if err := s.sessions.AddChat(r.Context(), sess.ID, req.Query, result.Answer, string(result.Decision)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		SessionID:     sess.ID,
		Query:         req.Query,
		Answer:        result.Answer,
		Decision:      result.Decision,
		Confidence:    result.Confidence,
		Rationale:     result.Rationale,
		Evidence:      result.Evidence,
		QueryMetadata: filterValues(result.QueryMetadata),
		Sources:       result.Sources,
	})
}

func (s *Server) answer(r *http.Request, namespace, docKey, category, query string) (*rag.QueryResult, error) {
	qc := rag.QueryContext{
		Namespace: namespace,
		DocKey:    docKey,
		Category:  schema.DocumentCategory(category),
	}
	return s.svc.AnswerQuery(r.Context(), qc, query)
}

// filterValues renders a filter's predicates as plain value lists for the
// response payload.
func filterValues(f schema.Filter) map[string][]string {
	if len(f) == 0 {
		return nil
	}
	out := make(map[string][]string, len(f))
	for field, pred := range f {
		if len(pred.AnyOf) > 0 {
			out[field] = pred.AnyOf
		} else if pred.Equals != "" {
			out[field] = []string{pred.Equals}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}
