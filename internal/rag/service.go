// Package rag wires classification, extraction, reconciliation, chunking,
// retrieval, and adjudication into the two operations the rest of the system
// calls: Ingest and AnswerQuery.
package rag

import (
	"github.com/ziadkadry99/policyrag/internal/chunker"
	"github.com/ziadkadry99/policyrag/internal/classify"
	"github.com/ziadkadry99/policyrag/internal/config"
	"github.com/ziadkadry99/policyrag/internal/decision"
	"github.com/ziadkadry99/policyrag/internal/embeddings"
	"github.com/ziadkadry99/policyrag/internal/extract"
	"github.com/ziadkadry99/policyrag/internal/keywords"
	"github.com/ziadkadry99/policyrag/internal/llm"
	"github.com/ziadkadry99/policyrag/internal/progress"
	"github.com/ziadkadry99/policyrag/internal/reconcile"
	"github.com/ziadkadry99/policyrag/internal/retrieval"
	"github.com/ziadkadry99/policyrag/internal/vectorstore"
)

// Service owns the full pipeline. All collaborators are injected at
// construction; the service itself holds no global state.
type Service struct {
	classifier  *classify.Classifier
	extractor   *extract.Extractor
	reconciler  *reconcile.Reconciler
	chunker     *chunker.Chunker
	retriever   *retrieval.Retriever
	adjudicator *decision.Adjudicator
	keywords    keywords.Store
	store       vectorstore.Store
	reporter    progress.Reporter
}

// New assembles a Service from its collaborators and configuration.
func New(provider llm.Provider, embedder embeddings.Embedder, store vectorstore.Store, kwStore keywords.Store, cfg *config.Config) *Service {
	return &Service{
		classifier:  classify.New(provider, cfg.Model),
		extractor:   extract.New(provider, cfg.Model),
		reconciler:  reconcile.New(embedder, kwStore, cfg.DedupThreshold),
		chunker:     chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		retriever:   retrieval.New(store, cfg.TopK),
		adjudicator: decision.New(provider, cfg.Model),
		keywords:    kwStore,
		store:       store,
		reporter:    progress.Silent{},
	}
}

// SetReporter installs a progress reporter for ingest runs.
func (s *Service) SetReporter(r progress.Reporter) {
	if r != nil {
		s.reporter = r
	}
}
