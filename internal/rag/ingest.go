package rag

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ziadkadry99/policyrag/internal/ingest"
	"github.com/ziadkadry99/policyrag/internal/keywords"
	"github.com/ziadkadry99/policyrag/internal/schema"
	"github.com/ziadkadry99/policyrag/internal/vectorstore"
)

// classifierPageCount is how many leading pages the classifier sees.
const classifierPageCount = 2

// IngestResult summarizes one completed upload.
type IngestResult struct {
	Category      schema.DocumentCategory
	Namespace     string
	DocKey        string
	ChunksCreated int
	PagesFailed   int
}

// Ingest runs the full upload pipeline for one document: classify, extract
// metadata per page (reconciling new vocabulary against the keyword store in
// page order), chunk, and store under a fresh namespace.
//
// Classification and keyword store I/O failures abort the ingest. Per-page
// extraction failures do not: the page is chunked with empty metadata and
// the pipeline continues.
func (s *Service) Ingest(ctx context.Context, doc *ingest.Document) (*IngestResult, error) {
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("document %q has no pages", doc.Source)
	}

	category, err := s.classifier.Classify(ctx, doc.FirstPages(classifierPageCount))
	if err != nil {
		return nil, err
	}

	docKey := keywords.DocumentKey(doc.Source)
	namespace := fmt.Sprintf("policyrag-%d", time.Now().Unix())

	s.reporter.Start(len(doc.Pages))
	defer s.reporter.Finish()

	var allChunks []vectorstore.Chunk
	pagesFailed := 0

	for i, page := range doc.Pages {
		s.reporter.Update(i+1, fmt.Sprintf("page %d/%d", i+1, len(doc.Pages)))

		known, err := s.keywords.Load(docKey)
		if err != nil {
			return nil, err
		}

		extraction := s.extractor.Page(ctx, page.Text, category, known)
		if extraction.Empty() {
			pagesFailed++
		}

		fields := extraction.Fields
		switch {
		case i == 0:
			// Page 0 initializes the keyword store for the document.
			if err := s.keywords.Save(docKey, fields); err != nil {
				return nil, err
			}
		case extraction.AddedNewKeyword:
			fields, err = s.reconciler.Reconcile(ctx, docKey, fields)
			if err != nil {
				return nil, err
			}
		}

		chunks := s.chunker.SplitPage(page.Text, page.Number, category, fields)
		allChunks = append(allChunks, chunks...)
	}

	if err := s.store.Upsert(ctx, namespace, allChunks); err != nil {
		return nil, fmt.Errorf("storing %d chunks: %w", len(allChunks), err)
	}

	if pagesFailed > 0 {
		log.Printf("rag: ingest of %s completed with %d/%d pages yielding no metadata", doc.Source, pagesFailed, len(doc.Pages))
	}

	return &IngestResult{
		Category:      category,
		Namespace:     namespace,
		DocKey:        docKey,
		ChunksCreated: len(allChunks),
		PagesFailed:   pagesFailed,
	}, nil
}
