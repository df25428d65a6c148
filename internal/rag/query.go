package rag

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/policyrag/internal/decision"
	"github.com/ziadkadry99/policyrag/internal/retrieval"
	"github.com/ziadkadry99/policyrag/internal/schema"
)

// QueryContext identifies the uploaded document a question is asked against.
type QueryContext struct {
	Namespace string
	DocKey    string
	Category  schema.DocumentCategory
}

// QueryResult is the full answer to one question.
type QueryResult struct {
	Answer        string
	Decision      decision.Verdict
	Confidence    float64
	Rationale     string
	Evidence      []decision.Evidence
	QueryMetadata schema.Filter
	Sources       []retrieval.ClauseHit
}

// AnswerQuery extracts metadata from the question (reading, never writing,
// the keyword store), builds a filter in the store's dialect, retrieves the
// matching clauses, and asks the adjudicator for a cited decision.
// Retrieval and adjudication failures are fatal to the query.
func (s *Service) AnswerQuery(ctx context.Context, qc QueryContext, query string) (*QueryResult, error) {
	if qc.Namespace == "" {
		return nil, fmt.Errorf("no document uploaded for this session")
	}

	known, err := s.keywords.Load(qc.DocKey)
	if err != nil {
		return nil, err
	}

	extraction := s.extractor.Query(ctx, query, qc.Category, known)
	filter := schema.FilterFromLists(extraction.Fields)

	hits, err := s.retriever.Retrieve(ctx, qc.Namespace, query, filter)
	if err != nil {
		return nil, err
	}

	result, err := s.adjudicator.Adjudicate(ctx, query, hits)
	if err != nil {
		return nil, err
	}

	return &QueryResult{
		Answer:        result.Answer,
		Decision:      result.Decision,
		Confidence:    result.Confidence,
		Rationale:     result.Rationale,
		Evidence:      result.Evidence,
		QueryMetadata: filter,
		Sources:       hits,
	}, nil
}

// SearchClauses runs the extraction and retrieval half of AnswerQuery
// without adjudication, returning up to limit raw clause hits.
func (s *Service) SearchClauses(ctx context.Context, qc QueryContext, query string, limit int) ([]retrieval.ClauseHit, error) {
	if qc.Namespace == "" {
		return nil, fmt.Errorf("no document uploaded for this session")
	}

	known, err := s.keywords.Load(qc.DocKey)
	if err != nil {
		return nil, err
	}

	extraction := s.extractor.Query(ctx, query, qc.Category, known)
	filter := schema.FilterFromLists(extraction.Fields)

	return s.retriever.RetrieveK(ctx, qc.Namespace, query, filter, limit)
}
