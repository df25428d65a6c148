// Package decision asks an LLM to adjudicate a coverage question against
// retrieved policy clauses and produces a structured, evidence-cited verdict.
package decision

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/policyrag/internal/llm"
	"github.com/ziadkadry99/policyrag/internal/retrieval"
)

// Verdict is the closed set of coverage decisions.
type Verdict string

const (
	Covered     Verdict = "COVERED"
	NotCovered  Verdict = "NOT_COVERED"
	Conditional Verdict = "CONDITIONAL"
)

// Evidence is one clause citation supporting the verdict. Text carries the
// full retrieved passage once enrichment matches the citation to a hit;
// unmatched citations keep only the model's snippet.
type Evidence struct {
	DocID   string `json:"doc_id"`
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
	Reason  string `json:"reason"`
	Text    string `json:"text,omitempty"`
}

// LogicResult is the structured adjudication outcome.
type LogicResult struct {
	Decision   Verdict    `json:"decision"`
	Evidence   []Evidence `json:"evidence"`
	Confidence float64    `json:"confidence"`
	Rationale  string     `json:"rationale"`
	Answer     string     `json:"answer"`
}

// AdjudicationError means the LLM call failed or returned an unusable
// decision. Fatal to the query; no default verdict is synthesized.
type AdjudicationError struct {
	Err error
}

func (e *AdjudicationError) Error() string {
	return fmt.Sprintf("adjudicating query: %v", e.Err)
}

func (e *AdjudicationError) Unwrap() error { return e.Err }

// Adjudicator turns retrieved clauses plus a question into a LogicResult.
type Adjudicator struct {
	provider llm.Provider
	model    string
}

// New creates an Adjudicator using the given provider and model.
func New(provider llm.Provider, model string) *Adjudicator {
	return &Adjudicator{provider: provider, model: model}
}

// Adjudicate builds a numbered-context prompt from the hits, invokes the LLM
// constrained to the LogicResult shape, and enriches each evidence citation
// with the full text of its matching hit.
func (a *Adjudicator) Adjudicate(ctx context.Context, query string, hits []retrieval.ClauseHit) (*LogicResult, error) {
	var contextClauses []string
	for i, h := range hits {
		contextClauses = append(contextClauses, fmt.Sprintf("%d) [source:%s page:%d] %s", i+1, h.DocID, h.Page, h.Text))
	}

	prompt := fmt.Sprintf(`You are an insurance policy analyst. Question: %q

Provided clauses (numbered):
%s

Task:
1) Decide: COVERED / NOT_COVERED / CONDITIONAL
2) Summarize the exact clause(s) that justify your decision.
3) List any conditions, waiting periods, sublimits, or exclusions relevant.
4) Provide a concise final answer (1-2 sentences).

Return JSON with these exact keys:
{
  "decision": "...",
  "evidence": [
    {"doc_id": "...", "page": 0, "snippet": "...", "reason": "..."}
  ],
  "confidence": 0.0,
  "rationale": "...",
  "answer": "..."
}`, query, strings.Join(contextClauses, "\n"))

	messages := []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}

	var result LogicResult
	if err := llm.Invoke(ctx, a.provider, a.model, messages, &result); err != nil {
		return nil, &AdjudicationError{Err: err}
	}

	switch result.Decision {
	case Covered, NotCovered, Conditional:
	default:
		return nil, &AdjudicationError{Err: fmt.Errorf("invalid decision %q", result.Decision)}
	}

	EnrichEvidence(&result, hits)
	return &result, nil
}

// EnrichEvidence back-fills each evidence item's Text with the full passage
// of the retrieved hit matching its exact (doc_id, page) pair. Citations
// with no matching hit keep only their snippet; that is not a failure.
func EnrichEvidence(result *LogicResult, hits []retrieval.ClauseHit) {
	for i := range result.Evidence {
		ev := &result.Evidence[i]
		for _, h := range hits {
			if h.DocID == ev.DocID && h.Page == ev.Page {
				ev.Text = h.Text
				break
			}
		}
	}
}
