// Package reconcile deduplicates newly extracted keywords against a
// document's known vocabulary using embedding similarity, so that "Cashless
// Hospitalization" on page 3 resolves to the "Cashless Treatment" already
// stored from page 1 instead of fragmenting the vocabulary.
package reconcile

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/policyrag/internal/embeddings"
	"github.com/ziadkadry99/policyrag/internal/keywords"
)

// DefaultThreshold is the cosine similarity above which a candidate keyword
// is considered a near-duplicate of an existing one.
const DefaultThreshold = 0.90

// Reconciler rewrites near-duplicate keywords to their canonical stored form
// and persists genuinely new keywords into the document's vocabulary.
type Reconciler struct {
	embedder  embeddings.Embedder
	store     keywords.Store
	threshold float64
}

// New creates a Reconciler. A non-positive threshold falls back to DefaultThreshold.
func New(embedder embeddings.Embedder, store keywords.Store, threshold float64) *Reconciler {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Reconciler{embedder: embedder, store: store, threshold: threshold}
}

// Reconcile deduplicates one page's extracted metadata against the stored
// vocabulary for docKey and persists the updated vocabulary before returning.
// The returned map is the extraction with near-duplicate values rewritten to
// their canonical forms.
//
// Matching policy: a candidate is rewritten to the existing keyword with the
// highest cosine similarity among those above the threshold (best match, not
// first match). Existing store members are never rewritten or removed.
func (r *Reconciler) Reconcile(ctx context.Context, docKey string, extracted map[string][]string) (map[string][]string, error) {
	vocab, err := r.store.Load(docKey)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string, len(extracted))
	changed := false

	for field, values := range extracted {
		known := vocab[field]
		resolved := make([]string, 0, len(values))

		for _, candidate := range values {
			if keywords.Contains(vocab, field, candidate) {
				resolved = append(resolved, candidate)
				continue
			}

			canonical, err := r.bestMatch(ctx, candidate, known)
			if err != nil {
				return nil, fmt.Errorf("reconciling %s/%s: %w", field, candidate, err)
			}

			if canonical != "" {
				resolved = append(resolved, canonical)
				continue
			}

			// Genuinely new keyword: admit it to the vocabulary.
			known = append(known, candidate)
			vocab[field] = known
			resolved = append(resolved, candidate)
			changed = true
		}

		result[field] = dedupe(resolved)
	}

	// Fields never seen before still need their vocabulary entries.
	for field := range extracted {
		if _, ok := vocab[field]; !ok && len(result[field]) > 0 {
			vocab[field] = append([]string(nil), result[field]...)
			changed = true
		}
	}

	if changed {
		if err := r.store.Save(docKey, vocab); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// bestMatch returns the known keyword most similar to the candidate, or ""
// when no known keyword clears the threshold.
func (r *Reconciler) bestMatch(ctx context.Context, candidate string, known []string) (string, error) {
	if len(known) == 0 {
		return "", nil
	}

	// One batch: candidate first, then every known member.
	texts := append([]string{candidate}, known...)
	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return "", err
	}
	if len(vectors) != len(texts) {
		return "", fmt.Errorf("embedder returned %d vectors, expected %d", len(vectors), len(texts))
	}

	best := ""
	bestScore := r.threshold
	for i, existing := range known {
		score := embeddings.Cosine(vectors[0], vectors[i+1])
		if score > bestScore {
			best = existing
			bestScore = score
		}
	}
	return best, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
