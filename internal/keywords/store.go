// Package keywords persists the per-document vocabulary used to keep
// extracted metadata consistent across pages. One store entry exists per
// document, mapping each metadata field to the set of keyword values seen
// so far. Sets only ever grow.
package keywords

import (
	"fmt"
	"strings"
)

// Store loads and saves per-document keyword vocabularies. Implementations
// must rewrite the full vocabulary on Save; the reconciliation invariant
// depends on every page's update being durable before the next page runs.
type Store interface {
	// Load returns the known keywords for a document. A document that has
	// never been saved yields an empty map, not an error.
	Load(docKey string) (map[string][]string, error)

	// Save persists the full vocabulary for a document.
	Save(docKey string, vocab map[string][]string) error
}

// IOError marks a keyword store read/write failure. Ingest must abort on it
// rather than continue without consistency enforcement.
type IOError struct {
	DocKey string
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("keyword store for %q: %v", e.DocKey, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// DocumentKey derives a stable store key from a document's source name or
// URL: path separators and URL punctuation collapse to single underscores.
func DocumentKey(source string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(source)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// Contains reports whether the vocabulary already holds value verbatim for field.
func Contains(vocab map[string][]string, field, value string) bool {
	for _, v := range vocab[field] {
		if v == value {
			return true
		}
	}
	return false
}
