// Package extract pulls structured keyword metadata out of page text (and
// query text) using an LLM, keeping vocabulary consistent with the keywords
// already known for the document.
package extract

import (
	"context"
	"log"

	"github.com/ziadkadry99/policyrag/internal/llm"
	"github.com/ziadkadry99/policyrag/internal/schema"
)

// Extractor runs schema-guided metadata extraction.
type Extractor struct {
	provider llm.Provider
	model    string
}

// New creates an Extractor using the given provider and model.
func New(provider llm.Provider, model string) *Extractor {
	return &Extractor{provider: provider, model: model}
}

// Page extracts metadata from one page of a document. Extraction failures
// are recoverable per page: the result is an empty extraction with
// AddedNewKeyword=false and the pipeline moves on to the next page.
func (e *Extractor) Page(ctx context.Context, pageText string, category schema.DocumentCategory, known map[string][]string) schema.Extraction {
	return e.run(ctx, extractionRules, pageText, category, known)
}

// Query extracts metadata from a user's question. The keyword store is read,
// never written, on this path; a failure yields an empty extraction and an
// unfiltered search rather than a failed query.
func (e *Extractor) Query(ctx context.Context, query string, category schema.DocumentCategory, known map[string][]string) schema.Extraction {
	return e.run(ctx, queryRules, query, category, known)
}

func (e *Extractor) run(ctx context.Context, rules, text string, category schema.DocumentCategory, known map[string][]string) schema.Extraction {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: buildSystemPrompt(rules, category, known)},
		{Role: llm.RoleUser, Content: "Text:\n" + text},
	}

	var raw map[string]any
	if err := llm.Invoke(ctx, e.provider, e.model, messages, &raw); err != nil {
		log.Printf("extract: metadata extraction failed, continuing with empty metadata: %v", err)
		return schema.Extraction{Fields: map[string][]string{}}
	}

	addedNew, _ := raw["added_new_keyword"].(bool)
	delete(raw, "added_new_keyword")

	// Keep only fields the category's schema defines; the model sometimes
	// invents keys.
	allowed := make(map[string]bool)
	for _, name := range schema.FieldNames(category) {
		allowed[name] = true
	}
	for key := range raw {
		if !allowed[key] {
			delete(raw, key)
		}
	}

	return schema.Extraction{
		Fields:          schema.Normalize(raw),
		AddedNewKeyword: addedNew,
	}
}
