// Package classify assigns an uploaded document to one of the closed set of
// domain categories by showing the first pages to an LLM.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/policyrag/internal/llm"
	"github.com/ziadkadry99/policyrag/internal/schema"
)

// ClassificationError means the document category could not be determined.
// It is fatal to the upload: there is no default category.
type ClassificationError struct {
	Raw string
	Err error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classifying document: %v", e.Err)
	}
	return fmt.Sprintf("classifying document: %q is not a valid category", e.Raw)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// Classifier determines a document's category from its opening pages.
type Classifier struct {
	provider llm.Provider
	model    string
}

// New creates a Classifier using the given provider and model.
func New(provider llm.Provider, model string) *Classifier {
	return &Classifier{provider: provider, model: model}
}

type classifyResponse struct {
	Category string `json:"category"`
}

// Classify returns the category for a document given the concatenated text
// of its first two pages.
func (c *Classifier) Classify(ctx context.Context, firstPages string) (schema.DocumentCategory, error) {
	labels := make([]string, len(schema.Categories))
	for i, cat := range schema.Categories {
		labels[i] = string(cat)
	}

	messages := []llm.Message{
		{
			Role: llm.RoleSystem,
			Content: fmt.Sprintf(`You are a document classification system.
Classify the document excerpt into exactly one of these categories:
%s

Respond with JSON: {"category": "<one of the labels above, verbatim>"}`,
				"- "+strings.Join(labels, "\n- ")),
		},
		{
			Role:    llm.RoleUser,
			Content: "Document excerpt:\n" + firstPages,
		},
	}

	var resp classifyResponse
	if err := llm.Invoke(ctx, c.provider, c.model, messages, &resp); err != nil {
		return "", &ClassificationError{Err: err}
	}

	category, ok := schema.ParseCategory(resp.Category)
	if !ok {
		return "", &ClassificationError{Raw: resp.Category}
	}
	return category, nil
}
