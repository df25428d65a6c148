// Package chunker splits page text into overlapping fixed-size windows and
// stamps every window with its page identity and extracted metadata.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ziadkadry99/policyrag/internal/schema"
	"github.com/ziadkadry99/policyrag/internal/vectorstore"
)

const (
	// DefaultChunkSize keeps each chunk comfortably inside embedding-model
	// context windows.
	DefaultChunkSize = 800
	// DefaultOverlap preserves continuity across chunk boundaries.
	DefaultOverlap = 100
)

// Chunker produces vector store chunks from cleaned page text.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. Non-positive size or out-of-range overlap fall back
// to the defaults.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
		if overlap >= size {
			overlap = size / 8
		}
	}
	return &Chunker{size: size, overlap: overlap}
}

// SplitPage chunks one page's text. Every chunk shares a freshly generated
// document id (one per page) and inherits the page's full extracted
// metadata. Pages with empty or whitespace-only text yield no chunks.
func (c *Chunker) SplitPage(pageText string, pageNo int, category schema.DocumentCategory, metadata map[string][]string) []vectorstore.Chunk {
	text := CleanText(pageText)
	if text == "" {
		return nil
	}

	docID := uuid.NewString()
	windows := c.split(text)

	chunks := make([]vectorstore.Chunk, 0, len(windows))
	for i, w := range windows {
		chunks = append(chunks, vectorstore.Chunk{
			ID:       fmt.Sprintf("%s_p%d_c%d", docID, pageNo, i),
			DocID:    docID,
			Page:     pageNo,
			Text:     w,
			Category: category,
			Metadata: metadata,
		})
	}
	return chunks
}

// split cuts text into windows of at most c.size characters, each starting
// c.size-c.overlap characters after the previous one. Windows are measured in
// runes so multi-byte text is never severed mid-character.
func (c *Chunker) split(text string) []string {
	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}
	}

	step := c.size - c.overlap
	var windows []string
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end >= len(runes) {
			windows = append(windows, string(runes[start:]))
			break
		}
		windows = append(windows, string(runes[start:end]))
	}
	return windows
}

// CleanText collapses all runs of whitespace into single spaces.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
