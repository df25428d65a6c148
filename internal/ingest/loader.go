// Package ingest loads documents into pages ahead of classification and
// extraction. It handles plain-text and markdown sources from local paths,
// directories, and URLs; binary formats (PDF, Word) are expected to be
// converted upstream.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Page is one page of a loaded document.
type Page struct {
	Number int
	Text   string
}

// Document is a loaded, paginated document.
type Document struct {
	// Source is the path or URL the document came from. It is the stable
	// identity the keyword store is keyed by.
	Source string
	Name   string
	Pages  []Page
}

// FirstPages returns the concatenated text of up to n leading pages,
// the classifier's input.
func (d *Document) FirstPages(n int) string {
	if n > len(d.Pages) {
		n = len(d.Pages)
	}
	var parts []string
	for _, p := range d.Pages[:n] {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

var supportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// LoadFile reads a text document from disk and splits it into pages.
func LoadFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, fmt.Errorf("unsupported document type %q: use .txt or .md", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &Document{
		Source: path,
		Name:   filepath.Base(path),
		Pages:  paginate(string(data)),
	}, nil
}

// LoadURL fetches a text document over HTTP and splits it into pages.
func LoadURL(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/") && !strings.Contains(contentType, "markdown") {
		return nil, fmt.Errorf("unsupported content type %q from %s", contentType, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	name := filepath.Base(req.URL.Path)
	if name == "" || name == "/" || name == "." {
		name = req.URL.Host
	}

	return &Document{
		Source: url,
		Name:   name,
		Pages:  paginate(string(data)),
	}, nil
}

// paginate splits raw document text into pages on form feeds or horizontal
// rule lines ("---" on its own line). A document without page markers is a
// single page.
func paginate(text string) []Page {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var rawPages []string
	if strings.Contains(text, "\f") {
		rawPages = strings.Split(text, "\f")
	} else {
		rawPages = splitOnRule(text)
	}

	pages := make([]Page, 0, len(rawPages))
	for _, raw := range rawPages {
		pages = append(pages, Page{Number: len(pages), Text: raw})
	}
	return pages
}

func splitOnRule(text string) []string {
	lines := strings.Split(text, "\n")
	var pages []string
	var current []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "---" {
			pages = append(pages, strings.Join(current, "\n"))
			current = nil
			continue
		}
		current = append(current, line)
	}
	pages = append(pages, strings.Join(current, "\n"))
	return pages
}
