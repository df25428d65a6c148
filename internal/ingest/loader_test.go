package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFileSinglePage(t *testing.T) {
	path := writeFile(t, t.TempDir(), "policy.txt", "All employees are entitled to 20 days of annual leave.")

	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if doc.Source != path {
		t.Errorf("source = %q", doc.Source)
	}
	if doc.Name != "policy.txt" {
		t.Errorf("name = %q", doc.Name)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(doc.Pages))
	}
	if doc.Pages[0].Number != 0 {
		t.Errorf("page number = %d", doc.Pages[0].Number)
	}
}

func TestLoadFilePaginatesOnFormFeed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "policy.txt", "page zero\fpage one\fpage two")

	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(doc.Pages))
	}
	for i, p := range doc.Pages {
		if p.Number != i {
			t.Errorf("page %d numbered %d", i, p.Number)
		}
	}
	if !strings.Contains(doc.Pages[2].Text, "page two") {
		t.Errorf("page 2 text = %q", doc.Pages[2].Text)
	}
}

func TestLoadFilePaginatesOnHorizontalRule(t *testing.T) {
	content := "# Section A\nbody a\n---\n# Section B\nbody b\n"
	path := writeFile(t, t.TempDir(), "policy.md", content)

	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(doc.Pages))
	}
	if !strings.Contains(doc.Pages[0].Text, "Section A") || !strings.Contains(doc.Pages[1].Text, "Section B") {
		t.Errorf("pages split incorrectly: %q / %q", doc.Pages[0].Text, doc.Pages[1].Text)
	}
}

func TestLoadFileRejectsUnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "policy.pdf", "%PDF-1.4")

	if _, err := LoadFile(path); err == nil {
		t.Error("expected an error for a .pdf file")
	}
}

func TestFirstPages(t *testing.T) {
	doc := &Document{Pages: []Page{
		{Number: 0, Text: "alpha"},
		{Number: 1, Text: "beta"},
		{Number: 2, Text: "gamma"},
	}}

	got := doc.FirstPages(2)
	if !strings.Contains(got, "alpha") || !strings.Contains(got, "beta") {
		t.Errorf("FirstPages(2) = %q", got)
	}
	if strings.Contains(got, "gamma") {
		t.Error("FirstPages(2) included page 2")
	}

	if doc.FirstPages(10) == "" {
		t.Error("FirstPages past the end should return all pages")
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("page zero\fpage one"))
	}))
	defer srv.Close()

	doc, err := LoadURL(context.Background(), srv.URL+"/handbook.txt")
	if err != nil {
		t.Fatalf("LoadURL: %v", err)
	}
	if doc.Name != "handbook.txt" {
		t.Errorf("name = %q", doc.Name)
	}
	if len(doc.Pages) != 2 {
		t.Errorf("pages = %d", len(doc.Pages))
	}
}

func TestLoadURLRejectsBinaryContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	if _, err := LoadURL(context.Background(), srv.URL); err == nil {
		t.Error("expected an error for non-text content")
	}
}

func TestLoadURLNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := LoadURL(context.Background(), srv.URL); err == nil {
		t.Error("expected an error for a 404 response")
	}
}

func TestFindDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x")
	writeFile(t, dir, "sub/b.md", "x")
	writeFile(t, dir, "sub/c.pdf", "x")
	writeFile(t, dir, "node_modules/dep/d.txt", "x")

	found, err := FindDocuments(dir, nil, []string{"node_modules/**"})
	if err != nil {
		t.Fatalf("FindDocuments: %v", err)
	}

	got := map[string]bool{}
	for _, p := range found {
		got[p] = true
	}
	if !got["a.txt"] || !got["sub/b.md"] {
		t.Errorf("missing expected documents: %v", found)
	}
	if got["sub/c.pdf"] {
		t.Error("unsupported extension included")
	}
	for p := range got {
		if strings.HasPrefix(p, "node_modules") {
			t.Errorf("excluded directory leaked: %q", p)
		}
	}
}

func TestFindDocumentsInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x")
	writeFile(t, dir, "b.md", "x")

	found, err := FindDocuments(dir, []string{"**/*.md", "*.md"}, nil)
	if err != nil {
		t.Fatalf("FindDocuments: %v", err)
	}
	if len(found) != 1 || found[0] != "b.md" {
		t.Errorf("found = %v, want [b.md]", found)
	}
}
