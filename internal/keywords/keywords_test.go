package keywords

import (
	"reflect"
	"testing"
)

func TestDocumentKey(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"policy.pdf", "policy_pdf"},
		{"My Policy (2024).txt", "my_policy_2024_txt"},
		{"https://example.com/docs/policy.md", "https_example_com_docs_policy_md"},
		{"  spaced  out  ", "spaced_out"},
		{"___", ""},
		{"UPPER_case-mix", "upper_case_mix"},
	}

	for _, tt := range tests {
		if got := DocumentKey(tt.source); got != tt.want {
			t.Errorf("DocumentKey(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestFileStoreLoadUnknownDocument(t *testing.T) {
	store := NewFileStore(t.TempDir())

	vocab, err := store.Load("never_saved")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if vocab == nil || len(vocab) != 0 {
		t.Errorf("expected empty map for unknown document, got %v", vocab)
	}
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	store := NewFileStore(t.TempDir())

	vocab := map[string][]string{
		"coverage_type": {"Hospitalization", "Cashless Treatment"},
		"jurisdiction":  {"India"},
	}
	if err := store.Save("policy_pdf", vocab); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load("policy_pdf")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, vocab) {
		t.Errorf("Load = %v, want %v", loaded, vocab)
	}
}

func TestFileStoreSaveRewritesFully(t *testing.T) {
	store := NewFileStore(t.TempDir())

	if err := store.Save("doc", map[string][]string{"a": {"1"}, "b": {"2"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save("doc", map[string][]string{"a": {"1", "3"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load("doc")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := loaded["b"]; ok {
		t.Error("Save should rewrite the whole vocabulary, not merge")
	}
	if !reflect.DeepEqual(loaded["a"], []string{"1", "3"}) {
		t.Errorf("loaded a = %v", loaded["a"])
	}
}

func TestFileStoreIsolatesDocuments(t *testing.T) {
	store := NewFileStore(t.TempDir())

	if err := store.Save("doc_one", map[string][]string{"f": {"x"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	other, err := store.Load("doc_two")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("documents share vocabulary: %v", other)
	}
}

func TestContains(t *testing.T) {
	vocab := map[string][]string{"coverage_type": {"Dental", "Cashless Treatment"}}

	if !Contains(vocab, "coverage_type", "Dental") {
		t.Error("expected verbatim member to be found")
	}
	if Contains(vocab, "coverage_type", "dental") {
		t.Error("Contains must be exact, not case-insensitive")
	}
	if Contains(vocab, "missing_field", "Dental") {
		t.Error("missing field should not contain anything")
	}
}
