package keywords

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON file per document under a base directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// on first Save, not here.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(docKey string) string {
	return filepath.Join(s.dir, docKey+".json")
}

func (s *FileStore) Load(docKey string) (map[string][]string, error) {
	data, err := os.ReadFile(s.path(docKey))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]string{}, nil
		}
		return nil, &IOError{DocKey: docKey, Err: err}
	}

	var vocab map[string][]string
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, &IOError{DocKey: docKey, Err: err}
	}
	if vocab == nil {
		vocab = map[string][]string{}
	}
	return vocab, nil
}

func (s *FileStore) Save(docKey string, vocab map[string][]string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &IOError{DocKey: docKey, Err: err}
	}

	data, err := json.MarshalIndent(vocab, "", "  ")
	if err != nil {
		return &IOError{DocKey: docKey, Err: err}
	}

	if err := os.WriteFile(s.path(docKey), data, 0o644); err != nil {
		return &IOError{DocKey: docKey, Err: err}
	}
	return nil
}
