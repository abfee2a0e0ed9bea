package documents

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/japanir/equitysync/pkg/errors"
)

// Store writes per code documents as independent JSON files under a
// directory, so one bad write never touches another code's document.
type Store struct {
	dir string
}

// NewStore creates the directory if needed and returns a store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapIO("mkdir", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save writes doc as <dir>/<code>.json, replacing any previous document.
func (s *Store) Save(code string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.WrapParse("json", code, err)
	}

	path := s.path(code)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.WrapIO("write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// Load reads the document for code into target.
func (s *Store) Load(code string, target any) error {
	data, err := os.ReadFile(s.path(code))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.ErrNotFound
		}
		return errors.WrapIO("read", s.path(code), err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return errors.WrapParse("json", s.path(code), err)
	}
	return nil
}

// Codes lists the codes with a stored document.
func (s *Store) Codes() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.WrapIO("read", s.dir, err)
	}
	var codes []string
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) == ".json" {
			codes = append(codes, name[:len(name)-len(".json")])
		}
	}
	return codes, nil
}

func (s *Store) path(code string) string {
	return filepath.Join(s.dir, code+".json")
}
