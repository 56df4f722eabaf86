// Package typestore persists content type definitions in the local source
// tree as <src>/types/<name>/<name>.json.
package typestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"sitesctl/internal/domain"
)

// Store reads and writes type definitions below a types directory.
type Store struct {
	dir string
}

// New returns a store for the types directory of sourceDir.
func New(sourceDir string) *Store {
	return &Store{dir: filepath.Join(sourceDir, "types")}
}

// Dir returns the types directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file holding the definition of name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name, name+".json")
}

// Exists reports whether a definition of name has been saved.
func (s *Store) Exists(name string) bool {
	if validateName(name) != nil {
		return false
	}
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// Save writes def indented by four spaces and returns the file path.
func (s *Store) Save(def domain.TypeDefinition) (string, error) {
	if err := validateName(def.Name); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, def.Raw, "", "    "); err != nil {
		return "", fmt.Errorf("format type %s: %w", def.Name, err)
	}

	path := s.Path(def.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create type directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write type %s: %w", def.Name, err)
	}
	return path, nil
}

// Load reads the saved definition of name.
func (s *Store) Load(name string) (domain.TypeDefinition, error) {
	if err := validateName(name); err != nil {
		return domain.TypeDefinition{}, err
	}
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.TypeDefinition{}, domain.ErrNotFound("type %s does not exist", name)
		}
		return domain.TypeDefinition{}, fmt.Errorf("read type %s: %w", name, err)
	}
	return domain.NewTypeDefinition(data)
}

// validateName rejects names that would escape the types directory.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return domain.ErrValidation("invalid type name %q", name)
	}
	return nil
}
