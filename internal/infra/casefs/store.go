// Package casefs implements the on-disk case layout and the evidence
// preservation pipeline:
//
//	cases/<name>/data/<item_id>.json
//	cases/<name>/metadata/<item_id>_meta.json
//	cases/<name>/metadata/forensic_log.jsonl
//	cases/<name>/analysis/*.json
//	cases/<name>/exports/*.html
package casefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rizaldyaw/socmint/internal/domain/cases"
	"github.com/rizaldyaw/socmint/internal/domain/evidence"
)

// Store manages the case directory layout under one root.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir, creating the root itself if needed.
// Individual case layouts are created lazily by Ensure.
func NewStore(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("casefs: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("casefs: create root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute cases directory.
func (s *Store) Root() string { return s.root }

// Resolve sanitizes a case name and returns its layout without touching disk.
func (s *Store) Resolve(name string) (cases.Paths, error) {
	safe, err := cases.SanitizeName(name)
	if err != nil {
		return cases.Paths{}, err
	}
	root := filepath.Join(s.root, safe)
	return cases.Paths{
		Name:     safe,
		Root:     root,
		Data:     filepath.Join(root, cases.DataDir),
		Metadata: filepath.Join(root, cases.MetadataDir),
		Analysis: filepath.Join(root, cases.AnalysisDir),
		Exports:  filepath.Join(root, cases.ExportsDir),
	}, nil
}

// Ensure resolves a case and creates its directory layout. Repeated calls are
// safe and yield identical paths.
func (s *Store) Ensure(name string) (cases.Paths, error) {
	p, err := s.Resolve(name)
	if err != nil {
		return cases.Paths{}, err
	}
	for _, dir := range []string{p.Data, p.Metadata, p.Analysis, p.Exports} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cases.Paths{}, fmt.Errorf("casefs: create %s: %w", dir, err)
		}
	}
	return p, nil
}

// Exists reports whether a case directory is already present.
func (s *Store) Exists(name string) bool {
	p, err := s.Resolve(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(p.Root)
	return err == nil && info.IsDir()
}

// List returns the names of all existing cases, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("casefs: list cases: %w", err)
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ArtifactPath resolves a relative artifact path inside a case, rejecting
// anything that escapes the case directory.
func (s *Store) ArtifactPath(name, rel string) (string, error) {
	p, err := s.Resolve(name)
	if err != nil {
		return "", err
	}
	if !s.Exists(name) {
		return "", cases.ErrNotFound
	}
	cleaned := filepath.Clean("/" + rel)
	joined := filepath.Join(p.Root, cleaned)
	if joined != p.Root && !strings.HasPrefix(joined, p.Root+string(os.PathSeparator)) {
		return "", cases.ErrInvalidName
	}
	return joined, nil
}

// LogPath returns the forensic log location for a case.
func (s *Store) LogPath(name string) (string, error) {
	p, err := s.Resolve(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(p.Metadata, cases.LogFilename), nil
}

// Log reads a case's forensic log. A case with no log yet yields an empty
// event list.
func (s *Store) Log(name string) ([]evidence.LogEvent, error) {
	if !s.Exists(name) {
		return nil, cases.ErrNotFound
	}
	path, err := s.LogPath(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return []evidence.LogEvent{}, nil
	}
	return ReadLog(path)
}
