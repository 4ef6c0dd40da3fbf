// Package cases defines the forensic case aggregate: a named, isolated
// directory tree accumulating evidence, metadata, analysis and exports.
package cases

import (
	"errors"
	"strings"
)

var (
	ErrInvalidName = errors.New("invalid case name")
	ErrNotFound    = errors.New("case not found")
	ErrExists      = errors.New("case already exists")
)

// Subdirectory conventions inside a case.
const (
	DataDir     = "data"
	MetadataDir = "metadata"
	AnalysisDir = "analysis"
	ExportsDir  = "exports"

	LogFilename = "forensic_log.jsonl"
)

// Paths holds the resolved directory layout for one case.
type Paths struct {
	Name     string
	Root     string
	Data     string
	Metadata string
	Analysis string
	Exports  string
}

// SanitizeName reduces a requested case name to a safe basename. Empty names,
// dot names, and anything containing a path separator are rejected.
func SanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return name, nil
}
