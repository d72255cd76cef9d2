package llm

import (
	"fmt"
	"os"
)

// ScratchDoc is a short-lived HTML document on disk standing in for a
// fetched page when only a fragment is available. It exists for exactly
// one extraction call; Release must run on every exit path.
type ScratchDoc struct {
	path string
}

// NewScratchDoc wraps an HTML fragment into a standalone document and
// writes it to a temp file.
func NewScratchDoc(title, fragment string) (*ScratchDoc, error) {
	f, err := os.CreateTemp("", "starlift-*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch document: %w", err)
	}

	doc := fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head><title>%s</title></head>\n<body>%s</body>\n</html>", title, fragment)
	if _, err := f.WriteString(doc); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write scratch document: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to close scratch document: %w", err)
	}

	return &ScratchDoc{path: f.Name()}, nil
}

// Read returns the document contents
func (s *ScratchDoc) Read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read scratch document: %w", err)
	}
	return string(data), nil
}

// Path returns the on-disk location of the document
func (s *ScratchDoc) Path() string {
	return s.path
}

// Release removes the backing file. Safe to call more than once.
func (s *ScratchDoc) Release() {
	if s.path == "" {
		return
	}
	os.Remove(s.path)
	s.path = ""
}
