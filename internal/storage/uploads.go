package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	ErrFileTooLarge  = errors.New("file exceeds maximum allowed size")
	ErrExtNotAllowed = errors.New("file extension not allowed")
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// UploadStore keeps proof-of-payment files on local disk under a single
// directory. Stored names are sanitized and timestamp-prefixed, so a
// re-uploaded filename never clobbers an earlier one.
type UploadStore struct {
	dir     string
	maxSize int64
	allowed map[string]struct{}
}

func NewUploadStore(dir string, maxSize int64, allowedExts []string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	allowed := make(map[string]struct{}, len(allowedExts))
	for _, ext := range allowedExts {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &UploadStore{dir: dir, maxSize: maxSize, allowed: allowed}, nil
}

// Allowed reports whether the filename carries an accepted extension.
func (s *UploadStore) Allowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	_, ok := s.allowed[ext]
	return ok
}

// AllowedExtensions lists the accepted extensions for error messages.
func (s *UploadStore) AllowedExtensions() []string {
	exts := make([]string, 0, len(s.allowed))
	for ext := range s.allowed {
		exts = append(exts, ext)
	}
	return exts
}

// Save writes the uploaded content and returns the stored name.
func (s *UploadStore) Save(filename string, r io.Reader) (string, error) {
	if !s.Allowed(filename) {
		return "", ErrExtNotAllowed
	}
	safe := unsafeChars.ReplaceAllString(filepath.Base(filename), "_")
	name := time.Now().Format("20060102_150405") + "_" + safe

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()

	// Copy one byte past the cap to detect oversize input.
	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if n > s.maxSize {
		os.Remove(f.Name())
		return "", ErrFileTooLarge
	}
	return name, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *UploadStore) Remove(name string) error {
	if filepath.Base(name) != name {
		return fmt.Errorf("invalid stored name %q", name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Open loads a stored file fully into memory for attachment to an email.
func (s *UploadStore) Open(name string) ([]byte, error) {
	// Stored names never contain separators; reject anything that tries.
	if filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid stored name %q", name)
	}
	return os.ReadFile(filepath.Join(s.dir, name))
}
