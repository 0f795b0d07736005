// Package upload validates incoming image attachments and persists them on
// local disk under collision-resistant names.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnsupportedMediaType indicates the file extension is outside the
// allowed set.
var ErrUnsupportedMediaType = errors.New("only images are allowed (.png, .jpg, .jpeg)")

// ErrPayloadTooLarge indicates the attachment exceeds the size limit.
var ErrPayloadTooLarge = errors.New("file exceeds maximum allowed size")

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Store writes validated attachments to a directory served under a public
// base URL.
type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewStore creates the upload directory if needed and returns a Store.
func NewStore(dir, baseURL string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

// Save validates the attachment and writes it under a generated name,
// returning the stored name for later URL construction.
func (s *Store) Save(originalName string, r io.Reader, declaredSize int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedMediaType
	}
	if declaredSize > s.maxBytes {
		return "", ErrPayloadTooLarge
	}

	name := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	// The declared size is client-supplied; cap the actual stream as well.
	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > s.maxBytes {
		err = ErrPayloadTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return name, nil
}

// Remove deletes a stored attachment. Used to compensate when the article
// insert fails after the file was written.
func (s *Store) Remove(name string) error {
	return os.Remove(filepath.Join(s.dir, filepath.Base(name)))
}

// Dir returns the directory stored files live in.
func (s *Store) Dir() string {
	return s.dir
}

// PublicURL resolves a stored name to an absolute, publicly fetchable URL.
func (s *Store) PublicURL(name string) string {
	return s.baseURL + "/uploads/" + filepath.Base(name)
}
