package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyFile signals an upload with no content.
var ErrEmptyFile = errors.New("storage: empty file")

// ErrTooLarge signals an upload over the document size cap.
var ErrTooLarge = errors.New("storage: file exceeds size limit")

// maxUploadBytes caps onboarding document size at 5 MiB.
const maxUploadBytes = 5 << 20

// Uploader persists an onboarding document and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, originalName string, r io.Reader) (string, error)
}

// LocalStore writes uploads to a directory served as static files. Object
// names are random so callers cannot probe for other users' documents.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore ensures the target directory exists and returns the store.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload streams the document to disk under a random name, keeping the
// original extension so content types stay guessable when serving.
func (s *LocalStore) Upload(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}

	// Read one byte past the cap so an oversized document is rejected
	// outright instead of stored truncated.
	n, err := io.Copy(f, io.LimitReader(r, maxUploadBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if n == 0 {
		os.Remove(path)
		return "", ErrEmptyFile
	}
	if n > maxUploadBytes {
		os.Remove(path)
		return "", ErrTooLarge
	}

	return s.baseURL + "/" + name, nil
}
