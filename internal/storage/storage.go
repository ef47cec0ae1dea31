// Package storage saves uploaded images on the local disk.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cardona-dev/bean-quick/internal/apperror"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Storage persists opaque files and resolves their public URL.
type Storage interface {
	// Save stores data under folder and returns its relative path.
	Save(ctx context.Context, folder string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 2 << 20

// Local writes files below a root directory served at BaseURL.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", root, err)
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save accepts images only, detected from content rather than the client's file name.
func (l *Local) Save(_ context.Context, folder string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperror.Validation("image", "file is empty")
	}
	if len(data) > MaxImageSize {
		return "", apperror.Validation("image", "file exceeds %d bytes", MaxImageSize)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", apperror.Validation("image", "unsupported content type %s", mt.String())
	}

	rel := filepath.ToSlash(filepath.Join(folder, uuid.New().String()+mt.Extension()))
	full, err := l.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", folder, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return rel, nil
}

// Delete removes the file. A missing file is not an error.
func (l *Local) Delete(_ context.Context, path string) error {
	if path == "" {
		return nil
	}
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

func (l *Local) URL(path string) string {
	if path == "" {
		return ""
	}
	return l.baseURL + "/" + path
}

// Root is the directory files are written to.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) resolve(rel string) (string, error) {
	full := filepath.Join(l.root, filepath.FromSlash(rel))
	within, err := filepath.Rel(l.root, full)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", apperror.Validation("path", "path escapes storage root")
	}
	return full, nil
}
