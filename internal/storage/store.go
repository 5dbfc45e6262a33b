// Package storage keeps uploaded files on local disk under named buckets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"jobboard/internal/observability"

	"github.com/google/uuid"
)

// Buckets.
const (
	BucketCompanyLogos    = "company_logos"
	BucketCVs             = "cv"
	BucketProfilePictures = "profile_pictures"
)

var buckets = map[string]struct{}{
	BucketCompanyLogos:    {},
	BucketCVs:             {},
	BucketProfilePictures: {},
}

// ErrInvalidRef is returned for references outside the known buckets.
var ErrInvalidRef = errors.New("invalid file reference")

// FileStore saves and removes uploaded files. A reference has the form
// "<bucket>/<name>" and is what gets persisted in the database.
type FileStore interface {
	Save(ctx context.Context, bucket, filename string, content []byte) (string, error)
	Remove(ref string) error
}

// DiskStore is a FileStore rooted at a directory.
type DiskStore struct {
	root string
}

// NewDiskStore returns a DiskStore rooted at root.
func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

// Root is the directory the store writes to.
func (s *DiskStore) Root() string { return s.root }

// Save writes content under a random name that keeps filename's extension.
func (s *DiskStore) Save(ctx context.Context, bucket, filename string, content []byte) (ref string, err error) {
	defer func() {
		observability.Uploads.WithLabelValues(bucket, observability.Result(err)).Inc()
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, ok := buckets[bucket]; !ok {
		return "", fmt.Errorf("unknown bucket %q", bucket)
	}

	ref = path.Join(bucket, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
	abs := filepath.Join(s.root, filepath.FromSlash(ref))

	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}
	if err := os.WriteFile(abs, content, 0o600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return ref, nil
}

// Remove deletes the file behind ref. Missing files are not an error.
func (s *DiskStore) Remove(ref string) error {
	abs, err := s.Path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Path resolves ref to an absolute path, rejecting anything that escapes a bucket.
func (s *DiskStore) Path(ref string) (string, error) {
	clean := path.Clean(ref)
	bucket, name, ok := strings.Cut(clean, "/")
	if !ok || name == "" || strings.Contains(name, "/") || strings.HasPrefix(name, ".") {
		return "", ErrInvalidRef
	}
	if _, known := buckets[bucket]; !known {
		return "", ErrInvalidRef
	}
	return filepath.Join(s.root, bucket, name), nil
}
