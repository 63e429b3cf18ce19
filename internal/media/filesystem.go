package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	// ErrEmptyPayload reports an upload without content.
	ErrEmptyPayload = errors.New("media: empty payload")
	// ErrForeignReference reports a reference outside the store's prefix.
	ErrForeignReference = errors.New("media: reference not owned by this store")

	whitespace = regexp.MustCompile(`\s+`)
)

// FileStore writes uploads to a public directory and returns URL paths
// under a fixed prefix.
type FileStore struct {
	dir    string
	prefix string
	logger interfaces.Logger
	suffix func() string
}

var _ interfaces.BlobStore = (*FileStore)(nil)

// Option configures a FileStore.
type Option func(*FileStore)

func WithLogger(logger interfaces.Logger) Option {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSuffix overrides the random name suffix generator.
func WithSuffix(fn func() string) Option {
	return func(s *FileStore) {
		if fn != nil {
			s.suffix = fn
		}
	}
}

// NewFileStore stores files in dir and serves them under urlPrefix.
func NewFileStore(dir, urlPrefix string, opts ...Option) *FileStore {
	prefix := "/" + strings.Trim(strings.TrimSpace(urlPrefix), "/")
	if prefix == "/" {
		prefix = "/uploads"
	}
	s := &FileStore{
		dir:    dir,
		prefix: prefix,
		logger: logging.NoOp(),
		suffix: randomSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put writes payload under a unique name derived from name and returns its
// reference.
func (s *FileStore) Put(ctx context.Context, name string, payload []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(payload) == 0 {
		return "", ErrEmptyPayload
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("media: create directory: %w", err)
	}

	fileName := FileName(name, s.suffix())
	if err := os.WriteFile(filepath.Join(s.dir, fileName), payload, 0o644); err != nil {
		return "", fmt.Errorf("media: write %s: %w", fileName, err)
	}
	ref := path.Join(s.prefix, fileName)
	s.logger.Info("media.stored", "ref", ref, "bytes", len(payload))
	return ref, nil
}

// Delete removes the file behind ref. Missing files are not an error.
func (s *FileStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasPrefix(ref, s.prefix+"/") {
		return ErrForeignReference
	}
	fileName := path.Base(ref)
	if err := os.Remove(filepath.Join(s.dir, fileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media: delete %s: %w", fileName, err)
	}
	return nil
}

// FileName builds "<base>-<suffix><ext>" with whitespace in base replaced by
// hyphens and any directory components dropped.
func FileName(name, suffix string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	base = whitespace.ReplaceAllString(strings.TrimSpace(base), "-")
	if base == "" {
		base = "upload"
	}
	return base + "-" + suffix + strings.ToLower(ext)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
