package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Store persists a named object and returns the URL it can be read from.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64) (string, error)
}

// DiskStore writes objects into a directory, as the backend's /uploads folder.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates a store under dir. When baseURL is set, Save returns
// baseURL + "/uploads/" + name; otherwise the written file path.
func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Save writes r to dir/name.
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	if s.baseURL == "" {
		return path, nil
	}
	return s.baseURL + "/uploads/" + name, nil
}

// Result describes a finished upload.
type Result struct {
	Name string
	URL  string
	Size int64
}

// Uploader names files and hands them to a Store.
type Uploader struct {
	store  Store
	logger *slog.Logger
}

// NewUploader creates an uploader over store.
func NewUploader(store Store, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{store: store, logger: logger}
}

// UploadFile stores the file at path under a generated name.
func (u *Uploader) UploadFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("%s is a directory", path)
	}

	return u.Upload(ctx, filepath.Base(path), f, info.Size())
}

// Upload stores r under a name generated from original.
func (u *Uploader) Upload(ctx context.Context, original string, r io.Reader, size int64) (Result, error) {
	if u.store == nil {
		return Result{}, errNoStore
	}
	name, err := GenerateName(original)
	if err != nil {
		return Result{}, err
	}

	url, err := u.store.Save(ctx, name, r, size)
	if err != nil {
		u.logger.ErrorContext(ctx, "upload failed", slog.String("name", name), slog.Any("error", err))
		return Result{}, err
	}

	u.logger.InfoContext(ctx, "file uploaded", slog.String("name", name), slog.String("url", url), slog.Int64("size", size))
	return Result{Name: name, URL: url, Size: size}, nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
