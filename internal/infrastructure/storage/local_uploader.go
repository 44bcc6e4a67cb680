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

	"github.com/google/uuid"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
)

// PublicPrefix is the URL path under which uploaded files are served.
const PublicPrefix = "/uploads"

const defaultMaxBytes = 500 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// LocalConfig configures a LocalUploader.
type LocalConfig struct {
	Root     string // directory files are written under
	BaseURL  string // public origin, e.g. http://localhost:8080
	MaxBytes int64
}

// LocalUploader stores files on the local filesystem under Root/<folder>
// with random names, served back at BaseURL/uploads/<folder>/<name>.
type LocalUploader struct {
	root     string
	baseURL  string
	maxBytes int64
}

var _ ports.Uploader = (*LocalUploader)(nil)

func NewLocalUploader(cfg LocalConfig) *LocalUploader {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &LocalUploader{
		root:     filepath.Clean(cfg.Root),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		maxBytes: maxBytes,
	}
}

// Root returns the directory served under PublicPrefix.
func (u *LocalUploader) Root() string {
	return u.root
}

// Upload writes data under folder and returns its public URL. Only image
// extensions are accepted.
func (u *LocalUploader) Upload(ctx context.Context, filename string, data []byte, folder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", domain.ErrUploadRejected)
	}
	if int64(len(data)) > u.maxBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", domain.ErrUploadRejected, u.maxBytes)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: extension %q not allowed", domain.ErrUploadRejected, ext)
	}
	if !validFolder(folder) {
		return "", fmt.Errorf("%w: invalid folder %q", domain.ErrUploadRejected, folder)
	}

	dir := filepath.Join(u.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return u.baseURL + path.Join(PublicPrefix, folder, name), nil
}

// Delete removes a file previously returned by Upload. URLs that do not
// point into the upload area and files already gone are ignored.
func (u *LocalUploader) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx := strings.Index(url, PublicPrefix+"/")
	if idx < 0 {
		return nil
	}
	rel := path.Clean(url[idx+len(PublicPrefix)+1:])
	if rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}

	target := filepath.Join(u.root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, u.root+string(filepath.Separator)) {
		return nil
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

func validFolder(folder string) bool {
	if folder == "" || strings.ContainsAny(folder, `/\`) || folder == "." || folder == ".." {
		return false
	}
	return true
}
