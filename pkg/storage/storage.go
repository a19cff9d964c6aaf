package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind selects the extension allowlist for an upload.
type Kind string

const (
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

var allowed = map[Kind]map[string]bool{
	KindImage:    {"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true},
	KindAudio:    {"mp3": true, "wav": true, "aac": true, "m4a": true},
	KindDocument: {"pdf": true, "doc": true, "docx": true, "txt": true},
}

var (
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrTooLarge            = errors.New("file too large")
)

// Store persists uploaded media and returns a URL for it.
type Store interface {
	Save(ctx context.Context, kind Kind, filename string, r io.Reader) (string, error)
}

// Allowed reports whether filename has an extension accepted for kind.
func Allowed(kind Kind, filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext != "" && allowed[kind][ext]
}

type Config struct {
	Dir      string
	BaseURL  string
	MaxBytes int64
}

type diskStore struct {
	cfg Config
	now func() time.Time
}

// NewDiskStore writes files under cfg.Dir/<kind>/<yyyymm>/ and serves
// them from cfg.BaseURL with the same relative path.
func NewDiskStore(cfg Config) (Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &diskStore{cfg: cfg, now: time.Now}, nil
}

func (s *diskStore) Save(ctx context.Context, kind Kind, filename string, r io.Reader) (string, error) {
	if !Allowed(kind, filename) {
		return "", fmt.Errorf("%w: %s", ErrExtensionNotAllowed, filename)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := path.Join(string(kind), s.now().Format("200601"),
		uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
	dst := filepath.Join(s.cfg.Dir, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	src := r
	if s.cfg.MaxBytes > 0 {
		src = io.LimitReader(r, s.cfg.MaxBytes+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if s.cfg.MaxBytes > 0 && n > s.cfg.MaxBytes {
		os.Remove(dst)
		return "", ErrTooLarge
	}

	return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + rel, nil
}
