// Package storage keeps uploaded complaint images on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civicbridge/complaint-service/internal/config"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

// BlobStore writes validated uploads under a directory and hands back public references.
type BlobStore struct {
	dir          string
	publicPrefix string
	maxFileBytes int64
	maxFiles     int
	allowedTypes []string
	now          func() time.Time
	logger       *zap.Logger
}

// NewBlobStore creates the upload directory if needed.
func NewBlobStore(cfg config.UploadConfig, logger *zap.Logger) (*BlobStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &BlobStore{
		dir:          cfg.Dir,
		publicPrefix: strings.TrimRight(cfg.PublicPrefix, "/"),
		maxFileBytes: cfg.MaxFileBytes,
		maxFiles:     cfg.MaxFiles,
		allowedTypes: cfg.AllowedTypes,
		now:          time.Now,
		logger:       logger,
	}, nil
}

// Dir is the directory served under the public prefix.
func (s *BlobStore) Dir() string { return s.dir }

// Validate checks every file before anything is written.
func (s *BlobStore) Validate(files []*multipart.FileHeader) error {
	if len(files) > s.maxFiles {
		return apperrors.NewValidationError(fmt.Sprintf("Maximum %d images allowed.", s.maxFiles), nil)
	}
	for _, fh := range files {
		if !slices.Contains(s.allowedTypes, strings.ToLower(fh.Header.Get("Content-Type"))) {
			return apperrors.NewValidationError("Invalid file type. Only JPG, JPEG and PNG are allowed.", map[string]any{"file": fh.Filename})
		}
		if fh.Size > s.maxFileBytes {
			return apperrors.NewValidationError(
				fmt.Sprintf("File is too large. Maximum size is %dMB.", s.maxFileBytes/(1024*1024)),
				map[string]any{"file": fh.Filename},
			)
		}
	}
	return nil
}

// SaveAll validates and writes files, returning their references in input order.
// Either every file is stored or none is.
func (s *BlobStore) SaveAll(field string, files []*multipart.FileHeader) ([]string, error) {
	if err := s.Validate(files); err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(files))
	for _, fh := range files {
		key := s.newKey(field, fh)
		if err := s.write(key, fh); err != nil {
			s.Remove(refs)
			return nil, apperrors.NewInternalError(fmt.Errorf("store %s: %w", fh.Filename, err))
		}
		refs = append(refs, s.publicPrefix+"/"+key)
	}
	return refs, nil
}

// Remove deletes stored blobs by reference. Failures are logged only.
func (s *BlobStore) Remove(refs []string) {
	for _, ref := range refs {
		key := path.Base(strings.TrimPrefix(ref, s.publicPrefix+"/"))
		if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove blob", zap.String("ref", ref), zap.Error(err))
		}
	}
}

func (s *BlobStore) newKey(field string, fh *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		switch strings.ToLower(fh.Header.Get("Content-Type")) {
		case "image/png":
			ext = ".png"
		default:
			ext = ".jpg"
		}
	}
	return fmt.Sprintf("%s-%d-%d%s", field, s.now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}

func (s *BlobStore) write(key string, fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(filepath.Join(s.dir, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return err
	}
	return dst.Close()
}
