package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/pkordes/stashport/internal/domain"
)

// coverTypes are the image types accepted as cover photos.
var coverTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Store persists uploaded files and returns their public URL.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// CoverService accepts cover photo uploads.
type CoverService struct {
	store    Store
	maxBytes int64
}

// NewCoverService constructs a CoverService that rejects files over maxBytes.
func NewCoverService(store Store, maxBytes int64) *CoverService {
	return &CoverService{store: store, maxBytes: maxBytes}
}

// Upload checks the size and sniffed type of r, stores it under the caller's
// prefix and returns the public URL.
func (s *CoverService) Upload(ctx context.Context, viewer *domain.Identity, r io.Reader) (string, error) {
	if viewer == nil {
		return "", fmt.Errorf("service.CoverService.Upload: %w", domain.ErrUnauthorized)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("service.CoverService.Upload: read: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("service.CoverService.Upload: %w",
			domain.NewValidationError(fmt.Sprintf("file too large (max %d MB)", s.maxBytes>>20)))
	}
	if len(data) == 0 {
		return "", fmt.Errorf("service.CoverService.Upload: %w", domain.NewValidationError("file is empty"))
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), coverTypes...) {
		return "", fmt.Errorf("service.CoverService.Upload: %w",
			domain.NewValidationError("unsupported file type "+mt.String()+"; use JPEG, PNG, WebP or GIF"))
	}

	key := path.Join("covers", viewer.UserID.String(), uuid.NewString()+mt.Extension())
	url, err := s.store.Put(ctx, key, bytes.NewReader(data), mt.String())
	if err != nil {
		return "", fmt.Errorf("service.CoverService.Upload: %w", err)
	}
	return url, nil
}
