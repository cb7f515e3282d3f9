// Package media stores uploaded files as content-addressed blobs and serves
// them back. Users and companies keep only the blob id (or the media URL
// derived from it).
package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/domain"
)

// BlobStore is the persistence port for blobs. Putting an existing id keeps
// the stored bytes and only refreshes CreatedAt.
type BlobStore interface {
	PutBlob(ctx context.Context, b *domain.Blob) error
	Blob(ctx context.Context, id string) (*domain.Blob, error)
}

// imageTypes are the raster formats accepted for photos and logos. Scriptable
// formats such as SVG are refused because media is served from the API origin.
var imageTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
}

var resumeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Library validates uploads and writes them to a BlobStore.
type Library struct {
	store    BlobStore
	maxBytes int64
	now      func() time.Time
}

// NewLibrary returns a Library rejecting uploads larger than maxBytes.
func NewLibrary(store BlobStore, maxBytes int64) *Library {
	return &Library{store: store, maxBytes: maxBytes, now: time.Now}
}

// SaveImage stores up when its content sniffs as a raster image.
func (l *Library) SaveImage(ctx context.Context, up domain.Upload) (*domain.Blob, error) {
	mt, err := l.sniff(up)
	if err != nil {
		return nil, err
	}
	if !isAny(mt, imageTypes) {
		return nil, apperr.Validation("File must be an image")
	}
	return l.put(ctx, up, mt.String())
}

// SaveResume stores up when its content sniffs as PDF or Word.
func (l *Library) SaveResume(ctx context.Context, up domain.Upload) (*domain.Blob, error) {
	mt, err := l.sniff(up)
	if err != nil {
		return nil, err
	}
	if !isAny(mt, resumeTypes) {
		return nil, apperr.Validation("Resume must be a PDF or Word document")
	}
	return l.put(ctx, up, mt.String())
}

// Get returns any blob by id.
func (l *Library) Get(ctx context.Context, id string) (*domain.Blob, error) {
	b, err := l.store.Blob(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("File not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load blob")
	}
	return b, nil
}

// Image returns the blob only when it holds an accepted raster image.
// Resumes are never served through the public media path.
func (l *Library) Image(ctx context.Context, id string) (*domain.Blob, error) {
	b, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(imageTypes, b.ContentType) {
		return nil, apperr.NotFound("File not found")
	}
	return b, nil
}

func (l *Library) sniff(up domain.Upload) (*mimetype.MIME, error) {
	if len(up.Data) == 0 {
		return nil, apperr.Validation("File is empty")
	}
	if l.maxBytes > 0 && int64(len(up.Data)) > l.maxBytes {
		return nil, apperr.Validation("File exceeds the %d MB limit", l.maxBytes>>20)
	}
	return mimetype.Detect(up.Data), nil
}

func (l *Library) put(ctx context.Context, up domain.Upload, contentType string) (*domain.Blob, error) {
	b := &domain.Blob{
		ID:          ContentID(up.Data),
		ContentType: contentType,
		Size:        int64(len(up.Data)),
		Data:        up.Data,
		CreatedAt:   l.now().UTC(),
	}
	if err := l.store.PutBlob(ctx, b); err != nil {
		return nil, apperr.Internal(err, "store blob")
	}
	return b, nil
}

// ContentID is the hex sha256 of data.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func isAny(mt *mimetype.MIME, types []string) bool {
	for m := mt; m != nil; m = m.Parent() {
		for _, t := range types {
			if m.Is(t) {
				return true
			}
		}
	}
	return false
}
