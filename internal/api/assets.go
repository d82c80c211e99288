package api

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
)

// AssetResolver turns stored object keys into client-facing URLs.
type AssetResolver interface {
	PublicURL(objectKey string) string
	ThumbnailURL(objectKey string, width, height int) string
}

// ObjectStorage is the slice of the storage client the API needs.
type ObjectStorage interface {
	AssetResolver
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
}

// Thumbnail dimensions used by list representations.
const (
	thumbWidth  = 400
	thumbHeight = 250
)

// publicURL resolves a key, tolerating a nil resolver in tests.
func publicURL(r AssetResolver, key string) string {
	if r == nil || key == "" {
		return ""
	}
	return r.PublicURL(key)
}

func thumbnailURL(r AssetResolver, key string) string {
	if r == nil || key == "" {
		return ""
	}
	return r.ThumbnailURL(key, thumbWidth, thumbHeight)
}
