package storage

import (
	"context"
	"fmt"
	"time"
)

// ImageStore persists processed product images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

type Options struct {
	Driver string // local | r2

	LocalDir       string
	LocalURLPrefix string

	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string
	UploadTimeout     time.Duration
}

// New builds the ImageStore selected by opts.Driver.
func New(ctx context.Context, opts Options) (ImageStore, error) {
	switch opts.Driver {
	case "", "local":
		return NewLocal(opts.LocalDir, opts.LocalURLPrefix), nil
	case "r2":
		return NewR2Storage(ctx, opts.R2AccountID, opts.R2AccessKeyID, opts.R2AccessKeySecret,
			opts.R2BucketName, opts.R2PublicURL, opts.UploadTimeout)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER: %s", opts.Driver)
	}
}

func extFor(contentType string) string {
	switch contentType {
	case "image/webp":
		return ".webp"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	}
	return ".bin"
}
