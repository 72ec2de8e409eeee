package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	// For localfs this echoes the object key.
	// For gdrive it is the real fileId, needed to read the object back.
	ObjectKey string
	Size      int64
}

// StorageProvider is implemented by publishing backends (localfs, gdrive).
// GetObject takes the key PutObject returned, which for gdrive is the
// provider-assigned file id rather than the requested key.
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error)
}
