// Package storage contains the document store abstraction and its S3-compatible implementation.
// Objects are addressed by (bucket, key); the same key written twice keeps the last write.
package storage

import (
	"context"
	"io"
	"time"

	"docflow/internal/model"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Bucket       string
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the durable blob store both pipeline stages talk to.
type Storage interface {
	// Put uploads an object under ref using the provided reader and options.
	Put(ctx context.Context, ref model.ObjectRef, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, ref model.ObjectRef) (io.ReadCloser, ObjectInfo, error)
}
