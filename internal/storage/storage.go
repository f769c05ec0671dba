// Package storage keeps event attachments in an S3-compatible object store.
// Content is streamed end to end; nothing touches local disk.
package storage

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Object metadata keys written next to every attachment.
const (
	MetaOriginalFilename = "original-filename"
	MetaEventID          = "event-id"
)

// PutObjectOptions describe an upload. A Size of -1 lets the backend
// chunk the stream when the length is unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is what the store reports about a written or fetched object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is an S3-compatible object storage client.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get streams the object; the caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a download URL that needs no credentials until expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// EventPrefix is the key prefix shared by all attachments of an event.
func EventPrefix(eventID string) string {
	return path.Join("events", eventID) + "/"
}

// AttachmentObject returns a fresh key under EventPrefix(eventID) that keeps
// the extension of filename, and the upload options carrying its metadata.
func AttachmentObject(eventID, filename, contentType string, size int64) (string, PutObjectOptions) {
	key := EventPrefix(eventID) + uuid.New().String() + filepath.Ext(filename)
	return key, PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			MetaOriginalFilename: filename,
			MetaEventID:          eventID,
		},
	}
}
