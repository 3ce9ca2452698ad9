// Package storage defines the interface for the remote media store.
// Swap implementations by changing the concrete type injected at startup:
// Cloudinary is the default, and the MinIO implementation works with any
// S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// Folder is the remote folder every upload is placed in.
const Folder = "file-uploads"

// ResourceType tells the provider how to treat an upload.
type ResourceType string

// Provider resource types.
const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
	ResourceRaw   ResourceType = "raw"
	ResourceAuto  ResourceType = "auto"
)

// ResourceTypeFor routes a MIME type to the provider resource type.
// This is independent of the statistics bucket a file is counted in.
func ResourceTypeFor(mimeType string) ResourceType {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return ResourceVideo
	case strings.HasPrefix(mimeType, "image/"):
		return ResourceImage
	default:
		return ResourceRaw
	}
}

// ErrProvider matches every error returned by a Provider for a failed remote call.
var ErrProvider = errors.New("storage provider error")

// ErrNotConfigured is returned when the selected provider has no credentials.
var ErrNotConfigured = errors.New("cloud storage is not configured")

// Error is a failed remote call. Message is what the provider said and is
// safe to show to clients.
type Error struct {
	Provider string
	Op       string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	return e.Provider + " " + e.Op + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every *Error match ErrProvider.
func (e *Error) Is(target error) bool { return target == ErrProvider }

// UploadInput describes one file to send to the provider.
type UploadInput struct {
	Reader       io.Reader
	Filename     string
	Size         int64
	ContentType  string
	ResourceType ResourceType
}

// UploadResult is the metadata the provider returns for a stored file.
type UploadResult struct {
	PublicID     string
	URL          string
	ThumbnailURL string
	Format       string
	ResourceType ResourceType
	Bytes        int64
}

// Provider uploads and destroys files on a remote media store.
type Provider interface {
	// Upload streams the file to the provider and returns its metadata.
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
	// Delete destroys the remote file identified by publicID.
	Delete(ctx context.Context, publicID string, resourceType ResourceType) error
	// Name identifies the provider in logs.
	Name() string
}
