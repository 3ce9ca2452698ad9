package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/mediabox/service/internal/storage"
)

// sniffLen is how much of an upload is inspected when the client sent no usable MIME type.
const sniffLen = 3072

// ErrNoFile is returned when an upload request carries no file.
var ErrNoFile = errors.New("no file uploaded")

// UploadRequest is a file received from a client.
type UploadRequest struct {
	Reader      io.Reader
	Filename    string
	Size        int64
	ContentType string
}

// Service forwards files to the storage provider and keeps the registry in
// step with it. The registry is only touched after the remote call returned.
type Service struct {
	registry *Registry
	provider storage.Provider
	journal  Journal
	uploads  *semaphore.Weighted
	log      *zap.Logger
}

// NewService creates a new media Service. A nil journal disables auditing and
// maxUploads below one is treated as one.
func NewService(registry *Registry, provider storage.Provider, journal Journal, maxUploads int64, log *zap.Logger) *Service {
	if journal == nil {
		journal = NopJournal{}
	}
	if maxUploads < 1 {
		maxUploads = 1
	}
	return &Service{
		registry: registry,
		provider: provider,
		journal:  journal,
		uploads:  semaphore.NewWeighted(maxUploads),
		log:      log,
	}
}

// List returns every registered file, newest first, with the counters.
func (s *Service) List() ([]FileRecord, Stats) {
	return s.registry.List()
}

// Stats returns the current counters.
func (s *Service) Stats() Stats {
	return s.registry.Stats()
}

// Upload sends the file to the provider and registers the result.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (FileRecord, Stats, error) {
	if req.Reader == nil {
		return FileRecord{}, Stats{}, ErrNoFile
	}

	reader, contentType, err := detectContentType(req.Reader, req.ContentType)
	if err != nil {
		return FileRecord{}, Stats{}, fmt.Errorf("read upload: %w", err)
	}

	if err := s.uploads.Acquire(ctx, 1); err != nil {
		return FileRecord{}, Stats{}, fmt.Errorf("wait for upload slot: %w", err)
	}
	res, err := s.provider.Upload(ctx, storage.UploadInput{
		Reader:       reader,
		Filename:     req.Filename,
		Size:         req.Size,
		ContentType:  contentType,
		ResourceType: storage.ResourceTypeFor(contentType),
	})
	s.uploads.Release(1)
	if err != nil {
		return FileRecord{}, Stats{}, fmt.Errorf("upload %q: %w", req.Filename, err)
	}

	size := req.Size
	if size <= 0 {
		size = res.Bytes
	}
	thumbnail := res.ThumbnailURL
	if thumbnail == "" {
		thumbnail = res.URL
	}

	rec, stats := s.registry.Insert(FileRecord{
		ID:           res.PublicID,
		Name:         req.Filename,
		Type:         contentType,
		Size:         size,
		URL:          res.URL,
		Thumbnail:    thumbnail,
		Format:       res.Format,
		ResourceType: string(res.ResourceType),
	})

	s.log.Info("file uploaded",
		zap.String("id", rec.ID),
		zap.String("name", rec.Name),
		zap.String("type", rec.Type),
		zap.String("size", humanize.IBytes(uint64(rec.Size))),
		zap.String("provider", s.provider.Name()),
	)
	s.appendEvent(ctx, ActionUpload, rec)

	return rec, stats, nil
}

// Delete destroys the remote file and unregisters it. When the provider call
// fails the record stays registered.
func (s *Service) Delete(ctx context.Context, id string) (Stats, error) {
	rec, ok := s.registry.Get(id)
	if !ok {
		return Stats{}, ErrNotFound
	}

	if err := s.provider.Delete(ctx, rec.ID, storage.ResourceType(rec.ResourceType)); err != nil {
		return Stats{}, fmt.Errorf("delete %q: %w", id, err)
	}

	stats, err := s.registry.Remove(id)
	if err != nil {
		return Stats{}, err
	}

	s.log.Info("file deleted", zap.String("id", id), zap.String("provider", s.provider.Name()))
	s.appendEvent(ctx, ActionDelete, rec)

	return stats, nil
}

func (s *Service) appendEvent(ctx context.Context, action string, rec FileRecord) {
	err := s.journal.Append(ctx, Event{
		Action:   action,
		FileID:   rec.ID,
		Name:     rec.Name,
		Type:     rec.Type,
		Size:     rec.Size,
		Provider: s.provider.Name(),
	})
	if err != nil {
		s.log.Warn("journal append failed", zap.String("action", action), zap.String("id", rec.ID), zap.Error(err))
	}
}

// detectContentType keeps a client-supplied MIME type unless it is missing or
// the generic octet-stream, in which case the content is sniffed. The
// returned reader still yields the whole file.
func detectContentType(r io.Reader, declared string) (io.Reader, string, error) {
	if declared != "" && declared != "application/octet-stream" {
		return r, declared, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	head = head[:n]

	detected, _, _ := strings.Cut(mimetype.Detect(head).String(), ";")
	return io.MultiReader(bytes.NewReader(head), r), detected, nil
}
