// Package media keeps the index of uploaded files and serves it over HTTP.
package media

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// timestampLayout is ISO-8601 with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrNotFound is returned when no file with the given id is registered.
var ErrNotFound = errors.New("file not found")

// FileRecord is the metadata of one uploaded file.
type FileRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
	Thumbnail    string `json:"thumbnail"`
	UploadedAt   string `json:"uploadedAt"`
	Format       string `json:"format"`
	ResourceType string `json:"resourceType"`
}

// Stats are the running upload counters. Total always equals
// Images + Videos + Others.
type Stats struct {
	Total  int `json:"total"`
	Images int `json:"images"`
	Videos int `json:"videos"`
	Others int `json:"others"`
}

// Bucket is the statistics category a file is counted in.
type Bucket int

// Statistics buckets.
const (
	BucketOthers Bucket = iota
	BucketImages
	BucketVideos
)

// Classify picks the statistics bucket for a MIME type.
func Classify(mimeType string) Bucket {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return BucketImages
	case strings.HasPrefix(mimeType, "video/"):
		return BucketVideos
	default:
		return BucketOthers
	}
}

func (s *Stats) add(b Bucket, delta int) {
	s.Total += delta
	switch b {
	case BucketImages:
		s.Images += delta
	case BucketVideos:
		s.Videos += delta
	default:
		s.Others += delta
	}
}

// Registry is the in-memory index of uploaded files, newest first. It lives
// for the lifetime of the process and is never persisted.
type Registry struct {
	mu    sync.RWMutex
	files []FileRecord
	stats Stats
	now   func() time.Time
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{now: time.Now}
}

// List returns a copy of the registered files and the current counters.
func (r *Registry) List() ([]FileRecord, Stats) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	files := make([]FileRecord, len(r.files))
	copy(files, r.files)
	return files, r.stats
}

// Stats returns the current counters.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// Get looks up a file by id.
func (r *Registry) Get(id string) (FileRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.files[i], true
	}
	return FileRecord{}, false
}

// Insert stamps the upload time on rec, puts it at the front of the list and
// counts it. A record already registered under the same id is replaced.
func (r *Registry) Insert(rec FileRecord) (FileRecord, Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(rec.ID); i >= 0 {
		r.removeAt(i)
	}

	rec.UploadedAt = r.now().UTC().Format(timestampLayout)
	r.files = append([]FileRecord{rec}, r.files...)
	r.stats.add(Classify(rec.Type), 1)
	return rec, r.stats
}

// Remove deletes the file with the given id and uncounts it.
func (r *Registry) Remove(id string) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return r.stats, ErrNotFound
	}
	r.removeAt(i)
	return r.stats, nil
}

func (r *Registry) removeAt(i int) {
	r.stats.add(Classify(r.files[i].Type), -1)
	r.files = append(r.files[:i], r.files[i+1:]...)
}

func (r *Registry) indexOf(id string) int {
	for i := range r.files {
		if r.files[i].ID == id {
			return i
		}
	}
	return -1
}
