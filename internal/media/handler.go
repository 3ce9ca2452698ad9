package media

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mediabox/service/internal/response"
	"github.com/mediabox/service/internal/storage"
)

// MaxUploadSize is the largest file accepted by Upload.
const MaxUploadSize = 100 << 20

// multipartSlack leaves room for boundaries and part headers around the file.
const multipartSlack = 1 << 20

// Handler holds HTTP handlers for the file endpoints.
type Handler struct {
	svc                  *Service
	cloudinaryConfigured bool
	log                  *zap.Logger
}

// NewHandler creates a new media Handler.
func NewHandler(svc *Service, cloudinaryConfigured bool, log *zap.Logger) *Handler {
	return &Handler{svc: svc, cloudinaryConfigured: cloudinaryConfigured, log: log}
}

// Register mounts the file endpoints on r. protect wraps the mutating routes.
func (h *Handler) Register(r chi.Router, protect ...func(http.Handler) http.Handler) {
	r.Get("/health", h.Health)
	r.Get("/files", h.List)
	r.Get("/stats", h.Stats)
	r.With(protect...).Post("/upload", h.Upload)
	r.With(protect...).Delete("/files/*", h.Delete)
}

type listResponse struct {
	response.Envelope
	Files []FileRecord `json:"files"`
	Stats Stats        `json:"stats"`
}

type uploadResponse struct {
	response.Envelope
	File  FileRecord `json:"file"`
	Stats Stats      `json:"stats"`
}

type statsResponse struct {
	response.Envelope
	Stats Stats `json:"stats"`
}

type healthResponse struct {
	response.Envelope
	CloudinaryConfigured bool `json:"cloudinaryConfigured"`
}

// List godoc
//
//	@Summary		List files
//	@Description	Returns every file uploaded since the server started, newest first, with the counters.
//	@Tags			files
//	@Produce		json
//	@Success		200	{object}	listResponse
//	@Router			/files [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	files, stats := h.svc.List()
	response.OK(w, listResponse{Envelope: response.Success(""), Files: files, Stats: stats})
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Forwards the file to the storage provider and registers it. Images and videos are routed to the matching provider resource type, everything else is stored raw.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"File to upload (max 100 MiB)"
//	@Success		200		{object}	uploadResponse
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+multipartSlack)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(w, "File too large")
			return
		}
		response.BadRequest(w, "No file uploaded")
		return
	}
	defer file.Close()
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	if header.Size > MaxUploadSize {
		response.BadRequest(w, "File too large")
		return
	}

	rec, stats, err := h.svc.Upload(r.Context(), UploadRequest{
		Reader:      file,
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		h.writeError(w, r, "Upload failed", err)
		return
	}

	response.OK(w, uploadResponse{
		Envelope: response.Success("File uploaded successfully"),
		File:     rec,
		Stats:    stats,
	})
}

// Delete godoc
//
//	@Summary		Delete a file
//	@Description	Destroys the file at the storage provider and removes it from the index. Provider IDs may contain slashes.
//	@Tags			files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Provider-assigned file ID"
//	@Success		200	{object}	statsResponse
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when the request escaped a reserved character
	// (e.g. %2F), otherwise on the already-decoded Path.
	id := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
	}
	if id == "" {
		response.NotFound(w, "File not found")
		return
	}

	stats, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "Delete failed", err)
		return
	}

	response.OK(w, statsResponse{Envelope: response.Success("File deleted successfully"), Stats: stats})
}

// Stats godoc
//
//	@Summary		Upload counters
//	@Tags			files
//	@Produce		json
//	@Success		200	{object}	statsResponse
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	response.OK(w, statsResponse{Envelope: response.Success(""), Stats: h.svc.Stats()})
}

// Health godoc
//
//	@Summary		Health check
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	healthResponse
//	@Router			/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, healthResponse{
		Envelope:             response.Success("Server is running"),
		CloudinaryConfigured: h.cloudinaryConfigured,
	})
}

// writeError maps service errors onto the error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, failure string, err error) {
	var perr *storage.Error
	switch {
	case errors.Is(err, ErrNoFile):
		response.BadRequest(w, "No file uploaded")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "File not found")
	case errors.As(err, &perr):
		h.log.Warn("storage provider call failed", zap.String("path", r.URL.Path), zap.Error(err))
		response.ProviderError(w, failure, perr.Message)
	default:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		response.InternalError(w)
	}
}
