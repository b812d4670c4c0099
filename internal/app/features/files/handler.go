// Package files serves evidence uploads, downloads and deletes.
package files

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/filestore"
	"github.com/dalemusser/liderplan/internal/app/system/httpx"
	"github.com/dalemusser/liderplan/internal/app/system/metrics"
	"github.com/dalemusser/liderplan/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// formOverhead is the room left for multipart boundaries and headers on
// top of the file itself.
const formOverhead = 1 << 20

type Handler struct {
	Store filestore.Store
	Log   *zap.Logger
	Now   func() time.Time

	// BasePath is where Routes is mounted; upload responses link to
	// BasePath + "/download/<name>".
	BasePath string
}

func NewHandler(store filestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Log: logger, Now: time.Now, BasePath: "/files"}
}

type uploadResponse struct {
	Message  string    `json:"message"`
	FileName string    `json:"fileName"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mimetype"`
	Date     time.Time `json:"date"`
}

// DownloadURL is the path a stored file is served from.
func (h *Handler) DownloadURL(name string) string {
	return h.BasePath + "/download/" + url.PathEscape(name)
}

// Upload handles POST /files/upload with a multipart "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, filestore.MaxUploadSize+formOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.fail(w, "upload", apperr.File(fmt.Sprintf("File exceeds the %d MB limit", filestore.MaxUploadSize>>20)))
			return
		}
		h.fail(w, "upload", apperr.File("Invalid form data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, "upload", apperr.File("No file provided"))
		return
	}
	defer file.Close()

	if header.Size > filestore.MaxUploadSize {
		h.fail(w, "upload", apperr.File(fmt.Sprintf("File exceeds the %d MB limit", filestore.MaxUploadSize>>20)))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !filestore.AllowedType(contentType) {
		h.fail(w, "upload", apperr.File("File type not allowed: "+contentType))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "files.upload")
	defer cancel()

	name := filestore.NewName(header.Filename)
	if err := h.Store.Put(ctx, name, file, &filestore.PutOptions{ContentType: contentType}); err != nil {
		h.fail(w, "upload", apperr.Storage("Failed to upload file", err))
		return
	}

	metrics.Files.WithLabelValues("upload", "success").Inc()
	metrics.FileBytes.Observe(float64(header.Size))
	h.Log.Info("file uploaded",
		zap.String("file", name),
		zap.Int64("size", header.Size),
		zap.String("content_type", contentType))

	httpx.WriteJSON(w, http.StatusOK, uploadResponse{
		Message:  "File uploaded successfully",
		FileName: name,
		URL:      h.DownloadURL(name),
		Size:     header.Size,
		MimeType: contentType,
		Date:     h.Now().UTC(),
	})
}

// Download handles GET /files/download/{filename}.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name, err := fileParam(r)
	if err != nil {
		h.fail(w, "download", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "files.download")
	defer cancel()

	rc, info, err := h.Store.Open(ctx, name)
	if err != nil {
		h.fail(w, "download", storeErr("Failed to download file", err))
		return
	}
	defer rc.Close()

	ct := info.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(name)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, rc)
	if err != nil {
		// Headers are already out; all we can do is record it.
		h.Log.Warn("file download interrupted", zap.String("file", name), zap.Int64("written", n), zap.Error(err))
		metrics.Files.WithLabelValues("download", "error").Inc()
		return
	}
	metrics.Files.WithLabelValues("download", "success").Inc()
}

// Delete handles DELETE /files/delete/{filename}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name, err := fileParam(r)
	if err != nil {
		h.fail(w, "delete", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "files.delete")
	defer cancel()

	if err := h.Store.Delete(ctx, name); err != nil {
		h.fail(w, "delete", storeErr("Failed to delete file", err))
		return
	}
	metrics.Files.WithLabelValues("delete", "success").Inc()
	h.Log.Info("file deleted", zap.String("file", name))
	httpx.WriteMessage(w, http.StatusOK, "File deleted successfully")
}

// fileParam returns the unescaped {filename} segment, rejecting names
// that could leave the store.
func fileParam(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil || filestore.ValidateName(name) != nil {
		return "", apperr.File("Invalid filename")
	}
	return name, nil
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	metrics.Files.WithLabelValues(op, "error").Inc()
	httpx.WriteError(w, h.Log, err)
}

func storeErr(msg string, err error) error {
	switch {
	case errors.Is(err, filestore.ErrNotExist):
		return apperr.FileMissing("File not found")
	case errors.Is(err, filestore.ErrInvalidName):
		return apperr.File("Invalid filename")
	}
	return apperr.Storage(msg, err)
}
