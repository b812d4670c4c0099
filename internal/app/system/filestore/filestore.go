// Package filestore keeps uploaded evidence files on local disk or in a
// Google Cloud Storage bucket behind one interface.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxUploadSize is the largest accepted upload in bytes.
const MaxUploadSize int64 = 50 << 20

var (
	// ErrNotExist is returned when a stored file is missing.
	ErrNotExist = errors.New("file does not exist")
	// ErrInvalidName is returned for names that could escape the store.
	ErrInvalidName = errors.New("invalid filename")
)

// allowedTypes lists the MIME types accepted for upload.
var allowedTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"image/jpeg":                   true,
	"image/png":                    true,
	"image/gif":                    true,
	"text/plain":                   true,
	"application/zip":              true,
	"application/x-rar-compressed": true,
}

// AllowedType reports whether contentType may be uploaded. Parameters such
// as "; charset=utf-8" are ignored.
func AllowedType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return allowedTypes[ct]
}

// PutOptions carries object metadata for Put.
type PutOptions struct {
	ContentType string
}

// Info describes a stored file.
type Info struct {
	Name        string
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Store is a flat namespace of files addressed by name.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, opts *PutOptions) error
	Open(ctx context.Context, name string) (io.ReadCloser, Info, error)
	Delete(ctx context.Context, name string) error
}

// ValidateName rejects empty names and names containing "..", "/" or "\".
func ValidateName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

// NewName returns a unique stored name that keeps a sanitized form of the
// original file name as a suffix.
func NewName(original string) string {
	return fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitize(original))
}

// sanitize replaces characters that are unsafe in stored names.
func sanitize(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if filename == "." || filename == "/" {
		filename = ""
	}

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	out := strings.ReplaceAll(string(result), "..", "_")
	if out == "" {
		return "file"
	}
	if len(out) > 100 {
		ext := filepath.Ext(out)
		if len(ext) > 0 && len(ext) < 10 {
			out = out[:100-len(ext)] + ext
		} else {
			out = out[:100]
		}
	}
	return out
}

func isAllowedChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
