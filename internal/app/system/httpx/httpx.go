// Package httpx holds the JSON request/response helpers used by every API
// handler.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaxJSONBody caps decoded JSON request bodies.
const MaxJSONBody = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"message": msg}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}

// WriteError maps err to its status code and writes a JSON error body.
// Unclassified and storage errors are logged and reported generically.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		if log != nil {
			log.Error("unhandled error", zap.Error(err))
		}
		WriteJSON(w, http.StatusInternalServerError, errorBody{
			Message: "Internal server error",
			Error:   apperr.KindInternal.String(),
		})
		return
	}

	if ae.Kind == apperr.KindStorage || ae.Kind == apperr.KindInternal {
		if log != nil {
			log.Error(ae.Message, zap.Error(ae.Err))
		}
	}

	WriteJSON(w, ae.Kind.Status(), errorBody{
		Message: ae.Message,
		Error:   ae.Kind.String(),
		Fields:  ae.Fields,
	})
}

// DecodeJSON decodes the request body into dst. Unknown fields are allowed
// so older clients keep working. Malformed bodies become ValidationErrors.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Validation("Request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required")
		}
		return apperr.Validation(fmt.Sprintf("Malformed JSON body: %v", err))
	}
	return nil
}

// PathID parses the chi URL parameter key as an ObjectID. A malformed id
// is reported as not found, the same as an id that matches nothing.
func PathID(r *http.Request, key, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, key))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(what + " not found")
	}
	return id, nil
}
