package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favtunes/internal/shared"
)

// errorBody is the body of every failed response.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Detail: msg})
}

var (
	badRequest = []error{
		shared.ErrInvalidInput,
		shared.ErrDuplicateUser,
		shared.ErrDuplicateFavorite,
		shared.ErrAuthFailed,
		shared.ErrCatalog,
	}
	notFound = []error{
		shared.ErrUserNotFound,
		shared.ErrNoFavorites,
		shared.ErrFavoriteNotFound,
		shared.ErrArtistNotFound,
		shared.ErrSongNotFound,
	}
	// upstream failures carry catalog URLs and token endpoint bodies
	opaque = []error{
		shared.ErrAuthFailed,
		shared.ErrCatalog,
	}
)

// StatusFor maps a directory or catalog error to its HTTP status.
func StatusFor(err error) int {
	for _, target := range notFound {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// Detail returns the client-facing message for err.
//
// Catalog and token failures are reduced to their sentinel text.
func Detail(err error) string {
	for _, target := range opaque {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

// writeFailure writes err with its mapped status. Internal and upstream failures get a reduced detail and are logged.
func writeFailure(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	status := StatusFor(err)
	requestID := RequestIDFromContext(r.Context())
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "request_id", requestID, "error", err)
		writeError(w, status, "internal server error")
		return
	}

	detail := Detail(err)
	if detail != err.Error() {
		logger.Warn("upstream failure", "path", r.URL.Path, "request_id", requestID, "error", err)
	}
	writeError(w, status, detail)
}
