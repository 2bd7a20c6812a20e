package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkordes/stashport/internal/domain"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the status line is already out; nothing useful to do on failure
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps a service error to its status code. Unknown errors are
// logged and answered with a generic 500 so internals never reach clients.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *domain.ValidationError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &tooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, domain.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "you do not have access to this itinerary")
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "itinerary not found")
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// clientField drops the Go names of embedded structs from a decoder field
// path, so "ItineraryInput.days.dayNumber" becomes "days.dayNumber". Every
// JSON key of the API is lower camel case.
func clientField(path string) string {
	parts := strings.Split(path, ".")
	kept := parts[:0]
	for _, p := range parts {
		if r, _ := utf8.DecodeRuneInString(p); p != "" && !unicode.IsUpper(r) {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

// decodeJSON reads the request body into dst. Malformed JSON becomes a
// validation error and an oversized body keeps its *http.MaxBytesError.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	var (
		tooLarge  *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, io.EOF):
		return domain.NewValidationError("request body is required")
	case errors.As(err, &typeErr) && clientField(typeErr.Field) != "":
		return domain.NewValidationError(clientField(typeErr.Field) + " has the wrong type")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.NewValidationError("request body is not valid JSON")
	default:
		return domain.NewValidationError("invalid request body")
	}
}
