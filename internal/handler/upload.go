package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkordes/stashport/internal/domain"
)

// uploadField is the multipart field that carries the cover photo.
const uploadField = "file"

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadCover handles POST /upload/cover, a multipart form with a single
// "file" part. The part is streamed to the cover service without buffering
// the whole form.
func (s *Server) UploadCover(w http.ResponseWriter, r *http.Request) {
	if viewer(r) == nil {
		s.writeError(w, r, domain.ErrUnauthorized)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.limits.MaxUploadBytes+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "expected a multipart/form-data body")
		return
	}
	part, err := filePart(mr)
	if err != nil {
		s.uploadError(w, r, err)
		return
	}
	defer part.Close()

	url, err := s.covers.Upload(r.Context(), viewer(r), part)
	if err != nil {
		s.uploadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{URL: url})
}

// filePart advances mr to the file field, skipping any other fields.
func filePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, domain.NewValidationError("file is required")
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == uploadField {
			return part, nil
		}
		_ = part.Close()
	}
}

// uploadError reports an oversized form as a validation problem rather than
// the generic 413 used for JSON bodies.
func (s *Server) uploadError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeMessage(w, http.StatusBadRequest,
			fmt.Sprintf("file too large (max %d MB)", s.limits.MaxUploadBytes>>20))
		return
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) && !errors.Is(err, domain.ErrUnauthorized) && isMultipartError(err) {
		writeMessage(w, http.StatusBadRequest, "malformed multipart body")
		return
	}
	s.writeError(w, r, err)
}

// isMultipartError reports whether err came from parsing the form framing.
func isMultipartError(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, multipart.ErrMessageTooLarge)
}
