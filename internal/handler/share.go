package handler

import (
	"net/http"
	"strconv"

	"github.com/pkordes/stashport/internal/domain"
)

// GenerateShare handles POST /share/generate.
// The response is the PNG itself. The ETag is a hash of the image, so a client
// that already holds it gets a 304 without a body.
func (s *Server) GenerateShare(w http.ResponseWriter, r *http.Request) {
	var req domain.ShareRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	img, err := s.share.Generate(r.Context(), viewer(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", img.ETag)
	w.Header().Set("Cache-Control", "private, max-age=300")
	if match := r.Header.Get("If-None-Match"); match != "" && match == img.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", attachment(img.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(img.PNG)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.PNG)
}
