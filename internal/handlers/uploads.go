package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell-blog/apiserver/internal/storage"
)

// UploadsHandler serves stored files read-only, whatever backend the
// asset store is running on.
type UploadsHandler struct {
	assets *storage.Store
}

func NewUploadsHandler(assets *storage.Store) *UploadsHandler {
	return &UploadsHandler{assets: assets}
}

// UploadsRouter registers the static file route on the given router.
func UploadsRouter(r chi.Router, assets *storage.Store) {
	handler := NewUploadsHandler(assets)
	r.Get("/{fileName}", handler.ServeFile)
}

// ServeFile streams one stored file to the client.
func (h *UploadsHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "fileName")

	reader, err := h.assets.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	defer reader.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(name)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	_, _ = io.Copy(w, reader)
}
