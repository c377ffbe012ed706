package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/inkwell-blog/apiserver/internal/auth"
	"github.com/inkwell-blog/apiserver/internal/services"
	"github.com/inkwell-blog/apiserver/internal/storage"
	"github.com/inkwell-blog/apiserver/internal/store"
)

type contextKey string

const contextCallerKey contextKey = "caller"

// maxMultipartMemory bounds in-memory multipart parsing; larger parts
// spill to disk.
const maxMultipartMemory = 8 << 20

// maxUploadBytes is the handler-level read cap for any single uploaded
// file. The per-kind bounds (thumbnail, avatar) are enforced by the
// orchestrators.
const maxUploadBytes = 8 << 20

// CallerFromContext returns the authenticated caller stored by RequireAuth.
func CallerFromContext(ctx context.Context) (auth.Identity, error) {
	caller, ok := ctx.Value(contextCallerKey).(auth.Identity)
	if !ok || caller.ID < 1 {
		return auth.Identity{}, errors.New("missing caller")
	}
	return caller, nil
}

// MessageResponse is the uniform confirmation/error payload.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// writeServiceError maps orchestrator failures to status codes. Unknown
// errors become an opaque 500 so internals never leak to clients.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusUnprocessableEntity, validationErr.Message)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnprocessableEntity, "invalid credentials")
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already exists")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
	default:
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}

// formFile extracts one uploaded file from a parsed multipart form.
// It returns nil when the field is absent.
func formFile(form *multipart.Form, field string) (*services.FileUpload, error) {
	if form == nil {
		return nil, nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	data, err := readFileLimited(file, maxUploadBytes)
	_ = file.Close()
	if err != nil {
		return nil, err
	}

	return &services.FileUpload{
		Name: fileHeader.Filename,
		Data: data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, storage.ErrFileTooLarge
	}
	return data, nil
}
