package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell-blog/apiserver/internal/services"
)

const (
	formFieldTitle     = "title"
	formFieldCategory  = "category"
	formFieldDesc      = "description"
	formFieldThumbnail = "thumbnail"
)

// PostHandler provides HTTP handlers for posts.
type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// PostRouter registers post routes on the given router.
func PostRouter(r chi.Router, postService *services.PostService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewPostHandler(postService)

	r.Get("/", handler.ListPosts)
	r.With(authMiddleware).Post("/", handler.CreatePost)
	r.Get("/categories/{category}", handler.ListByCategory)
	r.Get("/users/{userID}", handler.ListByCreator)
	r.Route("/{postID}", func(r chi.Router) {
		r.Get("/", handler.GetPost)
		r.With(authMiddleware).Patch("/", handler.UpdatePost)
		r.With(authMiddleware).Delete("/", handler.DeletePost)
	})
}

// CreatePost creates a post from a multipart form with a thumbnail file.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	input, err := parsePostForm(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	post, err := h.postService.Create(r.Context(), caller, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// ListPosts returns all posts, most recently updated first.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// GetPost returns a single post.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// ListByCategory returns posts in a category, newest first.
func (h *PostHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	posts, err := h.postService.ListByCategory(r.Context(), category)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// ListByCreator returns a user's posts, newest first.
func (h *PostHandler) ListByCreator(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := h.postService.ListByCreator(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// UpdatePost edits a post; the thumbnail is replaced only when a new
// file is supplied.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input, err := parsePostForm(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	post, err := h.postService.Update(r.Context(), caller, id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// DeletePost removes a post and its thumbnail.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	caller, err := CallerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.postService.Delete(r.Context(), caller, id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("post %d deleted", id),
	})
}

func parsePostID(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "postID"))
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid post id")
	}
	return id, nil
}

func parsePostForm(r *http.Request) (services.PostInput, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return services.PostInput{}, &services.ValidationError{Message: "invalid multipart form"}
	}

	thumbnail, err := formFile(r.MultipartForm, formFieldThumbnail)
	if err != nil {
		return services.PostInput{}, err
	}

	return services.PostInput{
		Title:       r.FormValue(formFieldTitle),
		Category:    r.FormValue(formFieldCategory),
		Description: r.FormValue(formFieldDesc),
		Thumbnail:   thumbnail,
	}, nil
}
