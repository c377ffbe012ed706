package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwell-blog/apiserver/internal/auth"
	"github.com/inkwell-blog/apiserver/internal/storage"
	"github.com/inkwell-blog/apiserver/types"
)

const (
	// MaxThumbnailBytes bounds uploaded post thumbnails.
	MaxThumbnailBytes = 2_000_000

	// MinDescriptionLen is the minimum post body length accepted on
	// edit. The web editor wraps even an empty body in markup, so
	// anything shorter carries no content.
	MinDescriptionLen = 12
)

// FileUpload carries an uploaded file through the workflow.
type FileUpload struct {
	Name string
	Data []byte
}

// PostInput is the mutable part of a post supplied by the client.
type PostInput struct {
	Title       string
	Category    string
	Description string
	Thumbnail   *FileUpload
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	List(ctx context.Context) ([]types.Post, error)
	ListByCategory(ctx context.Context, category string) ([]types.Post, error)
	ListByCreator(ctx context.Context, creatorID int) ([]types.Post, error)
	GetByID(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, post types.Post) (types.Post, error)
	Delete(ctx context.Context, id int) error
}

// UserCounter maintains the denormalized authored-post count.
type UserCounter interface {
	AdjustPostCount(ctx context.Context, id, delta int) error
}

// AssetStore persists uploaded files. *storage.Store satisfies it.
type AssetStore interface {
	Save(ctx context.Context, data []byte, originalName string, maxSize int64) (string, error)
	Remove(ctx context.Context, name string) error
}

// PostService implements the post workflows: ownership-scoped
// mutation with thumbnail lifecycle tied to the record lifecycle.
type PostService struct {
	repo      PostRepository
	users     UserCounter
	assets    AssetStore
	publisher EventPublisher
	logger    *slog.Logger
}

func NewPostService(repo PostRepository, users UserCounter, assets AssetStore, publisher EventPublisher, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		repo:      repo,
		users:     users,
		assets:    assets,
		publisher: publisher,
		logger:    logger,
	}
}

// Create stores the thumbnail, creates the post with the caller as its
// immutable creator, and bumps the caller's post count. The repository
// is never written when the thumbnail cannot be stored.
func (s *PostService) Create(ctx context.Context, caller auth.Identity, input PostInput) (types.Post, error) {
	title := strings.TrimSpace(input.Title)
	category := strings.TrimSpace(input.Category)
	description := strings.TrimSpace(input.Description)
	if title == "" || category == "" || description == "" || input.Thumbnail == nil || len(input.Thumbnail.Data) == 0 {
		return types.Post{}, validationError("fill in all fields and choose a thumbnail")
	}
	if !types.ValidCategory(category) {
		return types.Post{}, validationError("unknown category")
	}

	thumbnail, err := s.assets.Save(ctx, input.Thumbnail.Data, input.Thumbnail.Name, MaxThumbnailBytes)
	if err != nil {
		return types.Post{}, err
	}

	post, err := s.repo.Create(ctx, types.Post{
		Title:       title,
		Category:    category,
		Description: description,
		Thumbnail:   thumbnail,
		CreatorID:   caller.ID,
	})
	if err != nil {
		// The record never existed, so the stored file is orphaned.
		if rmErr := s.assets.Remove(ctx, thumbnail); rmErr != nil {
			s.logger.Warn("remove orphaned thumbnail", "file", thumbnail, "error", rmErr)
		}
		return types.Post{}, err
	}

	// The count is a best-effort denormalization, not part of the
	// post write.
	if err := s.users.AdjustPostCount(ctx, caller.ID, 1); err != nil {
		s.logger.Warn("increment post count", "user_id", caller.ID, "error", err)
	}

	publishPostEvent(ctx, s.publisher, s.logger, ChannelPostCreated, PostEvent{
		PostID:     post.ID,
		CreatorID:  post.CreatorID,
		Category:   post.Category,
		OccurredAt: time.Now(),
	})

	return post, nil
}

// Update edits a post's text fields and optionally replaces its
// thumbnail. Only the creator may update; anyone else fails with
// ErrForbidden before anything is touched.
func (s *PostService) Update(ctx context.Context, caller auth.Identity, id int, input PostInput) (types.Post, error) {
	title := strings.TrimSpace(input.Title)
	category := strings.TrimSpace(input.Category)
	description := strings.TrimSpace(input.Description)
	if title == "" || category == "" || len(description) < MinDescriptionLen {
		return types.Post{}, validationError("fill in all fields")
	}
	if !types.ValidCategory(category) {
		return types.Post{}, validationError("unknown category")
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Post{}, err
	}
	if post.CreatorID != caller.ID {
		return types.Post{}, ErrForbidden
	}

	post.Title = title
	post.Category = category
	post.Description = description

	if input.Thumbnail != nil && len(input.Thumbnail.Data) > 0 {
		if int64(len(input.Thumbnail.Data)) > MaxThumbnailBytes {
			return types.Post{}, storage.ErrFileTooLarge
		}
		// Release the old file before storing the replacement. A
		// failed removal leaves an orphan but does not block the edit.
		if err := s.assets.Remove(ctx, post.Thumbnail); err != nil {
			s.logger.Warn("remove old thumbnail", "file", post.Thumbnail, "error", err)
		}
		thumbnail, err := s.assets.Save(ctx, input.Thumbnail.Data, input.Thumbnail.Name, MaxThumbnailBytes)
		if err != nil {
			return types.Post{}, err
		}
		post.Thumbnail = thumbnail
	}

	return s.repo.Update(ctx, post)
}

// Delete removes a post, its thumbnail file, and decrements the
// creator's post count. Only the creator may delete. A post without a
// thumbnail on record is still deletable.
func (s *PostService) Delete(ctx context.Context, caller auth.Identity, id int) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.CreatorID != caller.ID {
		return ErrForbidden
	}

	// A missing file is a no-op; real storage failures do not keep the
	// record alive.
	if err := s.assets.Remove(ctx, post.Thumbnail); err != nil {
		s.logger.Warn("remove thumbnail", "file", post.Thumbnail, "error", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.users.AdjustPostCount(ctx, post.CreatorID, -1); err != nil {
		s.logger.Warn("decrement post count", "user_id", post.CreatorID, "error", err)
	}

	publishPostEvent(ctx, s.publisher, s.logger, ChannelPostDeleted, PostEvent{
		PostID:     post.ID,
		CreatorID:  post.CreatorID,
		Category:   post.Category,
		OccurredAt: time.Now(),
	})

	return nil
}

// Get returns one post with its creator's public fields.
func (s *PostService) Get(ctx context.Context, id int) (types.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all posts, most recently updated first.
func (s *PostService) List(ctx context.Context) ([]types.Post, error) {
	return s.repo.List(ctx)
}

// ListByCategory returns posts in a category, newest first.
func (s *PostService) ListByCategory(ctx context.Context, category string) ([]types.Post, error) {
	if !types.ValidCategory(category) {
		return nil, validationError("unknown category")
	}
	return s.repo.ListByCategory(ctx, category)
}

// ListByCreator returns a user's posts, newest first.
func (s *PostService) ListByCreator(ctx context.Context, creatorID int) ([]types.Post, error) {
	return s.repo.ListByCreator(ctx, creatorID)
}
