package services

import (
	"context"
	"errors"
	"testing"

	"github.com/inkwell-blog/apiserver/internal/auth"
	"github.com/inkwell-blog/apiserver/internal/storage"
	"github.com/inkwell-blog/apiserver/internal/store"
	"github.com/inkwell-blog/apiserver/types"
)

func newPostFixture(t *testing.T) (*PostService, *fakePostRepo, *fakeUserRepo, *fakeAssets, *fakePublisher, auth.Identity) {
	t.Helper()

	users := newFakeUserRepo()
	user, err := users.Create(context.Background(), types.User{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	posts := newFakePostRepo()
	assets := newFakeAssets()
	publisher := &fakePublisher{}
	service := NewPostService(posts, users, assets, publisher, nil)

	return service, posts, users, assets, publisher, auth.Identity{ID: user.ID, Name: user.Name}
}

func validInput() PostInput {
	return PostInput{
		Title:       "On Soil Rotation",
		Category:    "Agriculture",
		Description: "A long enough description about soil.",
		Thumbnail:   &FileUpload{Name: "soil.png", Data: []byte("png-bytes")},
	}
}

func TestCreatePost(t *testing.T) {
	service, posts, users, assets, publisher, caller := newPostFixture(t)

	post, err := service.Create(context.Background(), caller, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.CreatorID != caller.ID {
		t.Fatalf("expected creator %d, got %d", caller.ID, post.CreatorID)
	}
	if _, ok := assets.files[post.Thumbnail]; !ok {
		t.Fatalf("expected thumbnail %q in asset store", post.Thumbnail)
	}
	if len(posts.posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts.posts))
	}

	user, _ := users.GetByID(context.Background(), caller.ID)
	if user.Posts != 1 {
		t.Fatalf("expected post count 1, got %d", user.Posts)
	}
	if len(publisher.channels) != 1 || publisher.channels[0] != ChannelPostCreated {
		t.Fatalf("expected one %s event, got %v", ChannelPostCreated, publisher.channels)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected one event payload, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.PostID != post.ID || event.CreatorID != caller.ID || event.Category != post.Category {
		t.Fatalf("unexpected event payload %+v", event)
	}
	if event.OccurredAt.IsZero() {
		t.Fatalf("expected event timestamp to be set")
	}
}

func TestCreatePostMissingFields(t *testing.T) {
	service, posts, _, assets, _, caller := newPostFixture(t)

	for name, mutate := range map[string]func(*PostInput){
		"no title":       func(in *PostInput) { in.Title = "" },
		"no category":    func(in *PostInput) { in.Category = "" },
		"no description": func(in *PostInput) { in.Description = "" },
		"no thumbnail":   func(in *PostInput) { in.Thumbnail = nil },
	} {
		input := validInput()
		mutate(&input)
		_, err := service.Create(context.Background(), caller, input)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
	if len(posts.posts) != 0 || len(assets.files) != 0 {
		t.Fatalf("expected no side effects, got %d posts and %d files", len(posts.posts), len(assets.files))
	}
}

func TestCreatePostUnknownCategory(t *testing.T) {
	service, _, _, _, _, caller := newPostFixture(t)

	input := validInput()
	input.Category = "Gossip"
	_, err := service.Create(context.Background(), caller, input)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreatePostOversizedThumbnail(t *testing.T) {
	service, posts, users, assets, _, caller := newPostFixture(t)

	input := validInput()
	input.Thumbnail.Data = make([]byte, MaxThumbnailBytes+1)
	_, err := service.Create(context.Background(), caller, input)
	if !errors.Is(err, storage.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if len(posts.posts) != 0 || len(assets.files) != 0 {
		t.Fatalf("expected no side effects, got %d posts and %d files", len(posts.posts), len(assets.files))
	}
	user, _ := users.GetByID(context.Background(), caller.ID)
	if user.Posts != 0 {
		t.Fatalf("expected post count 0, got %d", user.Posts)
	}
}

func TestUpdatePostNonCreator(t *testing.T) {
	service, posts, _, assets, _, caller := newPostFixture(t)

	post, err := service.Create(context.Background(), caller, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := auth.Identity{ID: caller.ID + 100, Name: "Eve"}
	input := validInput()
	input.Title = "Hijacked"
	_, err = service.Update(context.Background(), stranger, post.ID, input)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	stored, _ := posts.GetByID(context.Background(), post.ID)
	if stored.Title != post.Title {
		t.Fatalf("post was mutated by a non-creator: %q", stored.Title)
	}
	if _, ok := assets.files[post.Thumbnail]; !ok {
		t.Fatalf("thumbnail was touched by a non-creator update")
	}
}

func TestUpdatePostTextOnly(t *testing.T) {
	service, _, _, _, _, caller := newPostFixture(t)

	post, err := service.Create(context.Background(), caller, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	input := validInput()
	input.Title = "On Crop Rotation"
	input.Thumbnail = nil
	updated, err := service.Update(context.Background(), caller, post.ID, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "On Crop Rotation" {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
	if updated.Thumbnail != post.Thumbnail {
		t.Fatalf("thumbnail changed on a text-only edit")
	}
}

func TestUpdatePostReplacesThumbnail(t *testing.T) {
	service, _, _, assets, _, caller := newPostFixture(t)

	post, err := service.Create(context.Background(), caller, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	input := validInput()
	input.Thumbnail = &FileUpload{Name: "new.png", Data: []byte("new-bytes")}
	updated, err := service.Update(context.Background(), caller, post.ID, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Thumbnail == post.Thumbnail {
		t.Fatalf("expected a new thumbnail name")
	}
	if _, ok := assets.files[post.Thumbnail]; ok {
		t.Fatalf("old thumbnail %q was not released", post.Thumbnail)
	}
	if _, ok := assets.files[updated.Thumbnail]; !ok {
		t.Fatalf("new thumbnail %q missing from asset store", updated.Thumbnail)
	}
}

func TestUpdatePostShortDescription(t *testing.T) {
	service, _, _, _, _, caller := newPostFixture(t)

	post, err := service.Create(context.Background(), caller, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	input := validInput()
	input.Description = "too short"
	_, err = service.Update(context.Background(), caller, post.ID, input)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdatePostOversizedThumbnailKeepsOld(t *testing.T) {
	service, _, _, assets, _, caller := newPostFixture(t)

	post, err := service.Create(context.Background(), caller, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	input := validInput()
	input.Thumbnail = &FileUpload{Name: "huge.png", Data: make([]byte, MaxThumbnailBytes+1)}
	_, err = service.Update(context.Background(), caller, post.ID, input)
	if !errors.Is(err, storage.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if _, ok := assets.files[post.Thumbnail]; !ok {
		t.Fatalf("old thumbnail was removed before the size check")
	}
}

func TestDeletePost(t *testing.T) {
	service, posts, users, assets, publisher, caller := newPostFixture(t)

	post, err := service.Create(context.Background(), caller, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := service.Delete(context.Background(), caller, post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := posts.GetByID(context.Background(), post.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected post to be gone, got %v", err)
	}
	if _, ok := assets.files[post.Thumbnail]; ok {
		t.Fatalf("thumbnail %q still in asset store", post.Thumbnail)
	}

	user, _ := users.GetByID(context.Background(), caller.ID)
	if user.Posts != 0 {
		t.Fatalf("expected post count 0, got %d", user.Posts)
	}
	if len(publisher.channels) != 2 || publisher.channels[1] != ChannelPostDeleted {
		t.Fatalf("expected a %s event, got %v", ChannelPostDeleted, publisher.channels)
	}
}

func TestDeletePostNonCreator(t *testing.T) {
	service, posts, _, assets, _, caller := newPostFixture(t)

	post, err := service.Create(context.Background(), caller, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := auth.Identity{ID: caller.ID + 100, Name: "Eve"}
	if err := service.Delete(context.Background(), stranger, post.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := posts.GetByID(context.Background(), post.ID); err != nil {
		t.Fatalf("post was deleted by a non-creator")
	}
	if _, ok := assets.files[post.Thumbnail]; !ok {
		t.Fatalf("thumbnail was deleted by a non-creator")
	}
}

// A post whose thumbnail reference is empty must still be deletable;
// the missing file is simply skipped.
func TestDeletePostWithoutThumbnail(t *testing.T) {
	service, posts, users, _, _, caller := newPostFixture(t)

	post, err := posts.Create(context.Background(), types.Post{
		Title:       "Orphan",
		Category:    "Uncategorized",
		Description: "a post that lost its thumbnail",
		CreatorID:   caller.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = users.AdjustPostCount(context.Background(), caller.ID, 1)

	if err := service.Delete(context.Background(), caller, post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := posts.GetByID(context.Background(), post.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected post to be gone, got %v", err)
	}
}

func TestDeleteMissingPost(t *testing.T) {
	service, _, _, _, _, caller := newPostFixture(t)

	if err := service.Delete(context.Background(), caller, 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByCategoryUnknown(t *testing.T) {
	service, _, _, _, _, _ := newPostFixture(t)

	_, err := service.ListByCategory(context.Background(), "Gossip")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
