package services

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-blog/apiserver/internal/storage"
	"github.com/inkwell-blog/apiserver/internal/store"
	"github.com/inkwell-blog/apiserver/types"
)

type fakeUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]types.User), nextID: 1}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) UpdateAvatar(ctx context.Context, id int, avatar string) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.Avatar = avatar
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return user, nil
}

func (r *fakeUserRepo) AdjustPostCount(ctx context.Context, id, delta int) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Posts += delta
	if user.Posts < 0 {
		user.Posts = 0
	}
	r.users[id] = user
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]types.User, error) {
	users := make([]types.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, nil
}

type fakePostRepo struct {
	posts  map[int]types.Post
	nextID int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int]types.Post), nextID: 1}
}

func (r *fakePostRepo) List(ctx context.Context) ([]types.Post, error) {
	posts := make([]types.Post, 0, len(r.posts))
	for _, post := range r.posts {
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *fakePostRepo) ListByCategory(ctx context.Context, category string) ([]types.Post, error) {
	posts := make([]types.Post, 0)
	for _, post := range r.posts {
		if post.Category == category {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) ListByCreator(ctx context.Context, creatorID int) ([]types.Post, error) {
	posts := make([]types.Post, 0)
	for _, post := range r.posts {
		if post.CreatorID == creatorID {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int) (types.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return post, nil
}

func (r *fakePostRepo) Create(ctx context.Context, post types.Post) (types.Post, error) {
	post.ID = r.nextID
	r.nextID++
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakePostRepo) Update(ctx context.Context, post types.Post) (types.Post, error) {
	if _, ok := r.posts[post.ID]; !ok {
		return types.Post{}, store.ErrNotFound
	}
	post.UpdatedAt = time.Now()
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

type fakeAssets struct {
	files   map[string][]byte
	counter int
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{files: make(map[string][]byte)}
}

func (a *fakeAssets) Save(ctx context.Context, data []byte, originalName string, maxSize int64) (string, error) {
	if int64(len(data)) > maxSize {
		return "", storage.ErrFileTooLarge
	}
	a.counter++
	name := fmt.Sprintf("%d-%s", a.counter, originalName)
	a.files[name] = data
	return name, nil
}

func (a *fakeAssets) Remove(ctx context.Context, name string) error {
	delete(a.files, name)
	return nil
}

type fakePublisher struct {
	channels []string
	events   []PostEvent
}

func (p *fakePublisher) PublishJSON(ctx context.Context, channel string, payload any, attrs map[string]string) (string, error) {
	p.channels = append(p.channels, channel)
	if event, ok := payload.(PostEvent); ok {
		p.events = append(p.events, event)
	}
	return "msg", nil
}
