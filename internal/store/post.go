package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/inkwell-blog/apiserver/types"
)

// PostRepository handles persistence for posts.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `
	p.id, p.title, p.category, p.description, p.thumbnail, p.creator_id,
	p.created_at, p.updated_at, u.id, u.name, u.email`

func scanPost(row interface{ Scan(dest ...any) error }) (types.Post, error) {
	var post types.Post
	var author types.Author
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Category,
		&post.Description,
		&post.Thumbnail,
		&post.CreatorID,
		&post.CreatedAt,
		&post.UpdatedAt,
		&author.ID,
		&author.Name,
		&author.Email,
	)
	if err != nil {
		return types.Post{}, err
	}
	post.Creator = &author
	return post, nil
}

func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]types.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]types.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// List returns all posts, most recently updated first, with the
// creator's public fields joined in.
func (r *PostRepository) List(ctx context.Context) ([]types.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		ORDER BY p.updated_at DESC`
	return r.queryPosts(ctx, query)
}

// ListByCategory returns posts in a category, newest first.
func (r *PostRepository) ListByCategory(ctx context.Context, category string) ([]types.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		WHERE p.category = $1
		ORDER BY p.created_at DESC`
	return r.queryPosts(ctx, query, category)
}

// ListByCreator returns posts authored by a user, newest first.
func (r *PostRepository) ListByCreator(ctx context.Context, creatorID int) ([]types.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		WHERE p.creator_id = $1
		ORDER BY p.created_at DESC`
	return r.queryPosts(ctx, query, creatorID)
}

func (r *PostRepository) GetByID(ctx context.Context, id int) (types.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		WHERE p.id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	const query = `
		INSERT INTO posts (title, category, description, thumbnail, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		post.Title,
		post.Category,
		post.Description,
		post.Thumbnail,
		post.CreatorID,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

// Update persists title, category, description, and thumbnail for an
// existing post. The creator is never changed.
func (r *PostRepository) Update(ctx context.Context, post types.Post) (types.Post, error) {
	post.UpdatedAt = time.Now()

	const query = `
		UPDATE posts
		SET title = $1,
			category = $2,
			description = $3,
			thumbnail = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		post.Title,
		post.Category,
		post.Description,
		post.Thumbnail,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return types.Post{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Post{}, err
	}
	if affected == 0 {
		return types.Post{}, ErrNotFound
	}
	return post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM posts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
