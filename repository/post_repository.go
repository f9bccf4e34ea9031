package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	models "github.com/pr-poehali-dev/jjrkdoemyt-social-network/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// ListRecent returns the newest posts first, joined with their
	// author, capped at limit. No pagination cursor.
	ListRecent(ctx context.Context, limit int) ([]models.PostWithAuthor, error)

	// UpsertVote records one user's vote on one post, overwriting any
	// previous polarity. The aggregate counters are mutated separately.
	UpsertVote(ctx context.Context, vote *models.PostLike) error
	IncrementLikes(ctx context.Context, postID uuid.UUID) error
	IncrementDislikes(ctx context.Context, postID uuid.UUID) error
	GetVoteCounts(ctx context.Context, postID uuid.UUID) (*models.VoteCounts, error)
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, user_id, content, post_type, media_url, video_url,
		                   thumbnail_url, mod_link, likes, dislikes, views, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, 0, $9)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		post.ID, post.UserID, post.Content, post.PostType,
		post.MediaURL, post.VideoURL, post.ThumbnailURL, post.ModLink,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// postRow flattens the post/author join for scanning.
type postRow struct {
	models.Post
	AuthorID       uuid.UUID `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	AuthorAvatar   *string   `db:"author_avatar"`
}

func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]models.PostWithAuthor, error) {
	query := `
		SELECT p.id, p.user_id, p.content, p.post_type, p.media_url, p.video_url,
		       p.thumbnail_url, p.mod_link, p.likes, p.dislikes, p.views, p.created_at,
		       u.id AS author_id, u.username AS author_username, u.avatar AS author_avatar
		FROM posts p
		JOIN users u ON p.user_id = u.id
		ORDER BY p.created_at DESC
		LIMIT $1
	`

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]models.PostWithAuthor, len(rows))
	for i, row := range rows {
		posts[i] = models.PostWithAuthor{
			Post: row.Post,
			Author: models.Author{
				ID:       row.AuthorID,
				Username: row.AuthorUsername,
				Avatar:   row.AuthorAvatar,
			},
		}
	}
	return posts, nil
}

func (r *postRepository) UpsertVote(ctx context.Context, vote *models.PostLike) error {
	query := `
		INSERT INTO post_likes (user_id, post_id, is_like)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, post_id) DO UPDATE SET is_like = $3
	`

	_, err := r.db.ExecContext(ctx, query, vote.UserID, vote.PostID, vote.IsLike)
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

func (r *postRepository) IncrementLikes(ctx context.Context, postID uuid.UUID) error {
	query := `UPDATE posts SET likes = likes + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, postID); err != nil {
		return fmt.Errorf("failed to increment likes: %w", err)
	}
	return nil
}

func (r *postRepository) IncrementDislikes(ctx context.Context, postID uuid.UUID) error {
	query := `UPDATE posts SET dislikes = dislikes + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, postID); err != nil {
		return fmt.Errorf("failed to increment dislikes: %w", err)
	}
	return nil
}

func (r *postRepository) GetVoteCounts(ctx context.Context, postID uuid.UUID) (*models.VoteCounts, error) {
	var counts models.VoteCounts
	query := `SELECT likes, dislikes FROM posts WHERE id = $1`

	err := r.db.GetContext(ctx, &counts, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get vote counts: %w", err)
	}
	return &counts, nil
}
