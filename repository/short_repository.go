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

type ShortRepository interface {
	Create(ctx context.Context, short *models.Short) error
	ListRecent(ctx context.Context, limit int) ([]models.ShortWithAuthor, error)

	UpsertVote(ctx context.Context, vote *models.ShortLike) error
	IncrementLikes(ctx context.Context, shortID uuid.UUID) error
	IncrementDislikes(ctx context.Context, shortID uuid.UUID) error
	GetVoteCounts(ctx context.Context, shortID uuid.UUID) (*models.VoteCounts, error)

	// IncrementViews bumps the view counter atomically on the row. No
	// de-duplication by viewer.
	IncrementViews(ctx context.Context, shortID uuid.UUID) error
}

type shortRepository struct {
	db *sqlx.DB
}

func NewShortRepository(db *sqlx.DB) ShortRepository {
	return &shortRepository{db: db}
}

func (r *shortRepository) Create(ctx context.Context, short *models.Short) error {
	query := `
		INSERT INTO shorts (id, user_id, title, video_url, thumbnail_url, duration,
		                    likes, dislikes, views, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, $7)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		short.ID, short.UserID, short.Title, short.VideoURL,
		short.ThumbnailURL, short.Duration, short.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create short: %w", err)
	}
	return nil
}

type shortRow struct {
	models.Short
	AuthorID       uuid.UUID `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	AuthorAvatar   *string   `db:"author_avatar"`
}

func (r *shortRepository) ListRecent(ctx context.Context, limit int) ([]models.ShortWithAuthor, error) {
	query := `
		SELECT s.id, s.user_id, s.title, s.video_url, s.thumbnail_url, s.duration,
		       s.likes, s.dislikes, s.views, s.created_at,
		       u.id AS author_id, u.username AS author_username, u.avatar AS author_avatar
		FROM shorts s
		JOIN users u ON s.user_id = u.id
		ORDER BY s.created_at DESC
		LIMIT $1
	`

	var rows []shortRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list shorts: %w", err)
	}

	shorts := make([]models.ShortWithAuthor, len(rows))
	for i, row := range rows {
		shorts[i] = models.ShortWithAuthor{
			Short: row.Short,
			Author: models.Author{
				ID:       row.AuthorID,
				Username: row.AuthorUsername,
				Avatar:   row.AuthorAvatar,
			},
		}
	}
	return shorts, nil
}

func (r *shortRepository) UpsertVote(ctx context.Context, vote *models.ShortLike) error {
	query := `
		INSERT INTO short_likes (user_id, short_id, is_like)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, short_id) DO UPDATE SET is_like = $3
	`

	_, err := r.db.ExecContext(ctx, query, vote.UserID, vote.ShortID, vote.IsLike)
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

func (r *shortRepository) IncrementLikes(ctx context.Context, shortID uuid.UUID) error {
	query := `UPDATE shorts SET likes = likes + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, shortID); err != nil {
		return fmt.Errorf("failed to increment likes: %w", err)
	}
	return nil
}

func (r *shortRepository) IncrementDislikes(ctx context.Context, shortID uuid.UUID) error {
	query := `UPDATE shorts SET dislikes = dislikes + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, shortID); err != nil {
		return fmt.Errorf("failed to increment dislikes: %w", err)
	}
	return nil
}

func (r *shortRepository) GetVoteCounts(ctx context.Context, shortID uuid.UUID) (*models.VoteCounts, error) {
	var counts models.VoteCounts
	query := `SELECT likes, dislikes FROM shorts WHERE id = $1`

	err := r.db.GetContext(ctx, &counts, query, shortID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("short %s: %w", shortID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get vote counts: %w", err)
	}
	return &counts, nil
}

func (r *shortRepository) IncrementViews(ctx context.Context, shortID uuid.UUID) error {
	query := `UPDATE shorts SET views = views + 1 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, shortID)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("short %s: %w", shortID, ErrNotFound)
	}
	return nil
}
