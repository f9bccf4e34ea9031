package models

import (
	"time"

	"github.com/google/uuid"
)

type Short struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"-" db:"user_id"`
	Title        string    `json:"title" db:"title"`
	VideoURL     string    `json:"videoUrl" db:"video_url"`
	ThumbnailURL *string   `json:"thumbnailUrl" db:"thumbnail_url"`
	Duration     int32     `json:"duration" db:"duration"`
	Likes        int32     `json:"likes" db:"likes"`
	Dislikes     int32     `json:"dislikes" db:"dislikes"`
	Views        int32     `json:"views" db:"views"`
	CreatedAt    time.Time `json:"timestamp" db:"created_at"`
}

type ShortWithAuthor struct {
	Short
	Author Author `json:"author"`
}

type ShortLike struct {
	UserID  uuid.UUID `json:"user_id" db:"user_id"`
	ShortID uuid.UUID `json:"short_id" db:"short_id"`
	IsLike  bool      `json:"is_like" db:"is_like"`
}
