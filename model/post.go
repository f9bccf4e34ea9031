package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostTypeText  = "text"
	PostTypeImage = "image"
	PostTypeVideo = "video"
	PostTypeMod   = "mod"
)

type Post struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"-" db:"user_id"`
	Content      string    `json:"content" db:"content"`
	PostType     string    `json:"type" db:"post_type"`
	MediaURL     *string   `json:"mediaUrl" db:"media_url"`
	VideoURL     *string   `json:"videoUrl" db:"video_url"`
	ThumbnailURL *string   `json:"thumbnailUrl" db:"thumbnail_url"`
	ModLink      *string   `json:"modLink" db:"mod_link"`
	Likes        int32     `json:"likes" db:"likes"`
	Dislikes     int32     `json:"dislikes" db:"dislikes"`
	Views        int32     `json:"views" db:"views"`
	CreatedAt    time.Time `json:"timestamp" db:"created_at"`
}

type PostWithAuthor struct {
	Post
	Author Author `json:"author"`
}

// PostLike is one user's vote on one post. The (user, post) pair is
// unique; repeated votes overwrite the polarity.
type PostLike struct {
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	PostID uuid.UUID `json:"post_id" db:"post_id"`
	IsLike bool      `json:"is_like" db:"is_like"`
}

// VoteCounts are the aggregate counters kept on the post/short row
// itself, not derived from the like tables.
type VoteCounts struct {
	Likes    int32 `json:"likes" db:"likes"`
	Dislikes int32 `json:"dislikes" db:"dislikes"`
}
