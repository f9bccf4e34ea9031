package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Avatar       *string   `json:"avatar" db:"avatar"`
	Banner       *string   `json:"banner" db:"banner"`
	Bio          *string   `json:"bio" db:"bio"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PublicUser is the projection of a user that is safe to return to any
// caller. The password hash never leaves the repository layer.
type PublicUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Avatar   *string   `json:"avatar"`
	Banner   *string   `json:"banner"`
	Bio      *string   `json:"bio"`
}

// Profile is the authenticated view of a user, returned by token
// verification. It adds the phone number and subscription counts.
type Profile struct {
	PublicUser
	Phone     *string `json:"phone"`
	Followers int32   `json:"followers"`
	Following int32   `json:"following"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Banner:   u.Banner,
		Bio:      u.Bio,
	}
}

// Author is the slice of a user joined onto posts and shorts.
type Author struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Avatar   *string   `json:"avatar"`
}
