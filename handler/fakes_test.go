package handler

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	models "github.com/pr-poehali-dev/jjrkdoemyt-social-network/model"
	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/repository"
)

// In-memory repositories; handlers are exercised without a database.

type fakeUserRepo struct {
	users     map[uuid.UUID]*models.User
	followers map[uuid.UUID]int32
	following map[uuid.UUID]int32
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:     make(map[uuid.UUID]*models.User),
		followers: make(map[uuid.UUID]int32),
		following: make(map[uuid.UUID]int32),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsernameOrEmail(_ context.Context, login string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == login || user.Email == login {
			cp := *user
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", login, repository.ErrNotFound)
}

func (r *fakeUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, user := range r.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) CountFollowers(_ context.Context, userID uuid.UUID) (int32, error) {
	return r.followers[userID], nil
}

func (r *fakeUserRepo) CountFollowing(_ context.Context, userID uuid.UUID) (int32, error) {
	return r.following[userID], nil
}

type voteKey struct {
	userID   uuid.UUID
	targetID uuid.UUID
}

type fakePostRepo struct {
	posts map[uuid.UUID]*models.Post
	votes map[voteKey]bool
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts: make(map[uuid.UUID]*models.Post),
		votes: make(map[voteKey]bool),
	}
}

func (r *fakePostRepo) Create(_ context.Context, post *models.Post) error {
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *fakePostRepo) ListRecent(_ context.Context, limit int) ([]models.PostWithAuthor, error) {
	all := make([]models.Post, 0, len(r.posts))
	for _, post := range r.posts {
		all = append(all, *post)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}

	out := make([]models.PostWithAuthor, len(all))
	for i, post := range all {
		out[i] = models.PostWithAuthor{
			Post:   post,
			Author: models.Author{ID: post.UserID, Username: "author"},
		}
	}
	return out, nil
}

func (r *fakePostRepo) UpsertVote(_ context.Context, vote *models.PostLike) error {
	r.votes[voteKey{vote.UserID, vote.PostID}] = vote.IsLike
	return nil
}

func (r *fakePostRepo) IncrementLikes(_ context.Context, postID uuid.UUID) error {
	if post, ok := r.posts[postID]; ok {
		post.Likes++
	}
	return nil
}

func (r *fakePostRepo) IncrementDislikes(_ context.Context, postID uuid.UUID) error {
	if post, ok := r.posts[postID]; ok {
		post.Dislikes++
	}
	return nil
}

func (r *fakePostRepo) GetVoteCounts(_ context.Context, postID uuid.UUID) (*models.VoteCounts, error) {
	post, ok := r.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", postID, repository.ErrNotFound)
	}
	return &models.VoteCounts{Likes: post.Likes, Dislikes: post.Dislikes}, nil
}

type fakeShortRepo struct {
	shorts map[uuid.UUID]*models.Short
	votes  map[voteKey]bool
}

func newFakeShortRepo() *fakeShortRepo {
	return &fakeShortRepo{
		shorts: make(map[uuid.UUID]*models.Short),
		votes:  make(map[voteKey]bool),
	}
}

func (r *fakeShortRepo) Create(_ context.Context, short *models.Short) error {
	cp := *short
	r.shorts[short.ID] = &cp
	return nil
}

func (r *fakeShortRepo) ListRecent(_ context.Context, limit int) ([]models.ShortWithAuthor, error) {
	all := make([]models.Short, 0, len(r.shorts))
	for _, short := range r.shorts {
		all = append(all, *short)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}

	out := make([]models.ShortWithAuthor, len(all))
	for i, short := range all {
		out[i] = models.ShortWithAuthor{
			Short:  short,
			Author: models.Author{ID: short.UserID, Username: "author"},
		}
	}
	return out, nil
}

func (r *fakeShortRepo) UpsertVote(_ context.Context, vote *models.ShortLike) error {
	r.votes[voteKey{vote.UserID, vote.ShortID}] = vote.IsLike
	return nil
}

func (r *fakeShortRepo) IncrementLikes(_ context.Context, shortID uuid.UUID) error {
	if short, ok := r.shorts[shortID]; ok {
		short.Likes++
	}
	return nil
}

func (r *fakeShortRepo) IncrementDislikes(_ context.Context, shortID uuid.UUID) error {
	if short, ok := r.shorts[shortID]; ok {
		short.Dislikes++
	}
	return nil
}

func (r *fakeShortRepo) GetVoteCounts(_ context.Context, shortID uuid.UUID) (*models.VoteCounts, error) {
	short, ok := r.shorts[shortID]
	if !ok {
		return nil, fmt.Errorf("short %s: %w", shortID, repository.ErrNotFound)
	}
	return &models.VoteCounts{Likes: short.Likes, Dislikes: short.Dislikes}, nil
}

func (r *fakeShortRepo) IncrementViews(_ context.Context, shortID uuid.UUID) error {
	short, ok := r.shorts[shortID]
	if !ok {
		return fmt.Errorf("short %s: %w", shortID, repository.ErrNotFound)
	}
	short.Views++
	return nil
}
