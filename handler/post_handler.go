package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/gateway"
	models "github.com/pr-poehali-dev/jjrkdoemyt-social-network/model"
	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/pkg/token"
	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/repository"
)

// feedLimit caps the number of rows returned by the list endpoints.
const feedLimit = 50

type actionEnvelope struct {
	Action string `json:"action"`
}

// PostHandler serves the posts feed: list, create, like.
type PostHandler struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	tokens *token.Manager
}

func NewPostHandler(posts repository.PostRepository, users repository.UserRepository, tokens *token.Manager) *PostHandler {
	return &PostHandler{posts: posts, users: users, tokens: tokens}
}

type createPostRequest struct {
	Action   string  `json:"action"`
	Content  string  `json:"content"`
	Type     string  `json:"type"`
	VideoURL *string `json:"videoUrl"`
	MediaURL *string `json:"mediaUrl"`
	ModLink  *string `json:"modLink"`
}

type votePostRequest struct {
	Action string    `json:"action"`
	PostID uuid.UUID `json:"postId"`
	IsLike *bool     `json:"isLike"`
}

func (h *PostHandler) Handle(ctx context.Context, req gateway.Request) gateway.Response {
	switch req.HTTPMethod {
	case http.MethodOptions:
		return gateway.Preflight("GET, POST, OPTIONS")
	case http.MethodGet:
		return h.list(ctx)
	case http.MethodPost:
		return h.post(ctx, req)
	default:
		return gateway.MethodNotAllowed()
	}
}

func (h *PostHandler) list(ctx context.Context) gateway.Response {
	posts, err := h.posts.ListRecent(ctx, feedLimit)
	if err != nil {
		return internalError("list posts", err)
	}
	if posts == nil {
		posts = []models.PostWithAuthor{}
	}
	return gateway.JSON(http.StatusOK, map[string][]models.PostWithAuthor{"posts": posts})
}

func (h *PostHandler) post(ctx context.Context, req gateway.Request) gateway.Response {
	claims, err := h.tokens.VerifyHeader(req.Headers[gateway.HeaderAuth])
	if err != nil {
		return gateway.Error(http.StatusUnauthorized, "Unauthorized")
	}

	var env actionEnvelope
	if err := json.Unmarshal([]byte(req.Body), &env); err != nil {
		return gateway.Error(http.StatusBadRequest, "Invalid request body")
	}

	switch env.Action {
	case "create":
		return h.create(ctx, claims, req.Body)
	case "like":
		return h.vote(ctx, claims, req.Body)
	default:
		return gateway.InvalidAction()
	}
}

func (h *PostHandler) create(ctx context.Context, claims *token.Claims, body string) gateway.Response {
	var req createPostRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return gateway.Error(http.StatusBadRequest, "Invalid request body")
	}
	if req.Content == "" {
		return gateway.Error(http.StatusBadRequest, "Content is required")
	}
	if req.Type == "" {
		req.Type = models.PostTypeText
	}

	post := &models.Post{
		ID:        uuid.New(),
		UserID:    claims.UserID,
		Content:   req.Content,
		PostType:  req.Type,
		VideoURL:  req.VideoURL,
		MediaURL:  req.MediaURL,
		ModLink:   req.ModLink,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.posts.Create(ctx, post); err != nil {
		return internalError("create post", err)
	}

	// Author info is re-read from the users table rather than taken
	// from token claims, which may be up to 30 days stale.
	author, err := h.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return internalError("get author", err)
	}

	return gateway.JSON(http.StatusCreated, map[string]models.PostWithAuthor{
		"post": {
			Post: *post,
			Author: models.Author{
				ID:       author.ID,
				Username: author.Username,
				Avatar:   author.Avatar,
			},
		},
	})
}

func (h *PostHandler) vote(ctx context.Context, claims *token.Claims, body string) gateway.Response {
	var req votePostRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return gateway.Error(http.StatusBadRequest, "Invalid request body")
	}
	if req.PostID == uuid.Nil {
		return gateway.Error(http.StatusBadRequest, "Post ID is required")
	}

	isLike := true
	if req.IsLike != nil {
		isLike = *req.IsLike
	}

	if _, err := h.posts.GetVoteCounts(ctx, req.PostID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return gateway.Error(http.StatusNotFound, "Post not found")
		}
		return internalError("get post", err)
	}

	vote := &models.PostLike{
		UserID: claims.UserID,
		PostID: req.PostID,
		IsLike: isLike,
	}
	if err := h.posts.UpsertVote(ctx, vote); err != nil {
		return internalError("upsert vote", err)
	}

	// The counter bumps on every vote, not just the first one or a
	// polarity flip, so repeated votes inflate the totals. Kept to
	// match the live behavior the frontend was built against.
	var err error
	if isLike {
		err = h.posts.IncrementLikes(ctx, req.PostID)
	} else {
		err = h.posts.IncrementDislikes(ctx, req.PostID)
	}
	if err != nil {
		return internalError("increment counter", err)
	}

	counts, err := h.posts.GetVoteCounts(ctx, req.PostID)
	if err != nil {
		return internalError("get vote counts", err)
	}
	return gateway.JSON(http.StatusOK, counts)
}
