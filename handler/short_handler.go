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

// ShortHandler serves the shorts feed: list, create, like, view.
type ShortHandler struct {
	shorts repository.ShortRepository
	users  repository.UserRepository
	tokens *token.Manager
}

func NewShortHandler(shorts repository.ShortRepository, users repository.UserRepository, tokens *token.Manager) *ShortHandler {
	return &ShortHandler{shorts: shorts, users: users, tokens: tokens}
}

type createShortRequest struct {
	Action       string  `json:"action"`
	Title        string  `json:"title"`
	VideoURL     string  `json:"videoUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Duration     int32   `json:"duration"`
}

type voteShortRequest struct {
	Action  string    `json:"action"`
	ShortID uuid.UUID `json:"shortId"`
	IsLike  *bool     `json:"isLike"`
}

type viewShortRequest struct {
	Action  string    `json:"action"`
	ShortID uuid.UUID `json:"shortId"`
}

func (h *ShortHandler) Handle(ctx context.Context, req gateway.Request) gateway.Response {
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

func (h *ShortHandler) list(ctx context.Context) gateway.Response {
	shorts, err := h.shorts.ListRecent(ctx, feedLimit)
	if err != nil {
		return internalError("list shorts", err)
	}
	if shorts == nil {
		shorts = []models.ShortWithAuthor{}
	}
	return gateway.JSON(http.StatusOK, map[string][]models.ShortWithAuthor{"shorts": shorts})
}

func (h *ShortHandler) post(ctx context.Context, req gateway.Request) gateway.Response {
	var env actionEnvelope
	if err := json.Unmarshal([]byte(req.Body), &env); err != nil {
		return gateway.Error(http.StatusBadRequest, "Invalid request body")
	}

	// Recording a view is anonymous; everything else needs a token.
	if env.Action == "view" {
		return h.view(ctx, req.Body)
	}

	claims, err := h.tokens.VerifyHeader(req.Headers[gateway.HeaderAuth])
	if err != nil {
		return gateway.Error(http.StatusUnauthorized, "Unauthorized")
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

func (h *ShortHandler) create(ctx context.Context, claims *token.Claims, body string) gateway.Response {
	var req createShortRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return gateway.Error(http.StatusBadRequest, "Invalid request body")
	}
	if req.Title == "" || req.VideoURL == "" {
		return gateway.Error(http.StatusBadRequest, "Title and video URL are required")
	}

	short := &models.Short{
		ID:           uuid.New(),
		UserID:       claims.UserID,
		Title:        req.Title,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.shorts.Create(ctx, short); err != nil {
		return internalError("create short", err)
	}

	author, err := h.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return internalError("get author", err)
	}

	return gateway.JSON(http.StatusCreated, map[string]models.ShortWithAuthor{
		"short": {
			Short: *short,
			Author: models.Author{
				ID:       author.ID,
				Username: author.Username,
				Avatar:   author.Avatar,
			},
		},
	})
}

func (h *ShortHandler) vote(ctx context.Context, claims *token.Claims, body string) gateway.Response {
	var req voteShortRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return gateway.Error(http.StatusBadRequest, "Invalid request body")
	}
	if req.ShortID == uuid.Nil {
		return gateway.Error(http.StatusBadRequest, "Short ID is required")
	}

	isLike := true
	if req.IsLike != nil {
		isLike = *req.IsLike
	}

	if _, err := h.shorts.GetVoteCounts(ctx, req.ShortID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return gateway.Error(http.StatusNotFound, "Short not found")
		}
		return internalError("get short", err)
	}

	vote := &models.ShortLike{
		UserID:  claims.UserID,
		ShortID: req.ShortID,
		IsLike:  isLike,
	}
	if err := h.shorts.UpsertVote(ctx, vote); err != nil {
		return internalError("upsert vote", err)
	}

	// Same unconditional counter bump as posts; see PostHandler.vote.
	var err error
	if isLike {
		err = h.shorts.IncrementLikes(ctx, req.ShortID)
	} else {
		err = h.shorts.IncrementDislikes(ctx, req.ShortID)
	}
	if err != nil {
		return internalError("increment counter", err)
	}

	counts, err := h.shorts.GetVoteCounts(ctx, req.ShortID)
	if err != nil {
		return internalError("get vote counts", err)
	}
	return gateway.JSON(http.StatusOK, counts)
}

func (h *ShortHandler) view(ctx context.Context, body string) gateway.Response {
	var req viewShortRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return gateway.Error(http.StatusBadRequest, "Invalid request body")
	}
	if req.ShortID == uuid.Nil {
		return gateway.Error(http.StatusBadRequest, "Short ID is required")
	}

	if err := h.shorts.IncrementViews(ctx, req.ShortID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return gateway.Error(http.StatusNotFound, "Short not found")
		}
		return internalError("increment views", err)
	}
	return gateway.JSON(http.StatusOK, map[string]bool{"success": true})
}
