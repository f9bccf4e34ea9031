package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/gateway"
	models "github.com/pr-poehali-dev/jjrkdoemyt-social-network/model"
	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/pkg/token"
	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/repository"
)

// AuthHandler serves registration, login and token verification.
type AuthHandler struct {
	users  repository.UserRepository
	tokens *token.Manager
}

func NewAuthHandler(users repository.UserRepository, tokens *token.Manager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type registerRequest struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (h *AuthHandler) Handle(ctx context.Context, req gateway.Request) gateway.Response {
	switch req.HTTPMethod {
	case http.MethodOptions:
		return gateway.Preflight("POST, OPTIONS")
	case http.MethodPost:
	default:
		return gateway.MethodNotAllowed()
	}

	var env actionEnvelope
	if err := json.Unmarshal([]byte(req.Body), &env); err != nil {
		return gateway.Error(http.StatusBadRequest, "Invalid request body")
	}

	switch env.Action {
	case "register":
		return h.register(ctx, req.Body)
	case "login":
		return h.login(ctx, req.Body)
	case "verify":
		return h.verify(ctx, req.Headers[gateway.HeaderAuth])
	default:
		return gateway.InvalidAction()
	}
}

func (h *AuthHandler) register(ctx context.Context, body string) gateway.Response {
	var req registerRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return gateway.Error(http.StatusBadRequest, "Invalid request body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return gateway.Error(http.StatusBadRequest, "Missing required fields")
	}

	exists, err := h.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return internalError("check user existence", err)
	}
	if exists {
		return gateway.Error(http.StatusConflict, "User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError("hash password", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		return internalError("create user", err)
	}

	signed, err := h.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return internalError("generate token", err)
	}

	return gateway.JSON(http.StatusCreated, authResponse{
		Token: signed,
		User:  user.Public(),
	})
}

func (h *AuthHandler) login(ctx context.Context, body string) gateway.Response {
	var req loginRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return gateway.Error(http.StatusBadRequest, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return gateway.Error(http.StatusBadRequest, "Missing credentials")
	}

	// The same generic message for an unknown login and a wrong
	// password; callers cannot probe which accounts exist.
	user, err := h.users.GetByUsernameOrEmail(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return gateway.Error(http.StatusUnauthorized, "Invalid credentials")
		}
		return internalError("get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return gateway.Error(http.StatusUnauthorized, "Invalid credentials")
	}

	signed, err := h.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return internalError("generate token", err)
	}

	return gateway.JSON(http.StatusOK, authResponse{
		Token: signed,
		User:  user.Public(),
	})
}

func (h *AuthHandler) verify(ctx context.Context, authHeader string) gateway.Response {
	claims, err := h.tokens.VerifyHeader(authHeader)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrMalformed):
			return gateway.Error(http.StatusUnauthorized, "No token provided")
		case errors.Is(err, token.ErrExpired):
			return gateway.Error(http.StatusUnauthorized, "Token expired")
		default:
			return gateway.Error(http.StatusUnauthorized, "Invalid token")
		}
	}

	user, err := h.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return gateway.Error(http.StatusNotFound, "User not found")
		}
		return internalError("get user", err)
	}

	followers, err := h.users.CountFollowers(ctx, user.ID)
	if err != nil {
		return internalError("count followers", err)
	}
	following, err := h.users.CountFollowing(ctx, user.ID)
	if err != nil {
		return internalError("count following", err)
	}

	return gateway.JSON(http.StatusOK, map[string]models.Profile{
		"user": {
			PublicUser: user.Public(),
			Phone:      user.Phone,
			Followers:  followers,
			Following:  following,
		},
	})
}

func internalError(op string, err error) gateway.Response {
	log.Printf("%s: %v", op, err)
	return gateway.Error(http.StatusInternalServerError, "Internal server error")
}
