package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/gateway"
	models "github.com/pr-poehali-dev/jjrkdoemyt-social-network/model"
	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/pkg/token"
)

const testSecret = "test-secret"

func postEvent(t *testing.T, fields map[string]interface{}, authHeader string) gateway.Request {
	t.Helper()
	body, err := json.Marshal(fields)
	require.NoError(t, err)

	headers := map[string]string{}
	if authHeader != "" {
		headers[gateway.HeaderAuth] = authHeader
	}
	return gateway.Request{HTTPMethod: http.MethodPost, Headers: headers, Body: string(body)}
}

func decodeBody(t *testing.T, resp gateway.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(resp.Body), v))
}

func newAuthFixture() (*AuthHandler, *fakeUserRepo, *token.Manager) {
	users := newFakeUserRepo()
	tokens := token.NewManager(testSecret)
	return NewAuthHandler(users, tokens), users, tokens
}

func register(t *testing.T, h *AuthHandler, username, email, password string) authResponse {
	t.Helper()
	resp := h.Handle(context.Background(), postEvent(t, map[string]interface{}{
		"action": "register", "username": username, "email": email, "password": password,
	}, ""))
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)

	var out authResponse
	decodeBody(t, resp, &out)
	return out
}

func TestRegister(t *testing.T) {
	h, users, tokens := newAuthFixture()

	out := register(t, h, "alice", "a@x.com", "rightpw")
	assert.Equal(t, "alice", out.User.Username)
	assert.Equal(t, "a@x.com", out.User.Email)

	// The token verifies and carries the created row's id.
	claims, err := tokens.Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.UserID)

	stored, err := users.GetByID(context.Background(), out.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "rightpw", stored.PasswordHash, "password must be stored hashed")
}

func TestRegisterMissingFields(t *testing.T) {
	h, users, _ := newAuthFixture()

	for _, fields := range []map[string]interface{}{
		{"action": "register", "email": "a@x.com", "password": "pw"},
		{"action": "register", "username": "alice", "password": "pw"},
		{"action": "register", "username": "alice", "email": "a@x.com"},
		{"action": "register", "username": "", "email": "a@x.com", "password": "pw"},
	} {
		resp := h.Handle(context.Background(), postEvent(t, fields, ""))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
	assert.Empty(t, users.users, "no row may be inserted on validation failure")
}

func TestRegisterDuplicate(t *testing.T) {
	h, _, tokens := newAuthFixture()

	first := register(t, h, "alice", "a@x.com", "pw")

	// Same username, different email.
	resp := h.Handle(context.Background(), postEvent(t, map[string]interface{}{
		"action": "register", "username": "alice", "email": "b@x.com", "password": "pw",
	}, ""))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.JSONEq(t, `{"error":"User already exists"}`, resp.Body)

	// Same email, different username.
	resp = h.Handle(context.Background(), postEvent(t, map[string]interface{}{
		"action": "register", "username": "bob", "email": "a@x.com", "password": "pw",
	}, ""))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// The first registration's token still verifies.
	_, err := tokens.Verify(first.Token)
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	h, _, tokens := newAuthFixture()
	created := register(t, h, "alice", "a@x.com", "rightpw")

	resp := h.Handle(context.Background(), postEvent(t, map[string]interface{}{
		"action": "login", "username": "alice", "password": "rightpw",
	}, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)

	var out authResponse
	decodeBody(t, resp, &out)
	claims, err := tokens.Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, claims.UserID)

	// Login by email resolves the same account.
	resp = h.Handle(context.Background(), postEvent(t, map[string]interface{}{
		"action": "login", "username": "a@x.com", "password": "rightpw",
	}, ""))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h, _, _ := newAuthFixture()
	register(t, h, "alice", "a@x.com", "rightpw")

	wrongPw := h.Handle(context.Background(), postEvent(t, map[string]interface{}{
		"action": "login", "username": "alice", "password": "wrongpw",
	}, ""))
	noUser := h.Handle(context.Background(), postEvent(t, map[string]interface{}{
		"action": "login", "username": "nobody", "password": "rightpw",
	}, ""))

	// Same status and same generic message either way; the response
	// must not reveal which check failed.
	assert.Equal(t, http.StatusUnauthorized, wrongPw.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, noUser.StatusCode)
	assert.Equal(t, wrongPw.Body, noUser.Body)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, wrongPw.Body)
}

func TestVerify(t *testing.T) {
	h, users, _ := newAuthFixture()
	created := register(t, h, "alice", "a@x.com", "pw")
	users.followers[created.User.ID] = 7
	users.following[created.User.ID] = 3

	resp := h.Handle(context.Background(), postEvent(t, map[string]interface{}{
		"action": "verify",
	}, "Bearer "+created.Token))
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)

	var out struct {
		User models.Profile `json:"user"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, created.User.ID, out.User.ID)
	assert.Equal(t, int32(7), out.User.Followers)
	assert.Equal(t, int32(3), out.User.Following)
}

func TestVerifyTokenErrors(t *testing.T) {
	h, _, _ := newAuthFixture()
	created := register(t, h, "alice", "a@x.com", "pw")

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		UserID:   created.User.ID,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tampered, err := token.NewManager("other-secret").Generate(created.User.ID, "alice")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "No token provided"},
		{"not bearer", created.Token, "No token provided"},
		{"expired", "Bearer " + expired, "Token expired"},
		{"tampered", "Bearer " + tampered, "Invalid token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := h.Handle(context.Background(), postEvent(t, map[string]interface{}{
				"action": "verify",
			}, tc.header))
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.JSONEq(t, `{"error":"`+tc.want+`"}`, resp.Body)
		})
	}
}

func TestVerifyDeletedUser(t *testing.T) {
	h, users, _ := newAuthFixture()
	created := register(t, h, "alice", "a@x.com", "pw")
	delete(users.users, created.User.ID)

	resp := h.Handle(context.Background(), postEvent(t, map[string]interface{}{
		"action": "verify",
	}, "Bearer "+created.Token))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"User not found"}`, resp.Body)
}

func TestAuthMethodHandling(t *testing.T) {
	h, _, _ := newAuthFixture()

	opts := h.Handle(context.Background(), gateway.Request{HTTPMethod: http.MethodOptions})
	assert.Equal(t, http.StatusOK, opts.StatusCode)
	assert.Empty(t, opts.Body)
	assert.Equal(t, "POST, OPTIONS", opts.Headers["Access-Control-Allow-Methods"])
	assert.Equal(t, "*", opts.Headers["Access-Control-Allow-Origin"])

	get := h.Handle(context.Background(), gateway.Request{HTTPMethod: http.MethodGet})
	assert.Equal(t, http.StatusMethodNotAllowed, get.StatusCode)

	unknown := h.Handle(context.Background(), postEvent(t, map[string]interface{}{"action": "frobnicate"}, ""))
	assert.Equal(t, http.StatusBadRequest, unknown.StatusCode)
	assert.JSONEq(t, `{"error":"Invalid action"}`, unknown.Body)
}
