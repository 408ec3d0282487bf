// Package testutil builds a fully wired API over a seeded in-memory store.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shaibs3/newsboard/internal/auth"
	"github.com/shaibs3/newsboard/internal/checker"
	"github.com/shaibs3/newsboard/internal/fixtures"
	"github.com/shaibs3/newsboard/internal/handlers"
	"github.com/shaibs3/newsboard/internal/router"
	"github.com/shaibs3/newsboard/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const TokenSecret = "test-secret"

// Env is an API instance backed by the sample fixtures.
type Env struct {
	Router *router.Router
	Store  *store.InMemoryProvider
	Issuer *auth.Issuer
	Hasher auth.Hasher
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	hasher := auth.NewHasher(bcrypt.MinCost)
	f, err := fixtures.Sample()
	require.NoError(t, err)
	data, err := f.Dataset(hasher.HashPassword)
	require.NoError(t, err)

	provider := store.NewInMemoryProvider()
	require.NoError(t, provider.Seed(context.Background(), data))

	issuer := auth.NewIssuer(TokenSecret, time.Hour)
	chk := checker.New(provider)
	logger := zap.NewNop()

	r := router.NewRouter(nil, nil, logger, []router.Handler{
		handlers.NewAPIHandler(),
		handlers.NewTopicHandler(provider, chk),
		handlers.NewArticleHandler(provider, chk, issuer),
		handlers.NewCommentHandler(provider, chk, issuer),
		handlers.NewUserHandler(provider, chk, issuer, hasher),
	})

	return &Env{Router: r, Store: provider, Issuer: issuer, Hasher: hasher}
}

// Token issues a valid token for username.
func (e *Env) Token(t *testing.T, username string) string {
	t.Helper()
	token, err := e.Issuer.Issue(username)
	require.NoError(t, err)
	return token
}

// Do sends a request through the router. body may be nil, a string sent
// verbatim, or any value encoded as JSON. An empty token sends no header.
func (e *Env) Do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Decode unmarshals a JSON response body into a generic map.
func Decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// Message returns the "message" field of a JSON error response.
func Message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := Decode(t, w)["message"].(string)
	return msg
}

// AssertStatus fails with the response body when the status differs.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "%s", w.Body.String())
}
