package handlers_test

import (
	"net/http"
	"testing"

	"github.com/shaibs3/newsboard/internal/apperr"
	"github.com/shaibs3/newsboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_ListAndGet(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Do(t, http.MethodGet, "/api/users", nil, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	users := testutil.Decode(t, w)["users"].([]interface{})
	require.Len(t, users, 4)
	for _, u := range users {
		assert.NotContains(t, u, "password")
	}

	w = env.Do(t, http.MethodGet, "/api/users/lurker", nil, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	user := testutil.Decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "do_nothing", user["name"])
	assert.NotContains(t, user, "password")

	w = env.Do(t, http.MethodGet, "/api/users/nobody", nil, "")
	testutil.AssertStatus(t, w, http.StatusNotFound)
	assert.Equal(t, apperr.MsgNotFound, testutil.Message(t, w))
}

func TestUsers_Create(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Do(t, http.MethodPost, "/api/users", map[string]interface{}{
		"username":   "weegembump",
		"password":   "s3cret",
		"name":       "Gemma",
		"avatar_url": "https://example.com/gem.png",
	}, "")
	testutil.AssertStatus(t, w, http.StatusCreated)
	session := testutil.Decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "weegembump", session["username"])

	claims, err := env.Issuer.Verify(session["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "weegembump", claims.Subject)

	stored, err := env.Store.GetUser(t.Context(), "weegembump")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.Password)
	assert.True(t, env.Hasher.CheckPassword(stored.Password, "s3cret"))

	w = env.Do(t, http.MethodPost, "/api/login", map[string]interface{}{"username": "weegembump", "password": "s3cret"}, "")
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestUsers_CreateRejected(t *testing.T) {
	env := testutil.NewEnv(t)

	tests := []struct {
		name    string
		body    map[string]interface{}
		status  int
		message string
	}{
		{
			"duplicate",
			map[string]interface{}{"username": "lurker", "password": "p", "name": "n", "avatar_url": "a"},
			http.StatusConflict, apperr.MsgUserExists,
		},
		{
			"null username",
			map[string]interface{}{"username": nil, "password": "p", "name": "n", "avatar_url": "a"},
			http.StatusBadRequest, apperr.MsgMissingFields,
		},
		{
			"missing avatar",
			map[string]interface{}{"username": "new", "password": "p", "name": "n"},
			http.StatusBadRequest, apperr.MsgMissingFields,
		},
		{
			"unknown field",
			map[string]interface{}{"username": "new", "password": "p", "name": "n", "avatar_url": "a", "role": "admin"},
			http.StatusBadRequest, apperr.MsgInvalidFields,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.Do(t, http.MethodPost, "/api/users", tt.body, "")
			testutil.AssertStatus(t, w, tt.status)
			assert.Equal(t, tt.message, testutil.Message(t, w))
		})
	}
}

func TestUsers_Patch(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Token(t, "rogersop")

	w := env.Do(t, http.MethodPatch, "/api/users/rogersop",
		map[string]interface{}{"username": "rogersop", "name": "Paul R"}, token)
	testutil.AssertStatus(t, w, http.StatusOK)
	user := testutil.Decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "Paul R", user["name"])
	assert.Equal(t, "https://avatars2.githubusercontent.com/u/24394918?s=400&v=4", user["avatar_url"])

	tests := []struct {
		name   string
		path   string
		body   map[string]interface{}
		token  string
		status int
	}{
		{"no token", "/api/users/rogersop", map[string]interface{}{"username": "rogersop", "name": "x"}, "", http.StatusUnauthorized},
		{"body impersonation", "/api/users/rogersop", map[string]interface{}{"username": "lurker", "name": "x"}, token, http.StatusForbidden},
		{"other target", "/api/users/lurker", map[string]interface{}{"username": "rogersop", "name": "x"}, token, http.StatusForbidden},
		{"unknown target", "/api/users/nobody", map[string]interface{}{"username": "rogersop", "name": "x"}, token, http.StatusNotFound},
		{"password not editable", "/api/users/rogersop", map[string]interface{}{"username": "rogersop", "password": "x"}, token, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.Do(t, http.MethodPatch, tt.path, tt.body, tt.token)
			testutil.AssertStatus(t, w, tt.status)
		})
	}
}

func TestLogin(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Do(t, http.MethodPost, "/api/login", map[string]interface{}{"username": "butter_bridge", "password": "butter_bridge1"}, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	session := testutil.Decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "butter_bridge", session["username"])

	token := session["token"].(string)
	w = env.Do(t, http.MethodPatch, "/api/articles/1", map[string]interface{}{"username": "butter_bridge", "inc_votes": 1}, token)
	testutil.AssertStatus(t, w, http.StatusOK)

	for name, body := range map[string]map[string]interface{}{
		"wrong password": {"username": "butter_bridge", "password": "nope"},
		"unknown user":   {"username": "ghost", "password": "boo"},
	} {
		t.Run(name, func(t *testing.T) {
			w := env.Do(t, http.MethodPost, "/api/login", body, "")
			testutil.AssertStatus(t, w, http.StatusUnauthorized)
			assert.Equal(t, "Unauthorized", w.Body.String())
		})
	}

	w = env.Do(t, http.MethodPost, "/api/login", map[string]interface{}{"username": "butter_bridge"}, "")
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, apperr.MsgMissingFields, testutil.Message(t, w))
}
