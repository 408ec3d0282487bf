package handlers_test

import (
	"net/http"
	"testing"

	"github.com/shaibs3/newsboard/internal/apperr"
	"github.com/shaibs3/newsboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commentsOf(t *testing.T, body map[string]interface{}) []map[string]interface{} {
	t.Helper()
	raw, ok := body["comments"].([]interface{})
	require.True(t, ok, "expected comments array")
	out := make([]map[string]interface{}, len(raw))
	for i, c := range raw {
		out[i] = c.(map[string]interface{})
	}
	return out
}

func TestComments_ListForArticle(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Do(t, http.MethodGet, "/api/articles/1/comments", nil, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	comments := commentsOf(t, testutil.Decode(t, w))
	require.Len(t, comments, 10)
	assert.Equal(t, float64(5), comments[0]["comment_id"], "newest comment first")
	for _, c := range comments {
		assert.Equal(t, float64(1), c["article_id"])
		assert.Equal(t, float64(11), c["total_count"])
	}

	w = env.Do(t, http.MethodGet, "/api/articles/1/comments?sort_by=votes&limit=2&p=1", nil, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	comments = commentsOf(t, testutil.Decode(t, w))
	require.Len(t, comments, 2)
	assert.Equal(t, float64(3), comments[0]["comment_id"])

	w = env.Do(t, http.MethodGet, "/api/articles/2/comments", nil, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Empty(t, commentsOf(t, testutil.Decode(t, w)))
}

func TestComments_ListForArticleErrors(t *testing.T) {
	env := testutil.NewEnv(t)

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/api/articles/999/comments", http.StatusNotFound, apperr.MsgNotFound},
		{"/api/articles/x/comments", http.StatusBadRequest, apperr.MsgInvalidInput},
		{"/api/articles/1/comments?sort_by=title", http.StatusBadRequest, apperr.MsgInvalidSort},
		{"/api/articles/1/comments?order=random", http.StatusBadRequest, apperr.MsgInvalidOrder},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.Do(t, http.MethodGet, tt.path, nil, "")
			testutil.AssertStatus(t, w, tt.status)
			assert.Equal(t, tt.message, testutil.Message(t, w))
		})
	}
}

func TestComments_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Token(t, "lurker")

	w := env.Do(t, http.MethodPost, "/api/articles/2/comments", map[string]interface{}{"username": "lurker", "body": "first!"}, token)
	testutil.AssertStatus(t, w, http.StatusCreated)
	comment := testutil.Decode(t, w)["comment"].(map[string]interface{})
	assert.Equal(t, float64(19), comment["comment_id"])
	assert.Equal(t, float64(2), comment["article_id"])
	assert.Equal(t, "lurker", comment["author"])
	assert.Equal(t, float64(0), comment["votes"])

	w = env.Do(t, http.MethodGet, "/api/articles/2", nil, "")
	assert.Equal(t, float64(1), testutil.Decode(t, w)["article"].(map[string]interface{})["comment_count"])
}

func TestComments_CreateRejected(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Token(t, "lurker")

	tests := []struct {
		name   string
		path   string
		body   map[string]interface{}
		token  string
		status int
	}{
		{"no token", "/api/articles/2/comments", map[string]interface{}{"username": "lurker", "body": "x"}, "", http.StatusUnauthorized},
		{"impersonation", "/api/articles/2/comments", map[string]interface{}{"username": "rogersop", "body": "x"}, token, http.StatusForbidden},
		{"missing article", "/api/articles/999/comments", map[string]interface{}{"username": "lurker", "body": "x"}, token, http.StatusNotFound},
		{"null body", "/api/articles/2/comments", map[string]interface{}{"username": "lurker", "body": nil}, token, http.StatusBadRequest},
		{"unknown field", "/api/articles/2/comments", map[string]interface{}{"username": "lurker", "body": "x", "votes": 3}, token, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.Do(t, http.MethodPost, tt.path, tt.body, tt.token)
			testutil.AssertStatus(t, w, tt.status)
		})
	}
}

func TestComments_ListAndGet(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Do(t, http.MethodGet, "/api/comments?limit=20", nil, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	comments := commentsOf(t, testutil.Decode(t, w))
	require.Len(t, comments, 18)
	assert.Equal(t, float64(18), comments[0]["total_count"])

	w = env.Do(t, http.MethodGet, "/api/comments/1", nil, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	comment := testutil.Decode(t, w)["comment"].(map[string]interface{})
	assert.Equal(t, "butter_bridge", comment["author"])
	assert.Equal(t, float64(16), comment["votes"])
	assert.Equal(t, float64(9), comment["article_id"])

	w = env.Do(t, http.MethodGet, "/api/comments/404", nil, "")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestComments_ListHugePagination(t *testing.T) {
	env := testutil.NewEnv(t)

	for _, path := range []string{
		"/api/comments?limit=4611686018427387904&p=3",
		"/api/articles/1/comments?limit=4611686018427387904&p=3",
	} {
		w := env.Do(t, http.MethodGet, path, nil, "")
		testutil.AssertStatus(t, w, http.StatusOK)
		assert.Empty(t, commentsOf(t, testutil.Decode(t, w)), path)
	}
}

func TestComments_Patch(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Do(t, http.MethodPatch, "/api/comments/1",
		map[string]interface{}{"username": "lurker", "inc_votes": 1}, env.Token(t, "lurker"))
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, float64(17), testutil.Decode(t, w)["comment"].(map[string]interface{})["votes"])

	w = env.Do(t, http.MethodPatch, "/api/comments/1",
		map[string]interface{}{"username": "lurker", "body": "hijacked"}, env.Token(t, "lurker"))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = env.Do(t, http.MethodPatch, "/api/comments/1",
		map[string]interface{}{"username": "butter_bridge", "body": "edited"}, env.Token(t, "butter_bridge"))
	testutil.AssertStatus(t, w, http.StatusOK)
	comment := testutil.Decode(t, w)["comment"].(map[string]interface{})
	assert.Equal(t, "edited", comment["body"])
	assert.Equal(t, float64(17), comment["votes"])

	w = env.Do(t, http.MethodPatch, "/api/comments/999",
		map[string]interface{}{"username": "lurker", "inc_votes": 1}, env.Token(t, "lurker"))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = env.Do(t, http.MethodPatch, "/api/comments/1",
		map[string]interface{}{"username": "lurker", "inc_votes": 1}, "")
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestComments_Delete(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Do(t, http.MethodDelete, "/api/comments/1", nil, env.Token(t, "icellusedkars"))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, "Unauthorized", w.Body.String())

	w = env.Do(t, http.MethodDelete, "/api/comments/1", nil, env.Token(t, "butter_bridge"))
	testutil.AssertStatus(t, w, http.StatusNoContent)
	assert.Empty(t, w.Body.String())

	w = env.Do(t, http.MethodDelete, "/api/comments/1", nil, env.Token(t, "butter_bridge"))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = env.Do(t, http.MethodGet, "/api/articles/9", nil, "")
	assert.Equal(t, float64(1), testutil.Decode(t, w)["article"].(map[string]interface{})["comment_count"])
}
