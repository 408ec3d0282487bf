package validate

import (
	"strings"
	"testing"

	"github.com/shaibs3/newsboard/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) Body {
	t.Helper()
	body, err := Decode(strings.NewReader(s))
	require.NoError(t, err)
	return body
}

func message(err error) string {
	if err == nil {
		return ""
	}
	return apperr.From(err).Message
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		body   string
		want   string
	}{
		{"topic ok", TopicCreate, `{"slug":"dogs","description":"dogs are awesome"}`, ""},
		{"topic unknown key", TopicCreate, `{"slug":"dogs","description":"d","extra":1}`, apperr.MsgInvalidFields},
		{"topic null slug", TopicCreate, `{"slug":null,"description":"d"}`, apperr.MsgNullFields},
		{"topic missing description", TopicCreate, `{"slug":"dogs"}`, apperr.MsgNullFields},
		{"unknown key wins over null", TopicCreate, `{"slug":null,"extra":1}`, apperr.MsgInvalidFields},
		{"patch votes only", ArticlePatch, `{"username":"lurker","inc_votes":1}`, ""},
		{"patch empty", ArticlePatch, `{"username":"lurker"}`, ""},
		{"patch without username", ArticlePatch, `{"inc_votes":1}`, apperr.MsgNullFields},
		{"patch null body", CommentPatch, `{"username":"lurker","body":null}`, apperr.MsgNullFields},
		{"user null username", UserCreate, `{"username":null,"password":"p","name":"n","avatar_url":"a"}`, apperr.MsgMissingFields},
		{"user missing password", UserCreate, `{"username":"u","name":"n","avatar_url":"a"}`, apperr.MsgMissingFields},
		{"user unknown key", UserCreate, `{"username":"u","password":"p","name":"n","avatar_url":"a","admin":true}`, apperr.MsgInvalidFields},
		{"user patch password rejected", UserPatch, `{"username":"u","password":"p"}`, apperr.MsgInvalidFields},
		{"login missing password", Login, `{"username":"u"}`, apperr.MsgMissingFields},
		{"comment ok", CommentCreate, `{"username":"lurker","body":"hi"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, message(Validate(tt.schema, decode(t, tt.body))))
		})
	}
}

func TestDecode(t *testing.T) {
	body, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, body)

	for _, raw := range []string{`{"slug":`, `[1,2]`, `null`, `"text"`, `{} {}`} {
		_, err := Decode(strings.NewReader(raw))
		assert.Equal(t, apperr.MsgInvalidInput, message(err), raw)
	}
}

func TestBody_Int(t *testing.T) {
	body := decode(t, `{"a":10,"b":"-150","c":"ten","d":1.5,"e":true,"f":99999999999}`)

	n, err := body.Int("a")
	require.NoError(t, err)
	assert.Equal(t, 10, *n)

	n, err = body.Int("b")
	require.NoError(t, err)
	assert.Equal(t, -150, *n)

	for _, key := range []string{"c", "d", "e", "f"} {
		_, err := body.Int(key)
		assert.Equal(t, apperr.MsgInvalidInput, message(err), key)
	}

	n, err = body.Int("missing")
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestBody_String(t *testing.T) {
	body := decode(t, `{"a":"text","b":12,"c":{"x":1}}`)

	s, err := body.String("a")
	require.NoError(t, err)
	assert.Equal(t, "text", *s)

	s, err = body.String("b")
	require.NoError(t, err)
	assert.Equal(t, "12", *s)

	_, err = body.String("c")
	assert.Equal(t, apperr.MsgInvalidInput, message(err))

	_, err = body.RequiredString("missing")
	assert.Equal(t, apperr.MsgNullFields, message(err))
}
