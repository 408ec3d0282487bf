// Package validate checks request bodies against per-endpoint field whitelists.
package validate

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shaibs3/newsboard/internal/apperr"
)

// Body is a decoded JSON object. Numbers are kept as json.Number.
type Body map[string]interface{}

// Schema declares the accepted fields of one endpoint. When MissingIsDistinct
// is set, absent or null required fields are reported as missing rather than null.
type Schema struct {
	Allowed           []string
	Required          []string
	MissingIsDistinct bool
}

var (
	TopicCreate = Schema{
		Allowed:  []string{"slug", "description"},
		Required: []string{"slug", "description"},
	}
	ArticleCreate = Schema{
		Allowed:  []string{"author", "title", "body", "topic"},
		Required: []string{"author", "title", "body", "topic"},
	}
	ArticlePatch = Schema{
		Allowed:  []string{"username", "inc_votes", "body"},
		Required: []string{"username"},
	}
	CommentCreate = Schema{
		Allowed:  []string{"username", "body"},
		Required: []string{"username", "body"},
	}
	CommentPatch = Schema{
		Allowed:  []string{"username", "inc_votes", "body"},
		Required: []string{"username"},
	}
	UserCreate = Schema{
		Allowed:           []string{"username", "password", "name", "avatar_url"},
		Required:          []string{"username", "password", "name", "avatar_url"},
		MissingIsDistinct: true,
	}
	UserPatch = Schema{
		Allowed:  []string{"username", "name", "avatar_url"},
		Required: []string{"username"},
	}
	Login = Schema{
		Allowed:           []string{"username", "password"},
		Required:          []string{"username", "password"},
		MissingIsDistinct: true,
	}
)

func contains(list []string, key string) bool {
	for _, k := range list {
		if k == key {
			return true
		}
	}
	return false
}

// Validate checks body against s. Unknown keys are reported first, then
// null values and absent required keys.
func Validate(s Schema, body Body) error {
	for key := range body {
		if !contains(s.Allowed, key) {
			return apperr.Validation(apperr.MsgInvalidFields)
		}
	}

	nullMessage := apperr.MsgNullFields
	if s.MissingIsDistinct {
		nullMessage = apperr.MsgMissingFields
	}
	for _, value := range body {
		if value == nil {
			return apperr.Validation(nullMessage)
		}
	}
	for _, key := range s.Required {
		if _, ok := body[key]; !ok {
			return apperr.Validation(nullMessage)
		}
	}
	return nil
}

// Decode reads a JSON object. An empty body decodes to an empty object.
func Decode(r io.Reader) (Body, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var body Body
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return Body{}, nil
		}
		return nil, apperr.Validation(apperr.MsgInvalidInput)
	}
	if body == nil {
		return nil, apperr.Validation(apperr.MsgInvalidInput)
	}
	if dec.More() {
		return nil, apperr.Validation(apperr.MsgInvalidInput)
	}
	return body, nil
}

// Int returns the integer under key, or nil when the key is absent. JSON
// integers and integer strings are accepted.
func (b Body) Int(key string) (*int, error) {
	raw, ok := b[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var text string
	switch v := raw.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return nil, apperr.Validation(apperr.MsgInvalidInput)
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
		return nil, apperr.Validation(apperr.MsgInvalidInput)
	}
	i := int(n)
	return &i, nil
}

// String returns the text under key, or nil when the key is absent.
// Numbers are accepted in their literal form.
func (b Body) String(key string) (*string, error) {
	raw, ok := b[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case string:
		return &v, nil
	case json.Number:
		s := v.String()
		return &s, nil
	}
	return nil, apperr.Validation(apperr.MsgInvalidInput)
}

// RequiredString is String for keys Validate has already checked.
func (b Body) RequiredString(key string) (string, error) {
	s, err := b.String(key)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", apperr.Validation(apperr.MsgNullFields)
	}
	return *s, nil
}
