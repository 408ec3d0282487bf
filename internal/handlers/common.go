package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shaibs3/newsboard/internal/apperr"
	"github.com/shaibs3/newsboard/internal/auth"
	"github.com/shaibs3/newsboard/internal/validate"
	"go.uber.org/zap"
)

// handlerFunc is an HTTP handler whose failures go through apperr.Write.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func handle(logger *zap.Logger, fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			apperr.Write(w, err, logger)
		}
	})
}

// protected requires a valid bearer token before fn runs.
func protected(issuer *auth.Issuer, logger *zap.Logger, fn handlerFunc) http.Handler {
	return auth.Require(issuer, logger)(handle(logger, fn))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// pathID parses a numeric path variable. Ids are 32-bit serials.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id > math.MaxInt32 || id < math.MinInt32 {
		return 0, apperr.Validation(apperr.MsgInvalidInput)
	}
	return id, nil
}

func identity(r *http.Request) (string, error) {
	username, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return "", apperr.Unauthorized()
	}
	return username, nil
}

// actingAs checks that the body's username is the token's identity.
func actingAs(r *http.Request, body validate.Body, field string) (string, error) {
	username, err := identity(r)
	if err != nil {
		return "", err
	}
	claimed, err := body.RequiredString(field)
	if err != nil {
		return "", err
	}
	if claimed != username {
		return "", apperr.Forbidden()
	}
	return username, nil
}

// decodeBody reads the request body and validates it against schema.
func decodeBody(r *http.Request, schema validate.Schema) (validate.Body, error) {
	body, err := validate.Decode(r.Body)
	if err != nil {
		return nil, err
	}
	if err := validate.Validate(schema, body); err != nil {
		return nil, err
	}
	return body, nil
}
