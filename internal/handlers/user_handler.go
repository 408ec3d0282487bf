package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shaibs3/newsboard/internal/apperr"
	"github.com/shaibs3/newsboard/internal/auth"
	"github.com/shaibs3/newsboard/internal/checker"
	"github.com/shaibs3/newsboard/internal/db_model"
	"github.com/shaibs3/newsboard/internal/store"
	"github.com/shaibs3/newsboard/internal/validate"
	"go.uber.org/zap"
)

// UserHandler handles registration, login and profiles
type UserHandler struct {
	DB      store.DbProvider
	checker *checker.Checker
	issuer  *auth.Issuer
	hasher  auth.Hasher
}

func NewUserHandler(dbProvider store.DbProvider, chk *checker.Checker, issuer *auth.Issuer, hasher auth.Hasher) *UserHandler {
	return &UserHandler{DB: dbProvider, checker: chk, issuer: issuer, hasher: hasher}
}

// RegisterRoutes registers the routes for this handler
func (h *UserHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.Handle("/api/users", handle(logger, h.handleList)).Methods(http.MethodGet)
	router.Handle("/api/users", handle(logger, h.handleCreate)).Methods(http.MethodPost)
	router.Handle("/api/users/{username}", handle(logger, h.handleGet)).Methods(http.MethodGet)
	router.Handle("/api/users/{username}", protected(h.issuer, logger, h.handlePatch)).Methods(http.MethodPatch)
	router.Handle("/api/login", handle(logger, h.handleLogin)).Methods(http.MethodPost)
}

type session struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) error {
	users, err := h.DB.ListUsers(r.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) error {
	user, err := h.DB.GetUser(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) error {
	body, err := decodeBody(r, validate.UserCreate)
	if err != nil {
		return err
	}
	fields := make(map[string]string, 4)
	for _, key := range validate.UserCreate.Required {
		if fields[key], err = body.RequiredString(key); err != nil {
			return err
		}
	}

	taken, err := h.checker.Exists(r.Context(), "users", "username", fields["username"])
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict(apperr.MsgUserExists)
	}

	hashed, err := h.hasher.HashPassword(fields["password"])
	if err != nil {
		return err
	}
	user, err := h.DB.CreateUser(r.Context(), db_model.User{
		Username:  fields["username"],
		Name:      fields["name"],
		AvatarURL: fields["avatar_url"],
		Password:  hashed,
	})
	if err != nil {
		return err
	}

	token, err := h.issuer.Issue(user.Username)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user": session{Username: user.Username, Token: token},
	})
}

func (h *UserHandler) handlePatch(w http.ResponseWriter, r *http.Request) error {
	target := mux.Vars(r)["username"]
	body, err := decodeBody(r, validate.UserPatch)
	if err != nil {
		return err
	}
	username, err := actingAs(r, body, "username")
	if err != nil {
		return err
	}
	if err := h.checker.MustExist(r.Context(), "users", "username", target); err != nil {
		return err
	}
	if target != username {
		return apperr.Forbidden()
	}

	var update db_model.UserUpdate
	if update.Name, err = body.String("name"); err != nil {
		return err
	}
	if update.AvatarURL, err = body.String("avatar_url"); err != nil {
		return err
	}

	user, err := h.DB.UpdateUser(r.Context(), target, update)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// handleLogin exchanges credentials for a token. Unknown users and wrong
// passwords are indistinguishable to the client.
func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) error {
	body, err := decodeBody(r, validate.Login)
	if err != nil {
		return err
	}
	username, err := body.RequiredString("username")
	if err != nil {
		return err
	}
	password, err := body.RequiredString("password")
	if err != nil {
		return err
	}

	user, err := h.DB.GetUser(r.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Unauthorized()
	}
	if err != nil {
		return err
	}
	if !h.hasher.CheckPassword(user.Password, password) {
		return apperr.Unauthorized()
	}

	token, err := h.issuer.Issue(user.Username)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": session{Username: user.Username, Token: token},
	})
}
