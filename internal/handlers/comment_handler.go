package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shaibs3/newsboard/internal/apperr"
	"github.com/shaibs3/newsboard/internal/auth"
	"github.com/shaibs3/newsboard/internal/checker"
	"github.com/shaibs3/newsboard/internal/db_model"
	"github.com/shaibs3/newsboard/internal/listing"
	"github.com/shaibs3/newsboard/internal/store"
	"github.com/shaibs3/newsboard/internal/validate"
	"go.uber.org/zap"
)

// CommentHandler handles the top-level comments collection
type CommentHandler struct {
	DB      store.DbProvider
	checker *checker.Checker
	issuer  *auth.Issuer
}

func NewCommentHandler(dbProvider store.DbProvider, chk *checker.Checker, issuer *auth.Issuer) *CommentHandler {
	return &CommentHandler{DB: dbProvider, checker: chk, issuer: issuer}
}

// RegisterRoutes registers the routes for this handler
func (h *CommentHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.Handle("/api/comments", handle(logger, h.handleList)).Methods(http.MethodGet)
	router.Handle("/api/comments/{id}", handle(logger, h.handleGet)).Methods(http.MethodGet)
	router.Handle("/api/comments/{id}", protected(h.issuer, logger, h.handlePatch)).Methods(http.MethodPatch)
	router.Handle("/api/comments/{id}", protected(h.issuer, logger, h.handleDelete)).Methods(http.MethodDelete)
}

func (h *CommentHandler) handleList(w http.ResponseWriter, r *http.Request) error {
	params, err := listing.Parse(r.URL.Query(), listing.Comments)
	if err != nil {
		return err
	}
	comments, _, err := h.DB.ListComments(r.Context(), nil, params)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

func (h *CommentHandler) handleGet(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	comment, err := h.DB.GetComment(r.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"comment": comment})
}

func (h *CommentHandler) handlePatch(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	body, err := decodeBody(r, validate.CommentPatch)
	if err != nil {
		return err
	}
	username, err := actingAs(r, body, "username")
	if err != nil {
		return err
	}
	if err := h.checker.MustExist(r.Context(), "comments", "comment_id", id); err != nil {
		return err
	}

	var update db_model.CommentUpdate
	if update.Body, err = body.String("body"); err != nil {
		return err
	}
	if update.Body != nil {
		current, err := h.DB.GetComment(r.Context(), id)
		if err != nil {
			return err
		}
		if current.Author != username {
			return apperr.Forbidden()
		}
	}
	if update.IncVotes, err = body.Int("inc_votes"); err != nil {
		return err
	}

	comment, err := h.DB.UpdateComment(r.Context(), id, update)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"comment": comment})
}

func (h *CommentHandler) handleDelete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	username, err := identity(r)
	if err != nil {
		return err
	}
	if err := h.checker.MustExist(r.Context(), "comments", "comment_id", id); err != nil {
		return err
	}

	current, err := h.DB.GetComment(r.Context(), id)
	if err != nil {
		return err
	}
	if current.Author != username {
		return apperr.Unauthorized()
	}

	if err := h.DB.DeleteComment(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
