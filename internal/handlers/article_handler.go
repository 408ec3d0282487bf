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

// ArticleHandler handles articles and the comments nested under them
type ArticleHandler struct {
	DB      store.DbProvider
	checker *checker.Checker
	issuer  *auth.Issuer
}

func NewArticleHandler(dbProvider store.DbProvider, chk *checker.Checker, issuer *auth.Issuer) *ArticleHandler {
	return &ArticleHandler{DB: dbProvider, checker: chk, issuer: issuer}
}

// RegisterRoutes registers the routes for this handler
func (h *ArticleHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.Handle("/api/articles", handle(logger, h.handleList)).Methods(http.MethodGet)
	router.Handle("/api/articles", protected(h.issuer, logger, h.handleCreate)).Methods(http.MethodPost)
	router.Handle("/api/articles/{id}", handle(logger, h.handleGet)).Methods(http.MethodGet)
	router.Handle("/api/articles/{id}", protected(h.issuer, logger, h.handlePatch)).Methods(http.MethodPatch)
	router.Handle("/api/articles/{id}", protected(h.issuer, logger, h.handleDelete)).Methods(http.MethodDelete)
	router.Handle("/api/articles/{id}/comments", handle(logger, h.handleListComments)).Methods(http.MethodGet)
	router.Handle("/api/articles/{id}/comments", protected(h.issuer, logger, h.handleCreateComment)).Methods(http.MethodPost)
}

// handleList serves a page of articles. An unknown topic is a 404 while a
// known topic without articles is an empty page; a search that matches
// nothing is a 404.
func (h *ArticleHandler) handleList(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()
	params, err := listing.Parse(query, listing.Articles)
	if err != nil {
		return err
	}

	filter := db_model.ArticleFilter{Topic: query.Get("topic"), Search: query.Get("search")}
	if filter.Topic != "" {
		if err := h.checker.MustExist(r.Context(), "topics", "slug", filter.Topic); err != nil {
			return err
		}
	}

	articles, total, err := h.DB.ListArticles(r.Context(), filter, params)
	if err != nil {
		return err
	}
	if filter.Search != "" && total == 0 {
		return apperr.NotFound(apperr.MsgNotFound)
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"articles": articles})
}

func (h *ArticleHandler) handleGet(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	article, err := h.DB.GetArticle(r.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"article": article})
}

func (h *ArticleHandler) handleCreate(w http.ResponseWriter, r *http.Request) error {
	body, err := decodeBody(r, validate.ArticleCreate)
	if err != nil {
		return err
	}
	author, err := actingAs(r, body, "author")
	if err != nil {
		return err
	}

	fields := make(map[string]string, 3)
	for _, key := range []string{"title", "body", "topic"} {
		if fields[key], err = body.RequiredString(key); err != nil {
			return err
		}
	}

	if err := h.checker.MustReference(r.Context(), "topics", "slug", fields["topic"],
		apperr.Validation(apperr.MsgForeignKey)); err != nil {
		return err
	}

	article, err := h.DB.CreateArticle(r.Context(), db_model.NewArticle{
		Author: author,
		Title:  fields["title"],
		Body:   fields["body"],
		Topic:  fields["topic"],
	})
	if err != nil {
		return err
	}
	zero := 0
	article.CommentCount = &zero
	return writeJSON(w, http.StatusCreated, map[string]interface{}{"article": article})
}

// handlePatch applies a vote delta and/or a new body. Anyone may vote; only
// the author may replace the body.
func (h *ArticleHandler) handlePatch(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	body, err := decodeBody(r, validate.ArticlePatch)
	if err != nil {
		return err
	}
	username, err := actingAs(r, body, "username")
	if err != nil {
		return err
	}
	if err := h.checker.MustExist(r.Context(), "articles", "article_id", id); err != nil {
		return err
	}

	var update db_model.ArticleUpdate
	if update.Body, err = body.String("body"); err != nil {
		return err
	}
	if update.Body != nil {
		current, err := h.DB.GetArticle(r.Context(), id)
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

	article, err := h.DB.UpdateArticle(r.Context(), id, update)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"article": article})
}

func (h *ArticleHandler) handleDelete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	username, err := identity(r)
	if err != nil {
		return err
	}
	if err := h.checker.MustExist(r.Context(), "articles", "article_id", id); err != nil {
		return err
	}

	current, err := h.DB.GetArticle(r.Context(), id)
	if err != nil {
		return err
	}
	if current.Author != username {
		return apperr.Unauthorized()
	}

	if err := h.DB.DeleteArticle(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *ArticleHandler) handleListComments(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	params, err := listing.Parse(r.URL.Query(), listing.Comments)
	if err != nil {
		return err
	}
	if err := h.checker.MustExist(r.Context(), "articles", "article_id", id); err != nil {
		return err
	}

	comments, _, err := h.DB.ListComments(r.Context(), &id, params)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

func (h *ArticleHandler) handleCreateComment(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	body, err := decodeBody(r, validate.CommentCreate)
	if err != nil {
		return err
	}
	username, err := actingAs(r, body, "username")
	if err != nil {
		return err
	}
	text, err := body.RequiredString("body")
	if err != nil {
		return err
	}
	if err := h.checker.MustExist(r.Context(), "articles", "article_id", id); err != nil {
		return err
	}

	comment, err := h.DB.CreateComment(r.Context(), db_model.NewComment{
		ArticleID: id,
		Author:    username,
		Body:      text,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, map[string]interface{}{"comment": comment})
}
