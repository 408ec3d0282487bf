package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shaibs3/newsboard/internal/apperr"
	"github.com/shaibs3/newsboard/internal/checker"
	"github.com/shaibs3/newsboard/internal/db_model"
	"github.com/shaibs3/newsboard/internal/store"
	"github.com/shaibs3/newsboard/internal/validate"
	"go.uber.org/zap"
)

// TopicHandler handles the topics collection
type TopicHandler struct {
	DB      store.DbProvider
	checker *checker.Checker
}

func NewTopicHandler(dbProvider store.DbProvider, chk *checker.Checker) *TopicHandler {
	return &TopicHandler{DB: dbProvider, checker: chk}
}

// RegisterRoutes registers the routes for this handler
func (h *TopicHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.Handle("/api/topics", handle(logger, h.handleList)).Methods(http.MethodGet)
	router.Handle("/api/topics", handle(logger, h.handleCreate)).Methods(http.MethodPost)
}

func (h *TopicHandler) handleList(w http.ResponseWriter, r *http.Request) error {
	topics, err := h.DB.ListTopics(r.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{"topics": topics})
}

func (h *TopicHandler) handleCreate(w http.ResponseWriter, r *http.Request) error {
	body, err := decodeBody(r, validate.TopicCreate)
	if err != nil {
		return err
	}
	slug, err := body.RequiredString("slug")
	if err != nil {
		return err
	}
	description, err := body.RequiredString("description")
	if err != nil {
		return err
	}

	taken, err := h.checker.Exists(r.Context(), "topics", "slug", slug)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict(apperr.MsgTopicExists)
	}

	topic, err := h.DB.CreateTopic(r.Context(), db_model.Topic{Slug: slug, Description: description})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, topic)
}
