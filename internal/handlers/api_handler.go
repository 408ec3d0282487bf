package handlers

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

//go:embed data/endpoints.json
var endpointsJSON []byte

// APIHandler serves the endpoint descriptor
type APIHandler struct {
	endpoints json.RawMessage
}

func NewAPIHandler() *APIHandler {
	return &APIHandler{endpoints: endpointsJSON}
}

// RegisterRoutes registers the routes for this handler
func (h *APIHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.Handle("/api", handle(logger, h.handleGetAPI)).Methods(http.MethodGet)
}

func (h *APIHandler) handleGetAPI(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, h.endpoints)
}
