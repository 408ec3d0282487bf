package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shaibs3/newsboard/internal/apperr"
	"github.com/shaibs3/newsboard/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Handler is implemented by every resource controller
type Handler interface {
	RegisterRoutes(router *mux.Router, logger *zap.Logger)
}

// Router wires controllers and global middleware onto a gorilla mux router
type Router struct {
	mux     *mux.Router
	logger  *zap.Logger
	limiter *rate.Limiter
	metrics *httpMetrics
}

// NewRouter builds the HTTP surface. limiter and tel may be nil.
func NewRouter(limiter *rate.Limiter, tel *telemetry.Telemetry, logger *zap.Logger, handlers []Handler) *Router {
	routerLogger := logger.Named("router")
	r := &Router{
		mux:     mux.NewRouter(),
		logger:  routerLogger,
		limiter: limiter,
	}

	if tel != nil {
		metrics, err := newHTTPMetrics(tel.Meter)
		if err != nil {
			routerLogger.Error("failed to create http metrics", zap.Error(err))
		} else {
			r.metrics = metrics
		}
		r.mux.Handle("/metrics", tel.Handler()).Methods(http.MethodGet)
	}

	r.mux.Use(r.requestIDMiddleware, r.loggingMiddleware, r.metricsMiddleware, r.rateLimitMiddleware)
	r.mux.HandleFunc("/healthz", r.handleHealth).Methods(http.MethodGet)

	for _, h := range handlers {
		h.RegisterRoutes(r.mux, logger)
	}

	r.mux.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		apperr.Write(w, apperr.NotFound(apperr.MsgPathNotFound), routerLogger)
	})
	r.mux.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		apperr.Write(w, &apperr.Error{Status: http.StatusMethodNotAllowed, Message: apperr.MsgMethodNotAllowed}, routerLogger)
	})

	return r
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// CreateServer returns an http.Server serving this router on addr
func (r *Router) CreateServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
