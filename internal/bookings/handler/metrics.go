package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	httputil "stayhub/pkg/http"
	"stayhub/pkg/logger"
	"stayhub/pkg/metrics"
)

// MetricsHandler exposes the counter registry as JSON for scraping.
type MetricsHandler struct {
	registry *metrics.Registry
	log      *logger.Logger
}

func NewMetricsHandler(registry *metrics.Registry, log *logger.Logger) *MetricsHandler {
	return &MetricsHandler{
		registry: registry,
		log:      log,
	}
}

func (h *MetricsHandler) Metrics(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, h.registry.Snapshot()); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Metrics", "error", err)
	}
}

func (h *MetricsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/metrics", h.Metrics)
}
