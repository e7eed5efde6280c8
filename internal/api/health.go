package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/csprime/csprime/internal/catalog"
)

// HealthHandler handles the service health endpoint.
type HealthHandler struct {
	catalog *catalog.Catalog
	chatOn  bool
}

// NewHealthHandler creates a health handler. chatEnabled reports whether
// an inference backend was configured at startup.
func NewHealthHandler(c *catalog.Catalog, chatEnabled bool) *HealthHandler {
	return &HealthHandler{catalog: c, chatOn: chatEnabled}
}

// Health reports service status. The catalog is validated at startup, so a
// running process is healthy; the response surfaces whether chat is live.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"api":     "ok",
		"catalog": "ok",
		"chat":    "ok",
	}
	if !h.chatOn {
		checks["chat"] = "disabled"
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"modules": len(h.catalog.Modules()),
		"checks":  checks,
	})
}

// RegisterHealth registers the health route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
