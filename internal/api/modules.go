package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/csprime/csprime/internal/catalog"
	"github.com/csprime/csprime/internal/domain"
)

// CatalogHandler serves the static curriculum data: modules, topic
// connections and analytics aggregates.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// RegisterRoutes registers the catalog routes.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/modules", h.ListModules)
		r.Get("/modules/{code}", h.GetModule)
		r.Get("/topics", h.ListTopics)
		r.Get("/analytics", h.Analytics)
	})
}

// ListModules returns modules filtered by the optional keyword, year and
// semester query parameters.
func (h *CatalogHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.Filter{
		Keyword:  q.Get("keyword"),
		Semester: q.Get("semester"),
	}
	if year := q.Get("year"); year != "" {
		n, err := strconv.Atoi(year)
		if err != nil {
			Error(w, http.StatusBadRequest, "year must be an integer")
			return
		}
		filter.Year = n
	}
	modules := h.catalog.FilterModules(filter)
	if modules == nil {
		modules = []domain.Module{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"modules": modules,
		"total":   len(modules),
	})
}

// GetModule returns one module with its topic relations. Lookup by code is
// case-insensitive.
func (h *CatalogHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	module, ok := h.catalog.Get(code)
	if !ok {
		Error(w, http.StatusNotFound, "module not found")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"module": module,
		"topics": h.catalog.Relations(module.Code),
	})
}

// ListTopics returns the distinct topics and their connected module groups.
func (h *CatalogHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"topics": h.catalog.Topics(),
		"groups": h.catalog.TopicModules(),
	})
}

// Analytics returns aggregate statistics over the module dataset.
func (h *CatalogHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.catalog.Summarise())
}
