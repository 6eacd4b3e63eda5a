package handler

import (
	"github.com/avaluos-co/service-quote/internal/application"
	"github.com/avaluos-co/service-quote/internal/common/response"
	"github.com/avaluos-co/service-quote/internal/domain/catalog"
	"github.com/avaluos-co/service-quote/internal/live"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the service catalog and its live search channel.
type CatalogHandler struct {
	service *application.CatalogService
	live    *live.Server
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *application.CatalogService, liveServer *live.Server) *CatalogHandler {
	return &CatalogHandler{service: service, live: liveServer}
}

// RegisterRoutes registers catalog routes.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	cat := r.Group("/api/v1/catalog")
	{
		cat.GET("/services", h.ListServices)
		cat.GET("/facets", h.Facets)
		cat.GET("/live", h.Live)
	}
}

// ListServices handles GET /api/v1/catalog/services.
// Query: search, price_range, category (repeatable), type (repeatable).
func (h *CatalogHandler) ListServices(c *gin.Context) {
	f := catalog.Filter{
		Search:     c.Query("search"),
		PriceRange: c.Query("price_range"),
		Categories: c.QueryArray("category"),
		Types:      c.QueryArray("type"),
	}
	response.Success(c, h.service.Search(f))
}

// Facets handles GET /api/v1/catalog/facets.
func (h *CatalogHandler) Facets(c *gin.Context) {
	response.Success(c, h.service.Facets())
}

// Live handles GET /api/v1/catalog/live (WebSocket upgrade).
func (h *CatalogHandler) Live(c *gin.Context) {
	h.live.ServeHTTP(c.Writer, c.Request)
}
