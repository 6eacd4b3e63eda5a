package handler

import (
	"net/http"

	"github.com/avaluos-co/service-quote/internal/application"
	"github.com/avaluos-co/service-quote/internal/common/response"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/gin-gonic/gin"
)

// MapHandler handles the map picker: configuration, geocoding and location picks.
type MapHandler struct {
	picker *application.PickerService
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(picker *application.PickerService) *MapHandler {
	return &MapHandler{picker: picker}
}

// LocationRequest is a map click.
type LocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// RegisterRoutes registers map routes.
func (h *MapHandler) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api/v1")
	api.GET("/map/config", h.MapConfig)
	api.GET("/geocode", h.Geocode)

	sessions := api.Group("/sessions")
	{
		sessions.POST("/:id/location", h.SelectLocation)
		sessions.POST("/:id/search", h.SearchAndSelect)
		sessions.GET("/:id/map", h.MapLayers)
	}
}

// MapConfig handles GET /api/v1/map/config.
func (h *MapHandler) MapConfig(c *gin.Context) {
	response.Success(c, h.picker.MapConfig())
}

// Geocode handles GET /api/v1/geocode?q=.
func (h *MapHandler) Geocode(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.BadRequest(c, "query parameter q is required")
		return
	}

	places, err := h.picker.Geocode(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, places)
}

// SelectLocation handles POST /api/v1/sessions/:id/location.
func (h *MapHandler) SelectLocation(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.picker.SelectLocation(c.Request.Context(), id, quoteDomain.Location{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.RouteStatus == quoteDomain.RoutePending.String() {
		response.Accepted(c, result)
		return
	}
	response.Success(c, result)
}

// SearchAndSelect handles POST /api/v1/sessions/:id/search.
func (h *MapHandler) SearchAndSelect(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req application.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.picker.SearchAndSelect(c.Request.Context(), id, req.Query)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Session.RouteStatus == quoteDomain.RoutePending.String() {
		response.Accepted(c, result)
		return
	}
	response.Success(c, result)
}

// MapLayers handles GET /api/v1/sessions/:id/map. The body is a bare GeoJSON
// FeatureCollection so map libraries can load it directly.
func (h *MapHandler) MapLayers(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	fc, err := h.picker.MapLayers(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	body, err := fc.MarshalJSON()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}
