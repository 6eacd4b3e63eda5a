package handler

import (
	"github.com/avaluos-co/service-quote/internal/application"
	"github.com/avaluos-co/service-quote/internal/common/response"
	"github.com/gin-gonic/gin"
)

// QuoteHandler handles HTTP requests for estimates, sessions and quotes.
type QuoteHandler struct {
	service *application.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(service *application.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// RegisterRoutes registers all quote routes on the given router group.
func (h *QuoteHandler) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api/v1")
	api.GET("/estimate", h.Estimate)
	api.GET("/quotes/:number", h.GetQuote)

	sessions := api.Group("/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.PATCH("/:id", h.UpdateProperty)
		sessions.POST("/:id/quotes", h.IssueQuote)
		sessions.GET("/:id/quotes", h.ListSessionQuotes)
	}
}

// Estimate handles GET /api/v1/estimate.
func (h *QuoteHandler) Estimate(c *gin.Context) {
	var req application.EstimateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Estimate(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateSession handles POST /api/v1/sessions. An empty body uses the defaults.
func (h *QuoteHandler) CreateSession(c *gin.Context) {
	var req *application.PropertyRequest
	if c.Request.ContentLength != 0 {
		req = &application.PropertyRequest{}
		if err := c.ShouldBindJSON(req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetSession handles GET /api/v1/sessions/:id.
func (h *QuoteHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateProperty handles PATCH /api/v1/sessions/:id.
func (h *QuoteHandler) UpdateProperty(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req application.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateProperty(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// IssueQuote handles POST /api/v1/sessions/:id/quotes.
func (h *QuoteHandler) IssueQuote(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.IssueQuote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListSessionQuotes handles GET /api/v1/sessions/:id/quotes.
func (h *QuoteHandler) ListSessionQuotes(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.GetSessionQuotes(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetQuote handles GET /api/v1/quotes/:number.
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	result, err := h.service.GetQuote(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
