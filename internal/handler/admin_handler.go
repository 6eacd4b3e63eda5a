package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/avaluos-co/service-quote/internal/application"
	"github.com/avaluos-co/service-quote/internal/common/auth"
	"github.com/avaluos-co/service-quote/internal/common/middleware"
	"github.com/avaluos-co/service-quote/internal/common/response"
)

// AdminQuoteHandler handles admin HTTP requests for the quote ledger.
type AdminQuoteHandler struct {
	service *application.QuoteService
}

// NewAdminQuoteHandler creates a new AdminQuoteHandler.
func NewAdminQuoteHandler(service *application.QuoteService) *AdminQuoteHandler {
	return &AdminQuoteHandler{service: service}
}

// RegisterRoutes registers admin quote routes. Appraisers may browse quotes;
// only admins see ledger stats.
func (h *AdminQuoteHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW)
	{
		admin.GET("/quotes", middleware.RequireRole(auth.RoleAdmin, auth.RoleAppraiser), h.ListQuotes)
		admin.GET("/stats/quotes", middleware.RequireRole(auth.RoleAdmin), h.QuoteStats)
	}
}

// ListQuotes handles GET /api/v1/admin/quotes.
func (h *AdminQuoteHandler) ListQuotes(c *gin.Context) {
	page, limit := pagination(c)

	quotes, total, err := h.service.ListAllQuotes(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, quotes, total, page, limit)
}

// QuoteStats handles GET /api/v1/admin/stats/quotes.
func (h *AdminQuoteHandler) QuoteStats(c *gin.Context) {
	stats, err := h.service.GetQuoteStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
