// Package admin exposes the reference-data inspection endpoints.
package admin

import (
	"net/http"
	"strings"

	"calorie-chat/internal/core/match"
	"calorie-chat/internal/core/missing"
	"calorie-chat/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Handler serves country and missing-dish inspection routes
type Handler struct {
	search  *match.Engine
	missing *missing.Log
}

// NewHandler creates the admin handler
func NewHandler(search *match.Engine, missingLog *missing.Log) *Handler {
	return &Handler{
		search:  search,
		missing: missingLog,
	}
}

// HandleListCountries returns the supported countries with dish counts
func (h *Handler) HandleListCountries(c *gin.Context) {
	counts := h.search.DishCountByCountry()

	countries := make([]common.CountryInfo, len(common.SupportedCountries))
	copy(countries, common.SupportedCountries)
	for i := range countries {
		countries[i].DishCount = counts[countries[i].Code]
	}

	c.JSON(http.StatusOK, countries)
}

// HandleGetCountry returns one country by code
func (h *Handler) HandleGetCountry(c *gin.Context) {
	code := strings.ToLower(c.Param("code"))
	for _, country := range common.SupportedCountries {
		if country.Code == code {
			country.DishCount = h.search.DishCountByCountry()[code]
			c.JSON(http.StatusOK, country)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Country not found"})
}

// HandleMissingDishes returns the unresolved missing-dish entries
func (h *Handler) HandleMissingDishes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"missing_dishes": h.missing.Unresolved(),
	})
}

// ResolveRequest is the body of POST /missing-dishes/resolve
type ResolveRequest struct {
	Query   string `json:"query" binding:"required"`
	Country string `json:"country"`
}

// HandleResolveMissingDish marks a logged query as resolved
func (h *Handler) HandleResolveMissingDish(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	h.missing.MarkResolved(req.Query, req.Country)
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}
