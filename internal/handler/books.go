package handler

import (
	"net/http"
	"strconv"

	"book-assistant/backend/internal/agent"
	"book-assistant/backend/internal/catalog"

	"github.com/gin-gonic/gin"
)

const (
	MaxListLimit      = 100
	MaxRecommendCount = 20
)

// HandleGetBooks proxies a filtered catalog listing.
func (h *Handler) HandleGetBooks(c *gin.Context) {
	filter := catalog.Filter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}

	if raw := c.Query("canBorrow"); raw != "" {
		canBorrow, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "canBorrow must be true or false")
			return
		}
		filter.CanBorrow = &canBorrow
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxListLimit {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be between 1 and 100")
			return
		}
		filter.Limit = limit
	}

	books, err := h.books.ListBooks(c.Request.Context(), filter)
	if err != nil {
		respondUpstreamError(c, err, "Failed to load books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// HandleGetRecommendation proxies the catalog's recommendation endpoint.
func (h *Handler) HandleGetRecommendation(c *gin.Context) {
	count := agent.RecommendationCount
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxRecommendCount {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "count must be between 1 and 20")
			return
		}
		count = n
	}

	books, err := h.books.Recommend(c.Request.Context(), count)
	if err != nil {
		respondUpstreamError(c, err, "Failed to load recommendations")
		return
	}
	c.JSON(http.StatusOK, books)
}
