package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type SummarizeRequest struct {
	Text string `json:"text" binding:"required"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// HandleSummarize writes a short Indonesian summary of free text about a book.
func (h *Handler) HandleSummarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: text is required")
		return
	}

	summary, err := h.summarizer.Summarize(c.Request.Context(), req.Text)
	if err != nil {
		respondUpstreamError(c, err, "Failed to generate summary: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, SummarizeResponse{Summary: summary})
}
