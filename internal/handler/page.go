package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"book-assistant/backend/internal/logger"
	"book-assistant/backend/internal/view"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/unicode/norm"
)

// HandleIndex sends the landing page to the chat, which starts a session.
func (h *Handler) HandleIndex(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/chat")
}

// HandleNewChatPage starts a session and redirects to its page.
func (h *Handler) HandleNewChatPage(c *gin.Context) {
	sess, err := h.newSession(c.Request.Context())
	if err != nil {
		c.String(http.StatusServiceUnavailable, "Too many active chat sessions. Please try again later.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/chat/"+sess.ID())
}

// HandleChatPage renders the conversation as HTML.
func (h *Handler) HandleChatPage(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "Chat session not found")
		return
	}
	c.HTML(http.StatusOK, view.TemplateName, h.view.Page(sess.State()))
}

// HandlePostChatPage starts a turn from the form and redirects back to the
// page, which shows the composing indicator until the reply lands.
func (h *Handler) HandlePostChatPage(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "Chat session not found")
		return
	}

	message := strings.TrimSpace(norm.NFC.String(c.PostForm("message")))
	if utf8.RuneCountInString(message) > MaxMessageLength {
		c.String(http.StatusBadRequest, "Message is too long (max 250 characters)")
		return
	}

	// An empty message or a turn already in flight just re-shows the page.
	if _, err := sess.Start(c.Request.Context(), h.responder, message); err != nil {
		logger.Component(c.Request.Context(), "http").WithError(err).Debug("turn not started")
	}
	c.Redirect(http.StatusSeeOther, "/chat/"+sess.ID())
}
