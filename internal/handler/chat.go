package handler

import (
	"errors"
	"net/http"
	"strings"

	"book-assistant/backend/internal/conversation"
	"book-assistant/backend/internal/logger"
	"book-assistant/backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

// MaxMessageLength is the maximum allowed message length in characters.
const MaxMessageLength = 250

type ChatRequest struct {
	Message   string `json:"message" binding:"required,max=250"`
	SessionID string `json:"sessionId,omitempty"`
}

type ChatResponse struct {
	SessionID   string        `json:"sessionId"`
	Message     model.Message `json:"message"`
	Suggestions []string      `json:"suggestions"`
}

type SessionResponse struct {
	SessionID   string          `json:"sessionId"`
	Messages    []model.Message `json:"messages"`
	Suggestions []string        `json:"suggestions"`
	// Examples is true while the conversation is empty and Suggestions
	// holds the example questions.
	Examples bool `json:"examples"`
	Pending  bool `json:"pending"`
}

// HandleChat answers one utterance. A missing sessionId starts a new
// session.
func (h *Handler) HandleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// Normalize Unicode to NFC so lookalike sequences compare equal.
	message := strings.TrimSpace(norm.NFC.String(req.Message))
	if message == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: message is required")
		return
	}

	ctx := c.Request.Context()
	var sess *conversation.Session
	if req.SessionID != "" {
		var err error
		if sess, err = h.sessions.Get(req.SessionID); err != nil {
			respondError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Chat session not found")
			return
		}
	} else {
		var err error
		if sess, err = h.newSession(ctx); err != nil {
			respondSessionLimit(c)
			return
		}
	}

	reply, err := sess.Submit(ctx, h.responder, message)
	switch {
	case errors.Is(err, conversation.ErrBusy):
		respondError(c, http.StatusConflict, "BUSY", "A reply is still being composed for this session")
		return
	case errors.Is(err, conversation.ErrEmptyUtterance):
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: message is required")
		return
	case err != nil:
		logger.Component(ctx, "http").WithError(err).Error("chat turn failed")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate response. Please try again.")
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		SessionID:   sess.ID(),
		Message:     reply.Message,
		Suggestions: nonNil(reply.Suggestions),
	})
}

// HandleCreateSession starts an empty session and returns its state.
func (h *Handler) HandleCreateSession(c *gin.Context) {
	sess, err := h.newSession(c.Request.Context())
	if err != nil {
		respondSessionLimit(c)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse(sess.State()))
}

func (h *Handler) HandleGetSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Chat session not found")
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess.State()))
}

// HandleSearchSessionBooks searches the catalog snapshot of a session by
// title, author or category. An empty q lists the whole snapshot.
func (h *Handler) HandleSearchSessionBooks(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Chat session not found")
		return
	}

	var books []model.Book
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		books = sess.Catalog().Search(q)
	} else {
		books = sess.Catalog().Books()
	}
	if books == nil {
		books = []model.Book{}
	}
	c.JSON(http.StatusOK, books)
}

// HandleGetSessionBook returns one book from the catalog snapshot of a
// session, the same data its book cards link to.
func (h *Handler) HandleGetSessionBook(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Chat session not found")
		return
	}

	book, ok := sess.Catalog().ByID(c.Param("bookId"))
	if !ok {
		respondError(c, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
		return
	}
	c.JSON(http.StatusOK, book)
}

func respondSessionLimit(c *gin.Context) {
	respondError(c, http.StatusServiceUnavailable, "SESSION_LIMIT", "Too many active chat sessions. Please try again later.")
}

func sessionResponse(state conversation.State) SessionResponse {
	return SessionResponse{
		SessionID:   state.ID,
		Messages:    state.Messages,
		Suggestions: nonNil(state.Chips),
		Examples:    state.Examples,
		Pending:     state.Pending,
	}
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "max" {
				respondError(c, http.StatusBadRequest, "MESSAGE_TOO_LONG", "Message is too long (max 250 characters)")
				return
			}
		}
	}
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: message is required")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
