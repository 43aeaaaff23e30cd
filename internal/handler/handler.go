package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"book-assistant/backend/internal/apperr"
	"book-assistant/backend/internal/catalog"
	"book-assistant/backend/internal/conversation"
	"book-assistant/backend/internal/logger"
	"book-assistant/backend/internal/model"
	"book-assistant/backend/internal/view"

	"github.com/gin-gonic/gin"
)

// BookSource is the part of the catalog client the handlers use.
type BookSource interface {
	ListBooks(ctx context.Context, filter catalog.Filter) ([]model.Book, error)
	Recommend(ctx context.Context, n int) ([]model.Book, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Config wires a Handler. Ready reports whether the generative backend is
// configured; a nil Ready counts as ready.
type Config struct {
	Books      BookSource
	Responder  conversation.Responder
	Summarizer Summarizer
	Sessions   *conversation.Store
	View       *view.Renderer
	Ready      func() bool
}

type Handler struct {
	books      BookSource
	responder  conversation.Responder
	summarizer Summarizer
	sessions   *conversation.Store
	view       *view.Renderer
	ready      func() bool
}

func New(cfg Config) *Handler {
	ready := cfg.Ready
	if ready == nil {
		ready = func() bool { return true }
	}
	return &Handler{
		books:      cfg.Books,
		responder:  cfg.Responder,
		summarizer: cfg.Summarizer,
		sessions:   cfg.Sessions,
		view:       cfg.View,
		ready:      ready,
	}
}

// Register mounts every route on r. chatLimit guards the endpoints that
// reach the generative API.
func (h *Handler) Register(r *gin.Engine, chatLimit gin.HandlerFunc) {
	if chatLimit == nil {
		chatLimit = func(c *gin.Context) { c.Next() }
	}

	r.GET("/health", h.HandleHealth)
	r.GET("/ready", h.HandleReadiness)

	api := r.Group("/api")
	{
		api.GET("/books", h.HandleGetBooks)
		api.GET("/books/recommendation", h.HandleGetRecommendation)
		api.POST("/chat/sessions", chatLimit, h.HandleCreateSession)
		api.GET("/chat/sessions/:id", h.HandleGetSession)
		api.GET("/chat/sessions/:id/books", h.HandleSearchSessionBooks)
		api.GET("/chat/sessions/:id/books/:bookId", h.HandleGetSessionBook)
		api.POST("/chat", chatLimit, h.HandleChat)
		api.POST("/summarize", chatLimit, h.HandleSummarize)
	}

	if h.view != nil {
		r.SetHTMLTemplate(h.view.Template())
		r.GET("/", h.HandleIndex)
		r.GET("/chat", chatLimit, h.HandleNewChatPage)
		r.GET("/chat/:id", h.HandleChatPage)
		r.POST("/chat/:id", chatLimit, h.HandlePostChatPage)
	}

	r.NoRoute(h.HandleNotFound)
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": message,
		"code":  code,
	})
}

// HandleNotFound answers unknown routes without creating a session.
func (h *Handler) HandleNotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api") {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}
	c.String(http.StatusNotFound, "Page not found")
}

// respondUpstreamError maps a failed upstream call to a response.
func respondUpstreamError(c *gin.Context, err error, message string) {
	logger.Component(c.Request.Context(), "http").WithError(err).Warn(message)

	switch {
	case apperr.IsConfiguration(err):
		respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message)
	case apperr.IsRateLimited(err):
		respondError(c, http.StatusTooManyRequests, "RATE_LIMITED", message)
	case apperr.IsUpstream(err), apperr.IsEmptyResponse(err):
		respondError(c, http.StatusBadGateway, "UPSTREAM_ERROR", message)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "TIMEOUT", message)
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", message)
	}
}

// newSession creates a session over a fresh catalog snapshot. A catalog
// failure is logged and yields an empty catalog.
func (h *Handler) newSession(ctx context.Context) (*conversation.Session, error) {
	var books []model.Book
	if h.books != nil {
		var err error
		books, err = h.books.ListBooks(ctx, catalog.Filter{})
		if err != nil {
			logger.Component(ctx, "session").WithError(err).Warn("failed to load catalog, starting with an empty one")
		}
	}
	sess, err := h.sessions.Create(catalog.NewSnapshot(books))
	if err != nil {
		logger.Component(ctx, "session").WithError(err).Warn("session not created")
		return nil, err
	}
	logger.Component(ctx, "session").WithField("session_id", sess.ID()).WithField("books", sess.Catalog().Len()).Info("session created")
	return sess, nil
}
