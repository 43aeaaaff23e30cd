package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"book-assistant/backend/internal/agent/deps"
	"book-assistant/backend/internal/agent/match"
	"book-assistant/backend/internal/agent/prompt"
	"book-assistant/backend/internal/agent/suggest"
	"book-assistant/backend/internal/apperr"
	"book-assistant/backend/internal/logger"
	"book-assistant/backend/internal/metrics"
	"book-assistant/backend/internal/model"

	"github.com/sirupsen/logrus"
)

// RecommendationCount is the number of books fetched on the canned path
const RecommendationCount = 3

var errEmptyUtterance = errors.New("empty utterance")

// Path identifies how a turn was answered.
type Path string

const (
	PathCanned     Path = "canned"
	PathGenerative Path = "generative"
	PathFallback   Path = "fallback"
)

// Reply is the outcome of one routed turn.
type Reply struct {
	Message     model.Message
	Suggestions []string
	Path        Path
}

// RouterConfig wires a Router. Generator and Recommender are required.
type RouterConfig struct {
	Generator   deps.Generator
	Recommender deps.Recommender
	Matcher     deps.TitleMatcher
	Vocabulary  *suggest.Vocabulary
	Prompts     *prompt.Builder
}

// Router answers a user utterance either with canned catalog
// recommendations or with a generated reply.
type Router struct {
	generator   deps.Generator
	recommender deps.Recommender
	matcher     deps.TitleMatcher
	vocabulary  suggest.Vocabulary
	prompts     *prompt.Builder
}

// NewRouter creates a Router. Missing optional parts get their defaults.
func NewRouter(cfg RouterConfig) *Router {
	r := &Router{
		generator:   cfg.Generator,
		recommender: cfg.Recommender,
		matcher:     cfg.Matcher,
		prompts:     cfg.Prompts,
	}
	if r.matcher == nil {
		r.matcher = match.Substring{}
	}
	if cfg.Vocabulary != nil {
		r.vocabulary = *cfg.Vocabulary
	} else {
		r.vocabulary = suggest.Default()
	}
	if r.prompts == nil {
		r.prompts = prompt.NewBuilder()
	}
	return r
}

// Vocabulary returns the vocabulary the router classifies with.
func (r *Router) Vocabulary() suggest.Vocabulary {
	return r.vocabulary
}

// Respond routes one utterance. It never fails: every error becomes the
// fallback apology message with an empty suggestion set.
func (r *Router) Respond(ctx context.Context, utterance string, catalog []model.Book) Reply {
	start := time.Now()
	log := logger.Component(ctx, "router")

	utterance = strings.TrimSpace(utterance)

	var reply Reply
	var err error
	switch {
	case utterance == "":
		err = errEmptyUtterance
	case r.vocabulary.IsRecommendationRequest(utterance):
		reply, err = r.recommend(ctx)
	default:
		reply, err = r.generate(ctx, utterance, catalog)
	}

	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"configuration": apperr.IsConfiguration(err),
			"upstream":      apperr.IsUpstream(err),
			"empty":         apperr.IsEmptyResponse(err),
			"utterance":     logger.Truncate(utterance, 80),
		}).Warn("turn failed, answering with fallback")
		reply = Reply{
			Message: model.NewTextMessage(prompt.FallbackMessage),
			Path:    PathFallback,
		}
	}

	metrics.ChatTurnsTotal.WithLabelValues(string(reply.Path)).Inc()
	log.WithFields(logrus.Fields{
		"path":     reply.Path,
		"type":     reply.Message.Type,
		"books":    len(reply.Message.Books),
		"duration": time.Since(start).String(),
	}).Info("turn answered")
	return reply
}

func (r *Router) recommend(ctx context.Context) (Reply, error) {
	if r.recommender == nil {
		return Reply{}, &apperr.ConfigurationError{Setting: "recommender", Reason: "not configured"}
	}

	books, err := r.recommender.Recommend(ctx, RecommendationCount)
	if err != nil {
		return Reply{}, err
	}
	if len(books) == 0 {
		return Reply{}, &apperr.EmptyResponseError{Service: "catalog"}
	}
	if len(books) > RecommendationCount {
		books = books[:RecommendationCount]
	}

	return Reply{
		Message:     model.NewBooksMessage(prompt.RecommendationHeading, books),
		Suggestions: r.vocabulary.Set(suggest.CategoryRecommendation),
		Path:        PathCanned,
	}, nil
}

func (r *Router) generate(ctx context.Context, utterance string, catalog []model.Book) (Reply, error) {
	if r.generator == nil {
		return Reply{}, &apperr.ConfigurationError{Setting: "generator", Reason: "not configured"}
	}

	bookContext := r.prompts.BuildCatalogContext(model.Titles(catalog))
	text, err := r.generator.Generate(ctx, []string{bookContext}, utterance)
	if err != nil {
		return Reply{}, err
	}

	suggestions := r.vocabulary.Set(r.vocabulary.Classify(utterance))

	if found := r.matcher.Match(text, catalog); len(found) > 0 {
		logger.Component(ctx, "router").WithField("books", len(found)).Debug("reply mentions catalog books")
		return Reply{
			Message:     model.NewBooksMessage(text, found),
			Suggestions: suggestions,
			Path:        PathGenerative,
		}, nil
	}

	return Reply{
		Message:     model.NewTextMessage(text),
		Suggestions: suggestions,
		Path:        PathGenerative,
	}, nil
}
