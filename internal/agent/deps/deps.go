package deps

import (
	"context"

	"book-assistant/backend/internal/model"
)

// Generator abstracts a stateless text-generation call. contextParts are sent
// ahead of userText in a single request.
type Generator interface {
	Generate(ctx context.Context, contextParts []string, userText string) (string, error)
}

// Recommender abstracts the catalog recommendation endpoint
type Recommender interface {
	Recommend(ctx context.Context, n int) ([]model.Book, error)
}

// TitleMatcher resolves the catalog books mentioned in a reply.
type TitleMatcher interface {
	Match(reply string, catalog []model.Book) []model.Book
}
