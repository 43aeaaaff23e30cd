package catalog

import (
	"strings"

	"book-assistant/backend/internal/model"
)

// Snapshot is the catalog as loaded at session start. Book IDs are unique.
type Snapshot struct {
	books []model.Book
	byID  map[string]int
}

// NewSnapshot copies books, keeping the first occurrence of a repeated ID.
func NewSnapshot(books []model.Book) *Snapshot {
	s := &Snapshot{
		books: make([]model.Book, 0, len(books)),
		byID:  make(map[string]int, len(books)),
	}
	for _, b := range books {
		if _, dup := s.byID[b.ID]; dup {
			continue
		}
		s.byID[b.ID] = len(s.books)
		s.books = append(s.books, b)
	}
	return s
}

// Books returns a copy of the snapshot in catalog order.
func (s *Snapshot) Books() []model.Book {
	if s == nil {
		return nil
	}
	out := make([]model.Book, len(s.books))
	copy(out, s.books)
	return out
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.books)
}

// ByID finds a book by its ID.
func (s *Snapshot) ByID(id string) (model.Book, bool) {
	if s == nil {
		return model.Book{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return model.Book{}, false
	}
	return s.books[i], true
}

// Search finds books whose title, author or category contains query.
func (s *Snapshot) Search(query string) []model.Book {
	if s == nil {
		return nil
	}
	lowerQuery := strings.ToLower(query)
	var results []model.Book
	for _, b := range s.books {
		if strings.Contains(strings.ToLower(b.Title), lowerQuery) ||
			strings.Contains(strings.ToLower(b.Author), lowerQuery) ||
			strings.Contains(strings.ToLower(b.Category), lowerQuery) {
			results = append(results, b)
		}
	}
	return results
}
