package model

// Book is a catalog entry as returned by the catalog API.
type Book struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Image     string `json:"image"`
	CanBorrow bool   `json:"canBorrow"`
}

// Titles returns the titles of books in order.
func Titles(books []Book) []string {
	titles := make([]string, 0, len(books))
	for _, b := range books {
		titles = append(titles, b.Title)
	}
	return titles
}
