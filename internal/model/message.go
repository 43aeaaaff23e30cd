package model

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Kind string

const (
	KindText  Kind = "text"
	KindBooks Kind = "books"
)

// Message is one entry of a conversation log. Messages are never mutated
// after they are appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Type    Kind   `json:"type,omitempty"`
	Books   []Book `json:"books,omitempty"`
}

// NewUserMessage creates the message for a user utterance.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewTextMessage creates a plain assistant reply.
func NewTextMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Type: KindText}
}

// NewBooksMessage creates an assistant reply with attached books. A reply
// without books is a text message.
func NewBooksMessage(content string, books []Book) Message {
	if len(books) == 0 {
		return NewTextMessage(content)
	}
	attached := make([]Book, len(books))
	copy(attached, books)
	return Message{Role: RoleAssistant, Content: content, Type: KindBooks, Books: attached}
}

// HasBooks reports whether the message should be rendered with book cards.
func (m Message) HasBooks() bool {
	return m.Type == KindBooks && len(m.Books) > 0
}
