// Package view renders a chat session as a server-side HTML page.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"book-assistant/backend/internal/conversation"
	"book-assistant/backend/internal/model"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// TemplateName is the name under which the chat page is registered.
const TemplateName = "chat.html"

const (
	DefaultDetailBase = "/collections/book"

	ExamplesHeading    = "Contoh pertanyaan:"
	SuggestionsHeading = "Mungkin Anda tertarik dengan:"
	InputPlaceholder   = "Ask about books or the platform..."
)

//go:embed templates/*.html
var templateFS embed.FS

type BookCard struct {
	Title     string
	Author    string
	Category  string
	Image     string
	URL       string
	Available bool
}

type MessageView struct {
	User  bool
	HTML  template.HTML
	Books []BookCard
}

// Page is the data passed to the chat template.
type Page struct {
	SessionID   string
	Action      string
	Messages    []MessageView
	Pending     bool
	ChipHeading string
	Chips       []string
	Placeholder string
}

type Renderer struct {
	md         goldmark.Markdown
	policy     *bluemonday.Policy
	detailBase string
	tmpl       *template.Template
}

// New parses the embedded templates. Book cards link to detailBase/{id}.
func New(detailBase string) (*Renderer, error) {
	if detailBase == "" {
		detailBase = DefaultDetailBase
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse view templates: %w", err)
	}
	return &Renderer{
		md:         goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:     bluemonday.UGCPolicy(),
		detailBase: strings.TrimRight(detailBase, "/"),
		tmpl:       tmpl,
	}, nil
}

// Template returns the parsed templates, for gin's SetHTMLTemplate.
func (r *Renderer) Template() *template.Template {
	return r.tmpl
}

// Markdown converts src to sanitized HTML. Content that fails to convert is
// shown escaped.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// Page builds the template data for a session.
func (r *Renderer) Page(state conversation.State) Page {
	p := Page{
		SessionID:   state.ID,
		Action:      "/chat/" + url.PathEscape(state.ID),
		Pending:     state.Pending,
		Chips:       state.Chips,
		Placeholder: InputPlaceholder,
		Messages:    make([]MessageView, 0, len(state.Messages)),
	}
	if state.Examples {
		p.ChipHeading = ExamplesHeading
	} else {
		p.ChipHeading = SuggestionsHeading
	}

	for _, m := range state.Messages {
		mv := MessageView{
			User: m.Role == model.RoleUser,
			HTML: r.Markdown(m.Content),
		}
		if m.HasBooks() {
			for _, b := range m.Books {
				mv.Books = append(mv.Books, r.card(b))
			}
		}
		p.Messages = append(p.Messages, mv)
	}
	return p
}

// Render writes the full chat page for state to w.
func (r *Renderer) Render(w io.Writer, state conversation.State) error {
	return r.tmpl.ExecuteTemplate(w, TemplateName, r.Page(state))
}

func (r *Renderer) card(b model.Book) BookCard {
	return BookCard{
		Title:     b.Title,
		Author:    b.Author,
		Category:  b.Category,
		Image:     b.Image,
		URL:       r.detailBase + "/" + url.PathEscape(b.ID),
		Available: b.CanBorrow,
	}
}
