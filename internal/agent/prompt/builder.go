package prompt

import (
	"fmt"
	"strings"
)

// TitleSeparator joins catalog titles in the context string.
const TitleSeparator = ", "

// Builder constructs prompts for the generative client
type Builder struct{}

// NewBuilder creates a new prompt builder
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildCatalogContext creates the instruction preamble listing every title.
// Titles are embedded verbatim inside a delimited block so the model can
// echo them exactly. With no titles the preamble is sent without the block.
func (b *Builder) BuildCatalogContext(titles []string) string {
	var sentence string
	if len(titles) > 0 {
		sentence = fmt.Sprintf(CatalogSentence, strings.Join(titles, TitleSeparator))
	}
	return fmt.Sprintf(CatalogPreamble, sentence)
}

// BuildSummaryPrompt creates the prompt used to summarize a book text.
func (b *Builder) BuildSummaryPrompt(text string) string {
	return fmt.Sprintf(SummaryPrompt, MinSummaryChars, strings.TrimSpace(text))
}
