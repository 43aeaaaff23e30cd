// Package match decides which catalog books a generated reply mentions.
package match

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"book-assistant/backend/internal/agent/deps"
	"book-assistant/backend/internal/model"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Policy names a matching strategy.
type Policy string

const (
	PolicyExact     Policy = "exact"
	PolicySubstring Policy = "substring"
	PolicyFuzzy     Policy = "fuzzy"
)

// New returns the matcher for policy. An empty policy selects substring.
// Every matcher returns books in catalog order without duplicate IDs.
func New(policy string) (deps.TitleMatcher, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(policy))) {
	case PolicySubstring, "":
		return Substring{}, nil
	case PolicyExact:
		return Exact{}, nil
	case PolicyFuzzy:
		return Fuzzy{}, nil
	default:
		return nil, fmt.Errorf("unknown match policy %q (want exact, substring or fuzzy)", policy)
	}
}

// Substring selects every title that occurs in the reply as a
// case-insensitive substring, then every catalog book whose title contains one
// of those titles.
type Substring struct{}

func (Substring) Match(reply string, catalog []model.Book) []model.Book {
	return matchWith(reply, catalog, strings.ToLower, strings.Contains, strings.Contains)
}

// Exact selects books whose full title appears in the reply as a whole
// phrase, ignoring case. Only books with exactly that title are resolved.
type Exact struct{}

func (Exact) Match(reply string, catalog []model.Book) []model.Book {
	return matchWith(reply, catalog, strings.ToLower, containsPhrase, func(title, mentioned string) bool {
		return title == mentioned
	})
}

// Fuzzy behaves like Substring after folding case, diacritics, punctuation
// and whitespace, so "Cantik itu Luka" matches "cantik-itu luka".
type Fuzzy struct{}

func (Fuzzy) Match(reply string, catalog []model.Book) []model.Book {
	return matchWith(reply, catalog, Fold, strings.Contains, strings.Contains)
}

// matchWith finds the normalized titles mentioned in the reply and resolves
// them to catalog books using resolves(bookTitle, mentionedTitle).
func matchWith(
	reply string,
	catalog []model.Book,
	normalize func(string) string,
	mentions func(reply, title string) bool,
	resolves func(title, mentioned string) bool,
) []model.Book {
	normReply := normalize(reply)
	titles := make([]string, len(catalog))
	var mentioned []string
	for i, b := range catalog {
		titles[i] = normalize(b.Title)
		if titles[i] == "" {
			continue
		}
		if mentions(normReply, titles[i]) {
			mentioned = append(mentioned, titles[i])
		}
	}
	if len(mentioned) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var found []model.Book
	for i, b := range catalog {
		if seen[b.ID] || titles[i] == "" {
			continue
		}
		for _, m := range mentioned {
			if resolves(titles[i], m) {
				seen[b.ID] = true
				found = append(found, b)
				break
			}
		}
	}
	return found
}

// containsPhrase reports whether phrase occurs in s bounded by non-word runes.
func containsPhrase(s, phrase string) bool {
	for offset := 0; offset <= len(s); {
		idx := strings.Index(s[offset:], phrase)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(phrase)
		if isBoundary(s, start, true) && isBoundary(s, end, false) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		offset = start + size
	}
	return false
}

func isBoundary(s string, i int, before bool) bool {
	var r rune
	if before {
		if i == 0 {
			return true
		}
		r, _ = utf8.DecodeLastRuneInString(s[:i])
	} else {
		if i >= len(s) {
			return true
		}
		r, _ = utf8.DecodeRuneInString(s[i:])
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Fold lowercases s, strips diacritics and reduces every run of
// non-alphanumeric runes to a single space.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	fields := strings.FieldsFunc(strings.ToLower(stripped), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}
