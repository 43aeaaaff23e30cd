// Package suggest holds the question chips shown under the chat input and
// the vocabulary that routes utterances.
package suggest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category names a follow-up suggestion set.
type Category string

const (
	CategoryRecommendation Category = "recommendation"
	CategoryCategory       Category = "category"
	CategoryGeneral        Category = "general"
)

// Vocabulary is the word lists and chip sets used by the router.
type Vocabulary struct {
	// RecommendationTriggers send an utterance to the canned recommendation path.
	RecommendationTriggers []string `yaml:"recommendation_triggers"`
	// RecommendationWords and CategoryWords pick the follow-up set after a
	// generated reply.
	RecommendationWords []string `yaml:"recommendation_words"`
	CategoryWords       []string `yaml:"category_words"`

	Examples  []string              `yaml:"examples"`
	FollowUps map[Category][]string `yaml:"follow_ups"`
}

// Default returns the built-in vocabulary.
func Default() Vocabulary {
	return Vocabulary{
		RecommendationTriggers: []string{"recommend", "suggest", "book", "rekomendasi", "saran"},
		RecommendationWords:    []string{"rekomendasi", "saran"},
		CategoryWords:          []string{"kategori", "category"},
		Examples: []string{
			"Rekomendasi buku terbaik?",
			"Apa saja buku yang tersedia di kategori fiksi?",
			"Buku apa saja yang tersedia dalam bahasa Indonesia?",
			"Buku apa yang cocok untuk pemula?",
			"Bagaimana cara meminjam buku?",
		},
		FollowUps: map[Category][]string{
			CategoryRecommendation: {
				"Buku apa yang cocok untuk pemula?",
				"Ada rekomendasi buku fiksi terbaru?",
				"Buku apa yang paling populer?",
			},
			CategoryCategory: {
				"Apa saja buku dalam kategori ini?",
				"Buku terbaik di kategori ini?",
				"Buku terbaru di kategori ini?",
			},
			CategoryGeneral: {
				"Bagaimana cara meminjam buku?",
				"Apa saja kategori buku yang tersedia?",
				"Buku apa yang tersedia dalam bahasa Indonesia?",
			},
		},
	}
}

// Load reads a YAML vocabulary from path. Lists left out of the file keep
// their default values.
func Load(path string) (Vocabulary, error) {
	v := Default()
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var file Vocabulary
	if err := yaml.Unmarshal(data, &file); err != nil {
		return v, fmt.Errorf("failed to parse vocabulary YAML: %w", err)
	}

	if len(file.RecommendationTriggers) > 0 {
		v.RecommendationTriggers = file.RecommendationTriggers
	}
	if len(file.RecommendationWords) > 0 {
		v.RecommendationWords = file.RecommendationWords
	}
	if len(file.CategoryWords) > 0 {
		v.CategoryWords = file.CategoryWords
	}
	if len(file.Examples) > 0 {
		v.Examples = file.Examples
	}
	for cat, set := range file.FollowUps {
		if len(set) > 0 {
			v.FollowUps[cat] = set
		}
	}
	return v, nil
}

// IsRecommendationRequest reports whether the utterance contains a
// recommendation trigger, ignoring case.
func (v Vocabulary) IsRecommendationRequest(utterance string) bool {
	return containsAny(utterance, v.RecommendationTriggers)
}

// Classify picks the follow-up category for a user utterance.
func (v Vocabulary) Classify(utterance string) Category {
	switch {
	case containsAny(utterance, v.RecommendationWords):
		return CategoryRecommendation
	case containsAny(utterance, v.CategoryWords):
		return CategoryCategory
	default:
		return CategoryGeneral
	}
}

// Set returns a copy of the follow-up set for cat.
func (v Vocabulary) Set(cat Category) []string {
	return clone(v.FollowUps[cat])
}

// ExampleQuestions returns a copy of the chips shown for an empty conversation.
func (v Vocabulary) ExampleQuestions() []string {
	return clone(v.Examples)
}

func containsAny(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func clone(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
