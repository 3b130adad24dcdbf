package toolselect

import (
	"sort"
	"strings"

	"ai-caresupervisor-be/pkg/registry"
)

// Selection is one selected tool with its category-overlap score. Selections
// are ordered by descending score, ties broken by registry declaration order.
type Selection struct {
	ToolID     string
	MatchScore int
}

// Selector maps a query to registry entries by keyword intersection. It is a
// pure function of (query, registry): no hidden state, so identical inputs
// always produce identical output.
type Selector struct {
	minOverlap int
}

// NewSelector creates a selector with the configured minimum category
// overlap. Entries below the threshold are never selected.
func NewSelector(minOverlap int) *Selector {
	if minOverlap < 1 {
		minOverlap = 1
	}
	return &Selector{minOverlap: minOverlap}
}

// Select ranks registry entries by the size of the intersection between the
// query's keyword set and each entry's declared categories.
func (s *Selector) Select(queryText string, reg *registry.Registry) []Selection {
	keywords := Keywords(queryText)
	if len(keywords) == 0 {
		return nil
	}

	entries := reg.Entries()
	var selected []Selection
	for _, entry := range entries {
		score := 0
		for _, cat := range entry.Categories {
			if keywords[strings.ToLower(cat)] {
				score++
			}
		}
		if score >= s.minOverlap {
			selected = append(selected, Selection{ToolID: entry.Name, MatchScore: score})
		}
	}

	// Entries were scanned in declaration order, so a stable sort preserves
	// that order among equal scores.
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].MatchScore > selected[j].MatchScore
	})

	return selected
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "i": true, "im": true, "me": true,
	"my": true, "is": true, "am": true, "are": true, "was": true, "be": true,
	"to": true, "of": true, "in": true, "on": true, "for": true, "and": true,
	"or": true, "it": true, "do": true, "can": true, "what": true, "how": true,
	"when": true, "should": true, "feeling": true, "feel": true, "about": true,
	"with": true, "that": true, "this": true, "have": true, "has": true,
}

// Keywords derives the lowercase keyword set from query text: punctuation is
// stripped, stopwords dropped, and light suffix variants ("stressed" ->
// "stress") are added so inflected forms still meet their category.
func Keywords(text string) map[string]bool {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, text)

	keywords := make(map[string]bool)
	for _, token := range strings.Fields(cleaned) {
		if stopwords[token] || len(token) < 2 {
			continue
		}
		keywords[token] = true
		for _, variant := range suffixVariants(token) {
			keywords[variant] = true
		}
	}
	return keywords
}

func suffixVariants(token string) []string {
	var variants []string
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(token, suffix) && len(token)-len(suffix) >= 3 {
			variants = append(variants, strings.TrimSuffix(token, suffix))
		}
	}
	return variants
}
