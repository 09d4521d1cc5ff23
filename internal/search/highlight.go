package search

import (
	"strings"

	"github.com/rmachado/go-faceted-search/internal/tokenizer"
	"github.com/rmachado/go-faceted-search/model"
	"github.com/rmachado/go-faceted-search/services"
)

const (
	highlightPreTag  = "<em>"
	highlightPostTag = "</em>"
)

// highlightDocument produces highlight fragments for every searchable field
// of a hit that contains at least one query token. Highlighting is a no-op
// when the query has no text.
func (s *Service) highlightDocument(doc model.Document, queryTokens []string, query services.SearchQuery) []services.HighlightResult {
	var results []services.HighlightResult

	for _, field := range s.settings.Fields {
		if !field.Searchable {
			continue
		}
		raw, ok := doc[field.Name]
		if !ok {
			continue
		}

		fragments, matched := highlightValue(raw, queryTokens, query.Fuzzy)
		if len(fragments) == 0 {
			continue
		}

		boost := field.Boost
		if boost == 0 {
			boost = 1.0
		}
		if override, ok := query.Boost[field.Name]; ok {
			boost = override
		}

		results = append(results, services.HighlightResult{
			Field:     field.Name,
			Fragments: fragments,
			Score:     float64(matched) / float64(len(queryTokens)) * boost,
		})
	}

	return results
}

// highlightValue wraps matched words of the raw field value in em tags.
// Array fields yield one fragment per matching element. The second return
// value counts distinct query tokens matched.
func highlightValue(raw interface{}, queryTokens []string, fuzzy bool) ([]string, int) {
	var fragments []string
	matchedTokens := make(map[string]bool)

	emit := func(text string) {
		fragment, any := highlightText(text, queryTokens, fuzzy, matchedTokens)
		if any {
			fragments = append(fragments, fragment)
		}
	}

	switch v := raw.(type) {
	case string:
		emit(v)
	case []string:
		for _, item := range v {
			emit(item)
		}
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				emit(str)
			}
		}
	}

	return fragments, len(matchedTokens)
}

// highlightText wraps each whitespace-delimited word whose tokens match a
// query token. It records matched query tokens in matchedTokens.
func highlightText(text string, queryTokens []string, fuzzy bool, matchedTokens map[string]bool) (string, bool) {
	words := strings.Fields(text)
	any := false

	for i, word := range words {
		wordTokens := tokenizer.TokenSet(word)
		if len(wordTokens) == 0 {
			continue
		}

		wordMatched := false
		for _, queryToken := range queryTokens {
			if tokenMatches(queryToken, wordTokens, fuzzy) {
				matchedTokens[queryToken] = true
				wordMatched = true
			}
		}
		if wordMatched {
			words[i] = highlightPreTag + word + highlightPostTag
			any = true
		}
	}

	if !any {
		return "", false
	}
	return strings.Join(words, " "), true
}
