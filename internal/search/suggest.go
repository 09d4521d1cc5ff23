package search

import (
	"strings"

	"github.com/rmachado/go-faceted-search/internal/typoutil"
)

// maxSuggestions caps the alternates returned per search.
const maxSuggestions = 5

// suggestionSource is the narrow slice of the history tracker the
// suggestion lookup needs.
type suggestionSource interface {
	PopularTerms() []string
}

// suggest derives alternate query terms from previously tracked searches:
// popular terms that extend a query token as a prefix or sit within typo
// distance of one. Best effort only; an empty result is always valid.
func (s *Service) suggest(queryTokens []string) []string {
	if len(queryTokens) == 0 {
		return nil
	}
	src, ok := s.tracker.(suggestionSource)
	if !ok {
		return nil
	}

	suggestions := make([]string, 0, maxSuggestions)
	seen := make(map[string]bool)

	for _, term := range src.PopularTerms() {
		if len(suggestions) >= maxSuggestions {
			break
		}
		if seen[term] {
			continue
		}
		for _, token := range queryTokens {
			if term == token {
				break
			}
			if strings.HasPrefix(term, token) || typoutil.WithinDistance(term, token, 2) {
				suggestions = append(suggestions, term)
				seen[term] = true
				break
			}
		}
	}

	return suggestions
}
