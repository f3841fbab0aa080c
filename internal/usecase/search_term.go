package usecase

import (
	"regexp"
	"strings"

	"github.com/komparator/backend/internal/domain"
)

// multiSpacePattern collapses runs of whitespace in product names
var multiSpacePattern = regexp.MustCompile(`\s+`)

// referenceJoin is the token separator of reference search terms
const referenceJoin = "+"

// BuildSearchTerm builds the marketplace search term for a source product.
//   - reference: spaces replaced by "+", as the site's search box does
//   - catalog id: used verbatim
//   - name: surrounding whitespace trimmed and inner runs collapsed
func BuildSearchTerm(source domain.Product, mode domain.SearchMode) string {
	switch mode {
	case domain.SearchByReference:
		return strings.ReplaceAll(source.Ref, " ", referenceJoin)
	case domain.SearchByCatalogID:
		return source.ASIN
	default:
		return strings.TrimSpace(multiSpacePattern.ReplaceAllString(source.Name, " "))
	}
}

// SearchTokens splits a search term into the tokens sent to the site. Only
// reference terms carry the join token, other terms are a single token so a
// literal "+" in a name stays part of the query.
func SearchTokens(term string, mode domain.SearchMode) []string {
	if mode == domain.SearchByReference {
		return strings.Split(term, referenceJoin)
	}
	return []string{term}
}
