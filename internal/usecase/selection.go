package usecase

import (
	"github.com/komparator/backend/internal/domain"
)

// SelectBest picks the best candidate for source among the collected products.
//
// A candidate qualifies when it is comparable and priced in the source's
// currency. In reference mode it must also carry the source reference. In the
// other modes every qualifying candidate competes, but only once at least one
// of them carries the source reference; without such a seed nothing matches.
//
// The lowest price wins, ties go to the lexically smallest catalog id and then
// name, so the outcome does not depend on the order of candidates.
func SelectBest(source domain.Product, candidates []domain.Product, mode domain.SearchMode) domain.ComparisonResult {
	var (
		best   *domain.Product
		seeded bool
	)

	for i := range candidates {
		candidate := candidates[i]
		if !qualifies(source, candidate) {
			continue
		}

		sameRef := candidate.Ref == source.Ref
		if mode == domain.SearchByReference && !sameRef {
			continue
		}
		if sameRef {
			seeded = true
		}

		if best == nil || beats(candidate, *best) {
			best = &candidate
		}
	}

	if best == nil || !seeded {
		return domain.NoMatch()
	}

	winner := *best
	if source.Price.Valid && winner.Price.Decimal.LessThan(source.Price.Decimal) {
		winner.SourcePrice = source.Price
		return domain.ComparisonResult{Outcome: domain.OutcomeCheaper, Product: &winner}
	}

	return domain.ComparisonResult{Outcome: domain.OutcomeNotCheaper, Product: &winner}
}

// qualifies reports whether a candidate can take part in the price comparison
func qualifies(source, candidate domain.Product) bool {
	return candidate.Comparable() && candidate.Currency == source.Currency
}

// beats reports whether a ranks strictly before b
func beats(a, b domain.Product) bool {
	if cmp := a.Price.Decimal.Cmp(b.Price.Decimal); cmp != 0 {
		return cmp < 0
	}
	if a.ASIN != b.ASIN {
		return a.ASIN < b.ASIN
	}
	return a.Name < b.Name
}
