package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komparator/backend/internal/domain"
	"github.com/komparator/backend/internal/infrastructure/marketplace"
)

type comparatorFixture struct {
	fetcher   *MockPageFetcher
	extractor *MockExtractor
	locator   *MockLocator
	sink      *RecordingSink
	comp      *Comparator
}

func newComparatorFixture() *comparatorFixture {
	f := &comparatorFixture{
		fetcher:   NewMockPageFetcher(),
		extractor: NewMockExtractor(),
		locator:   &MockLocator{},
		sink:      NewRecordingSink(),
	}
	f.comp = NewComparator(f.fetcher, f.extractor, f.locator, NewCollector(4, nil), f.sink, nil)
	return f
}

// offer registers a candidate page that the fetcher serves and the extractor parses
func (f *comparatorFixture) offer(p domain.Product) {
	productURL := marketplace.ProductURL(testHost, p.ASIN)
	f.fetcher.pages[productURL] = []byte("<html>" + p.ASIN + "</html>")
	f.extractor.products[productURL] = p
	f.locator.ids = append(f.locator.ids, p.ASIN)
}

func (f *comparatorFixture) searchReturns(term string) {
	f.fetcher.pages[marketplace.SearchURL(testHost, term)] = []byte("<html>results</html>")
}

func TestComparator_CheaperByReference(t *testing.T) {
	f := newComparatorFixture()
	source := product("B0SOURCE", "XJ-500", "120.00", "USD")
	f.searchReturns("XJ-500")
	f.offer(product("B001", "XJ-500", "99.99", "USD"))
	f.offer(product("B002", "XJ-500", "150.00", "USD"))

	result := f.comp.Compare(context.Background(), source, "sid-1")

	require.True(t, result.FoundCheaper())
	assert.Equal(t, "B001", result.Product.ASIN)
	assert.True(t, result.Product.SourcePrice.Decimal.Equal(source.Price.Decimal))
	assert.Equal(t, []domain.Progress{{Completed: 1, Total: 2}, {Completed: 2, Total: 2}}, f.sink.Updates("sid-1"))
}

func TestComparator_CurrencyMismatch(t *testing.T) {
	f := newComparatorFixture()
	source := product("B0SOURCE", "XJ-500", "120.00", "USD")
	f.searchReturns("XJ-500")
	f.offer(product("B001", "XJ-500", "99.99", "EUR"))

	result := f.comp.Compare(context.Background(), source, "sid-1")

	assert.Equal(t, domain.OutcomeNoMatch, result.Outcome)
	assert.Nil(t, result.Product)
	assert.False(t, result.FoundCheaper())
}

func TestComparator_NameModeNotCheaper(t *testing.T) {
	f := newComparatorFixture()
	source := domain.Product{Hostname: testHost, Name: "Cordless   Drill", Price: price("20.00"), Currency: "USD"}
	f.searchReturns("Cordless Drill")
	f.offer(product("B003", "", "25.00", "USD"))
	f.offer(product("B004", "", "30.00", "USD"))

	result := f.comp.Compare(context.Background(), source, "sid-1")

	assert.Equal(t, domain.OutcomeNotCheaper, result.Outcome)
	assert.False(t, result.FoundCheaper())
	assert.Contains(t, f.fetcher.Calls(), testHost+"/s?ref=nb_sb_noss_1&k=Cordless+Drill")
}

func TestComparator_ZeroResults(t *testing.T) {
	f := newComparatorFixture()
	source := product("B0SOURCE", "XJ-500", "120.00", "USD")
	f.searchReturns("XJ-500")

	result := f.comp.Compare(context.Background(), source, "sid-1")

	assert.Equal(t, domain.NoMatch(), result)
	assert.Equal(t, []domain.Progress{{Completed: 0, Total: 0}}, f.sink.Updates("sid-1"))
	assert.Len(t, f.fetcher.Calls(), 1, "only the search page may be fetched")
}

func TestComparator_SearchFetchFailureCountsAsZeroResults(t *testing.T) {
	f := newComparatorFixture()
	source := product("B0SOURCE", "XJ-500", "120.00", "USD")
	f.fetcher.errors[marketplace.SearchURL(testHost, "XJ-500")] = domain.ErrLikelyBlocked
	f.locator.ids = []string{"B001"}

	result := f.comp.Compare(context.Background(), source, "sid-1")

	assert.Equal(t, domain.OutcomeNoMatch, result.Outcome)
	assert.Equal(t, []domain.Progress{{}}, f.sink.Updates("sid-1"))
	assert.Len(t, f.fetcher.Calls(), 1)
}

func TestComparator_FailedCandidatesStillTick(t *testing.T) {
	f := newComparatorFixture()
	source := product("B0SOURCE", "XJ-500", "120.00", "USD")
	f.searchReturns("XJ-500")
	f.offer(product("B001", "XJ-500", "110.00", "USD"))
	f.offer(product("B002", "XJ-500", "90.00", "USD"))
	f.offer(product("B003", "XJ-500", "80.00", "USD"))
	f.fetcher.errors[marketplace.ProductURL(testHost, "B003")] = errors.New("connection reset")
	f.fetcher.panics[marketplace.ProductURL(testHost, "B002")] = true

	result := f.comp.Compare(context.Background(), source, "sid-1")

	require.True(t, result.FoundCheaper())
	assert.Equal(t, "B001", result.Product.ASIN)

	updates := f.sink.Updates("sid-1")
	require.Len(t, updates, 3)
	for i, u := range updates {
		assert.Equal(t, domain.Progress{Completed: i + 1, Total: 3}, u)
	}
}

func TestComparator_CatalogIDSearchTerm(t *testing.T) {
	f := newComparatorFixture()
	source := product("B0SOURCE", "", "120.00", "USD")
	f.searchReturns("B0SOURCE")

	f.comp.Compare(context.Background(), source, "sid-1")

	assert.Equal(t, []string{testHost + "/s?ref=nb_sb_noss_1&k=B0SOURCE"}, f.fetcher.Calls())
}

func TestComparator_NameSearchKeepsLiteralPlus(t *testing.T) {
	f := newComparatorFixture()
	source := domain.Product{Hostname: testHost, Name: "C++  Primer", Price: price("40.00"), Currency: "USD"}

	f.comp.Compare(context.Background(), source, "sid-1")

	assert.Equal(t, []string{testHost + "/s?ref=nb_sb_noss_1&k=C%2B%2B+Primer"}, f.fetcher.Calls())
}

func TestComparator_Complete(t *testing.T) {
	f := newComparatorFixture()

	f.comp.Complete("sid-1")

	assert.Equal(t, []domain.Progress{{Completed: 1, Total: 1}}, f.sink.Updates("sid-1"))
}

func TestComparator_WithoutProgressSink(t *testing.T) {
	f := newComparatorFixture()
	comp := NewComparator(f.fetcher, f.extractor, f.locator, nil, nil, nil)
	source := product("B0SOURCE", "XJ-500", "120.00", "USD")
	f.searchReturns("XJ-500")
	f.offer(product("B001", "XJ-500", "99.99", "USD"))

	assert.NotPanics(t, func() {
		result := comp.Compare(context.Background(), source, "sid-1")
		assert.True(t, result.FoundCheaper())
	})
}
