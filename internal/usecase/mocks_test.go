package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/komparator/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu        sync.Mutex
	data      map[string][]byte
	getError  error
	setError  error
	getCalled bool
	setCalled bool
	lastTTL   time.Duration
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalled = true
	m.lastTTL = ttl
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

var errPageNotFound = errors.New("mock: page not found")

// MockPageFetcher is a mock implementation of domain.PageFetcher serving pages by URL
type MockPageFetcher struct {
	mu     sync.Mutex
	pages  map[string][]byte
	errors map[string]error
	calls  []string
	panics map[string]bool
}

func NewMockPageFetcher() *MockPageFetcher {
	return &MockPageFetcher{
		pages:  make(map[string][]byte),
		errors: make(map[string]error),
		panics: make(map[string]bool),
	}
}

func (m *MockPageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	page, ok := m.pages[url]
	err := m.errors[url]
	panics := m.panics[url]
	m.mu.Unlock()

	if panics {
		panic("mock: fetch exploded")
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errPageNotFound
	}
	return page, nil
}

func (m *MockPageFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockExtractor is a mock implementation of domain.ProductExtractor keyed by page URL
type MockExtractor struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{products: make(map[string]domain.Product)}
}

func (m *MockExtractor) ExtractProduct(pageURL string, page []byte) domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[pageURL]
}

// MockLocator is a mock implementation of domain.ResultLocator
type MockLocator struct {
	ids []string
}

func (m *MockLocator) LocateResults(hostname string, page []byte) []string {
	return m.ids
}

// RecordingSink is a domain.ProgressSink that keeps every update
type RecordingSink struct {
	mu      sync.Mutex
	updates map[string][]domain.Progress
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{updates: make(map[string][]domain.Progress)}
}

func (s *RecordingSink) Emit(sessionKey string, progress domain.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[sessionKey] = append(s.updates[sessionKey], progress)
}

func (s *RecordingSink) Updates(sessionKey string) []domain.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Progress(nil), s.updates[sessionKey]...)
}

const testHost = "https://www.amazon.com"

func price(value string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(value))
}

func product(asin, ref, value, currency string) domain.Product {
	p := domain.Product{
		Hostname: testHost,
		Name:     "Product " + asin,
		Ref:      ref,
		ASIN:     asin,
		Currency: currency,
	}
	if value != "" {
		p.Price = price(value)
	}
	return p
}
