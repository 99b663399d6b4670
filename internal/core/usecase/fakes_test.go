package usecase

import (
	"context"
	"sync"

	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/pipeline"
)

type fakeSource struct {
	mu      sync.Mutex
	page    *domain.RawPage
	listing *domain.BackendListing
	err     error
	queries []domain.BackendQuery
	types   []domain.PropertyType
	stats   *domain.PropertyStats
}

func (f *fakeSource) FetchPage(ctx context.Context, q domain.BackendQuery) (*domain.RawPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeSource) GetByID(ctx context.Context, id domain.ListingID) (*domain.BackendListing, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.listing == nil || f.listing.ID != id {
		return nil, domain.ErrListingNotFound
	}
	return f.listing, nil
}

func (f *fakeSource) GetTypes(ctx context.Context) ([]domain.PropertyType, error) {
	return f.types, f.err
}

func (f *fakeSource) GetStats(ctx context.Context) (*domain.PropertyStats, error) {
	return f.stats, f.err
}

func (f *fakeSource) lastQuery() domain.BackendQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func testNormalizer() *pipeline.ListingNormalizer {
	return pipeline.NewListingNormalizer(pipeline.NormalizerConfig{
		Locale:              "en-US",
		DefaultCurrency:     "MXN",
		SupportedCurrencies: []string{"MXN", "USD"},
		PlaceholderImage:    "https://img/placeholder.jpg",
	})
}

func backendListing(id, title, description string) domain.BackendListing {
	return domain.BackendListing{
		ID:          domain.ListingID(id),
		Title:       title,
		Description: description,
		Price:       1000000,
		Currency:    "MXN",
		Type:        domain.BackendTypeHouse,
		Operation:   domain.BackendOperationSale,
		City:        "Mérida",
		State:       "Yucatán",
		Images:      []string{"https://img/" + id + ".jpg"},
	}
}
