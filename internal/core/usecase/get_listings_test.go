package usecase

import (
	"context"
	"errors"
	"testing"

	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/pipeline"
)

func TestGetListings_ClampsPagingAndNormalizes(t *testing.T) {
	src := &fakeSource{page: twelveListings()}
	uc := NewGetListingsUseCase(src, pipeline.NewCriteriaTranslator(12, 50), testNormalizer())

	result, err := uc.Execute(context.Background(), domain.BackendQuery{Types: []string{"casa"}, Page: -1, Limit: 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q := src.lastQuery(); q.Page != 1 || q.Limit != 50 || q.Types[0] != "casa" {
		t.Fatalf("unexpected backend query %+v", q)
	}
	if len(result.Listings) != 12 || result.Listings[0].Price != "$1,000,000" {
		t.Fatalf("unexpected result %+v", result.Listings[0])
	}
}

func TestGetFeaturedListings_AsksForFeaturedOnly(t *testing.T) {
	src := &fakeSource{page: twelveListings()}
	uc := NewGetFeaturedListingsUseCase(src, pipeline.NewCriteriaTranslator(12, 50), testNormalizer())

	listings, err := uc.Execute(context.Background(), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := src.lastQuery()
	if q.Featured == nil || !*q.Featured || q.Page != 1 || q.Limit != 6 {
		t.Fatalf("unexpected backend query %+v", q)
	}
	if len(listings) != 12 {
		t.Fatalf("expected source listings to pass through, got %d", len(listings))
	}
}

func TestGetListingDetails(t *testing.T) {
	listing := backendListing("550e8400-e29b-41d4-a716-446655440000", "Hacienda Restaurada", "Cenote privado")
	src := &fakeSource{listing: &listing}
	uc := NewGetListingDetailsUseCase(src, testNormalizer())

	got, err := uc.Execute(context.Background(), listing.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != listing.ID || got.Slug != "hacienda-restaurada" {
		t.Fatalf("unexpected listing %+v", got)
	}

	if _, err := uc.Execute(context.Background(), "other"); !errors.Is(err, domain.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound got %v", err)
	}
}

func TestDictionaries(t *testing.T) {
	src := &fakeSource{
		types: []domain.PropertyType{{Value: "casa", Label: "Casa"}},
		stats: &domain.PropertyStats{TotalProperties: 4},
	}

	types, err := NewGetPropertyTypesUseCase(src).Execute(context.Background())
	if err != nil || len(types) != 1 {
		t.Fatalf("unexpected types %v %v", types, err)
	}
	stats, err := NewGetPropertyStatsUseCase(src).Execute(context.Background())
	if err != nil || stats.TotalProperties != 4 {
		t.Fatalf("unexpected stats %v %v", stats, err)
	}

	options := NewGetFilterOptionsUseCase().Execute(context.Background())
	if len(options.Categories) != len(domain.Categories) || len(options.PriceBands) != 5 {
		t.Fatalf("unexpected options %+v", options)
	}
	options.PriceBands[0] = "changed"
	if domain.PriceBands[0] == "changed" {
		t.Fatalf("options must not alias the vocabulary")
	}
}

func TestGetListings_RepairsZeroPagination(t *testing.T) {
	page := twelveListings()
	page.Listings = page.Listings[:3]
	page.Pagination = domain.Pagination{}
	uc := NewGetListingsUseCase(&fakeSource{page: page}, pipeline.NewCriteriaTranslator(12, 50), testNormalizer())

	result, err := uc.Execute(context.Background(), domain.BackendQuery{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := result.Pagination
	if p.CurrentPage != 3 || p.PageSize != 3 || len(result.Listings) > p.PageSize {
		t.Fatalf("unexpected pagination %+v", p)
	}
	if p.TotalListings != 9 || p.TotalPages != 3 || p.HasNext {
		t.Fatalf("unexpected totals %+v", p)
	}
}
