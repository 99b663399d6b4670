package static_fixture

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/contracts"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
)

//go:embed fixtures/listings.json
var embeddedListings []byte

// StaticListingSource - источник объявлений из встроенного набора данных.
// Включается конфигурацией (LISTINGS_DATA_SOURCE=static) для демо-стендов и
// разработки без бэкенда; запросы обрабатывает с той же семантикой, что и бэкенд.
type StaticListingSource struct {
	listings []domain.BackendListing
	byID     map[domain.ListingID]int
}

// NewStaticListingSource загружает встроенный набор данных.
func NewStaticListingSource() (*StaticListingSource, error) {
	return NewStaticListingSourceFromJSON(embeddedListings)
}

// NewStaticListingSourceFromJSON проверяет документ по схеме списка объявлений
// и строит источник. Ошибка схемы не исправляется: набор данных должен быть корректным.
func NewStaticListingSourceFromJSON(raw []byte) (*StaticListingSource, error) {
	if err := contracts.Validate(contracts.PropertyListSchema, raw); err != nil {
		return nil, fmt.Errorf("static listings do not match schema: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode static listings: %w", err)
	}
	dtos, badFields, skipped := contracts.DecodeProperties(items)
	if len(badFields) > 0 || len(skipped) > 0 {
		return nil, fmt.Errorf("static listings contain malformed entries: bad fields %v, skipped %v", badFields, skipped)
	}

	src := &StaticListingSource{
		listings: make([]domain.BackendListing, 0, len(dtos)),
		byID:     make(map[domain.ListingID]int, len(dtos)),
	}
	for _, dto := range dtos {
		listing := dto.ToDomain()
		if _, dup := src.byID[listing.ID]; dup {
			return nil, fmt.Errorf("duplicate listing id %q in static listings", listing.ID)
		}
		src.byID[listing.ID] = len(src.listings)
		src.listings = append(src.listings, listing)
	}
	return src, nil
}

// Len - количество объявлений в наборе.
func (s *StaticListingSource) Len() int {
	return len(s.listings)
}

// FetchPage реализует port.ListingSource.
func (s *StaticListingSource) FetchPage(ctx context.Context, query domain.BackendQuery) (*domain.RawPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Cause: err}
	}

	fb := applyFilters(query)
	matched := make([]domain.BackendListing, 0, len(s.listings))
	for i := range s.listings {
		if fb.match(&s.listings[i]) {
			matched = append(matched, s.listings[i])
		}
	}

	page, limit := query.Page, query.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = max(len(matched), 1)
	}

	total := len(matched)
	totalPages := (total + limit - 1) / limit
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	contextkeys.LoggerFromContext(ctx).Debug("Static source served page", port.Fields{
		"component": "StaticListingSource",
		"matched":   total,
		"page":      page,
		"limit":     limit,
	})

	return &domain.RawPage{
		Listings:   matched[start:end],
		Pagination: domain.NewPagination(page, totalPages, total, limit),
	}, nil
}

// GetByID реализует port.ListingSource.
func (s *StaticListingSource) GetByID(ctx context.Context, id domain.ListingID) (*domain.BackendListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Cause: err}
	}
	idx, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, id)
	}
	listing := s.listings[idx]
	return &listing, nil
}

// GetTypes возвращает типы, которые реально встречаются в наборе.
func (s *StaticListingSource) GetTypes(ctx context.Context) ([]domain.PropertyType, error) {
	seen := make(map[string]struct{})
	for _, l := range s.listings {
		seen[l.Type] = struct{}{}
	}

	types := make([]domain.PropertyType, 0, len(seen))
	for value := range seen {
		label, ok := domain.BackendTypeLabels[value]
		if !ok {
			label = domain.CategoryOther
		}
		types = append(types, domain.PropertyType{Value: value, Label: label})
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Value < types[j].Value })
	return types, nil
}

func (s *StaticListingSource) GetStats(ctx context.Context) (*domain.PropertyStats, error) {
	stats := &domain.PropertyStats{
		TotalProperties: len(s.listings),
		TypeBreakdown:   make(map[string]int),
	}
	for _, l := range s.listings {
		switch l.Operation {
		case domain.BackendOperationSale:
			stats.PropertiesForSale++
		case domain.BackendOperationRent:
			stats.PropertiesForRent++
		}
		stats.TypeBreakdown[l.Type]++
	}
	return stats, nil
}
