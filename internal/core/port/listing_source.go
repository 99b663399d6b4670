package port

import (
	"context"
	"marketplace-service/internal/core/domain"
)

// ListingSource - контракт источника объявлений.
// Реализуется клиентом API бэкенда и статическим набором данных;
// кэш оборачивает любой из них, не меняя контракт.
type ListingSource interface {
	// FetchPage возвращает одну страницу объявлений по параметрам бэкенда.
	FetchPage(ctx context.Context, query domain.BackendQuery) (*domain.RawPage, error)
	// GetByID возвращает domain.ErrListingNotFound, если объявления нет.
	GetByID(ctx context.Context, id domain.ListingID) (*domain.BackendListing, error)
	GetTypes(ctx context.Context) ([]domain.PropertyType, error)
	GetStats(ctx context.Context) (*domain.PropertyStats, error)
}
