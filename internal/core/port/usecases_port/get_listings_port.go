package usecases_port

import (
	"context"
	"marketplace-service/internal/core/domain"
)

// GetListingsUseCase - список по параметрам бэкенда без перевода критериев.
type GetListingsUseCase interface {
	Execute(ctx context.Context, query domain.BackendQuery) (*domain.PageResult, error)
}

type GetFeaturedListingsUseCase interface {
	Execute(ctx context.Context, limit int) ([]domain.DisplayListing, error)
}

type GetListingDetailsUseCase interface {
	Execute(ctx context.Context, id domain.ListingID) (*domain.DisplayListing, error)
}
