package usecases_port

import (
	"context"
	"marketplace-service/internal/core/domain"
)

type GetPropertyTypesUseCase interface {
	Execute(ctx context.Context) ([]domain.PropertyType, error)
}

type GetPropertyStatsUseCase interface {
	Execute(ctx context.Context) (*domain.PropertyStats, error)
}

// GetFilterOptionsUseCase отдает закрытые словари для панели фильтров.
type GetFilterOptionsUseCase interface {
	Execute(ctx context.Context) domain.FilterOptions
}
