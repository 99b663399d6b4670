package usecase

import (
	"context"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
)

type GetPropertyTypesUseCase struct {
	source port.ListingSource
}

func NewGetPropertyTypesUseCase(source port.ListingSource) *GetPropertyTypesUseCase {
	return &GetPropertyTypesUseCase{source: source}
}

func (uc *GetPropertyTypesUseCase) Execute(ctx context.Context) ([]domain.PropertyType, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "GetPropertyTypes"})
	ucLogger.Info("Use case started", nil)

	types, err := uc.source.GetTypes(ctx)
	if err != nil {
		ucLogger.Error("Listing source returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(types)})
	return types, nil
}

type GetPropertyStatsUseCase struct {
	source port.ListingSource
}

func NewGetPropertyStatsUseCase(source port.ListingSource) *GetPropertyStatsUseCase {
	return &GetPropertyStatsUseCase{source: source}
}

func (uc *GetPropertyStatsUseCase) Execute(ctx context.Context) (*domain.PropertyStats, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "GetPropertyStats"})
	ucLogger.Info("Use case started", nil)

	stats, err := uc.source.GetStats(ctx)
	if err != nil {
		ucLogger.Error("Listing source returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"total": stats.TotalProperties})
	return stats, nil
}

// GetFilterOptionsUseCase отдает закрытые словари панели фильтров.
// Источник данных не нужен: словари зашиты в домен, и translator понимает ровно их.
type GetFilterOptionsUseCase struct{}

func NewGetFilterOptionsUseCase() *GetFilterOptionsUseCase {
	return &GetFilterOptionsUseCase{}
}

func (uc *GetFilterOptionsUseCase) Execute(ctx context.Context) domain.FilterOptions {
	categories := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		categories = append(categories, c.Label)
	}

	return domain.FilterOptions{
		Categories:      categories,
		PriceBands:      cloneStrings(domain.PriceBands),
		BedroomOptions:  cloneStrings(domain.BedroomOptions),
		BathroomOptions: cloneStrings(domain.BathroomOptions),
		Amenities:       cloneStrings(domain.Amenities),
		Locations:       cloneStrings(domain.Locations),
		ListingTypes:    cloneStrings(domain.ListingTypes),
	}
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
