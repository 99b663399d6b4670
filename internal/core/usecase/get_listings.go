package usecase

import (
	"context"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/pipeline"
	"marketplace-service/internal/core/port"
)

// GetListingsUseCase - список по параметрам бэкенда, без перевода критериев витрины.
type GetListingsUseCase struct {
	source     port.ListingSource
	translator *pipeline.CriteriaTranslator
	normalizer *pipeline.ListingNormalizer
}

func NewGetListingsUseCase(source port.ListingSource, translator *pipeline.CriteriaTranslator, normalizer *pipeline.ListingNormalizer) *GetListingsUseCase {
	return &GetListingsUseCase{source: source, translator: translator, normalizer: normalizer}
}

func (uc *GetListingsUseCase) Execute(ctx context.Context, query domain.BackendQuery) (*domain.PageResult, error) {
	query.Page, query.Limit = uc.translator.ClampPage(query.Page, query.Limit)
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetListings",
		"page":     query.Page,
		"limit":    query.Limit,
	})
	ucLogger.Info("Use case started", nil)

	raw, err := uc.source.FetchPage(ctx, query)
	if err != nil {
		ucLogger.Error("Listing source returned an error", err, nil)
		return nil, err
	}

	result, warnings := uc.normalizer.NormalizePage(raw)
	logWarnings(ucLogger, warnings)
	result.Pagination = reconcilePagination(ucLogger, result.Pagination, query.Page, query.Limit, len(result.Listings))

	ucLogger.Info("Use case finished successfully", port.Fields{
		"items_on_page": len(result.Listings),
		"total_found":   result.Pagination.TotalListings,
	})
	return result, nil
}

type GetFeaturedListingsUseCase struct {
	source     port.ListingSource
	translator *pipeline.CriteriaTranslator
	normalizer *pipeline.ListingNormalizer
}

func NewGetFeaturedListingsUseCase(source port.ListingSource, translator *pipeline.CriteriaTranslator, normalizer *pipeline.ListingNormalizer) *GetFeaturedListingsUseCase {
	return &GetFeaturedListingsUseCase{source: source, translator: translator, normalizer: normalizer}
}

// Execute возвращает первую страницу объявлений с featured=true.
func (uc *GetFeaturedListingsUseCase) Execute(ctx context.Context, limit int) ([]domain.DisplayListing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "GetFeaturedListings"})
	ucLogger.Info("Use case started", nil)

	featured := true
	query := domain.BackendQuery{Featured: &featured}
	query.Page, query.Limit = uc.translator.ClampPage(1, limit)

	raw, err := uc.source.FetchPage(ctx, query)
	if err != nil {
		ucLogger.Error("Listing source returned an error", err, nil)
		return nil, err
	}

	listings, warnings := uc.normalizer.NormalizeAll(raw.Listings)
	logWarnings(ucLogger, warnings)

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(listings)})
	return listings, nil
}

type GetListingDetailsUseCase struct {
	source     port.ListingSource
	normalizer *pipeline.ListingNormalizer
}

func NewGetListingDetailsUseCase(source port.ListingSource, normalizer *pipeline.ListingNormalizer) *GetListingDetailsUseCase {
	return &GetListingDetailsUseCase{source: source, normalizer: normalizer}
}

// Execute ищет объявление строго по исходному идентификатору.
func (uc *GetListingDetailsUseCase) Execute(ctx context.Context, id domain.ListingID) (*domain.DisplayListing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "GetListingDetails",
		"listing_id": id,
	})
	ucLogger.Info("Use case started", nil)

	raw, err := uc.source.GetByID(ctx, id)
	if err != nil {
		ucLogger.Error("Listing source returned an error", err, nil)
		return nil, err
	}

	listings, warnings := uc.normalizer.NormalizeAll([]domain.BackendListing{*raw})
	logWarnings(ucLogger, warnings)

	ucLogger.Info("Use case finished successfully", nil)
	return &listings[0], nil
}
