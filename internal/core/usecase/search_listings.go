package usecase

import (
	"context"
	"fmt"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/pipeline"
	"marketplace-service/internal/core/port"
)

// warningsLogLimit - сколько предупреждений нормализации попадает в лог целиком.
const warningsLogLimit = 10

type SearchListingsUseCase struct {
	source     port.ListingSource
	translator *pipeline.CriteriaTranslator
	normalizer *pipeline.ListingNormalizer
	refiner    *pipeline.LocalRefiner
}

func NewSearchListingsUseCase(
	source port.ListingSource,
	translator *pipeline.CriteriaTranslator,
	normalizer *pipeline.ListingNormalizer,
	refiner *pipeline.LocalRefiner,
) *SearchListingsUseCase {
	return &SearchListingsUseCase{
		source:     source,
		translator: translator,
		normalizer: normalizer,
		refiner:    refiner,
	}
}

// Execute: перевод критериев -> запрос к источнику -> нормализация -> локальная доработка.
// Локальная доработка работает на той же странице, что запрошена у бэкенда.
func (uc *SearchListingsUseCase) Execute(ctx context.Context, criteria domain.FilterCriteria, page, limit int) (*domain.PageResult, error) {
	page, limit = uc.translator.ClampPage(page, limit)
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "SearchListings",
		"page":     page,
		"limit":    limit,
	})
	ucLogger.Info("Use case started", nil)

	if notes := uc.translator.Diagnose(criteria); len(notes) > 0 {
		ucLogger.Warn("Some criteria were dropped during translation", port.Fields{"notes": notes})
	}
	query := uc.translator.Translate(criteria, page, limit)

	raw, err := uc.source.FetchPage(ctx, query)
	if err != nil {
		ucLogger.Error("Listing source returned an error", err, nil)
		return nil, err
	}

	result, warnings := uc.normalizer.NormalizePage(raw)
	logWarnings(ucLogger, warnings)
	result.Pagination = reconcilePagination(ucLogger, result.Pagination, query.Page, query.Limit, len(result.Listings))

	filter := criteria.LocalFilter()
	refined := uc.refiner.RefineWith(*result, filter, page, limit)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"fetched":       len(raw.Listings),
		"items_on_page": len(refined.Listings),
		"total_found":   refined.Pagination.TotalListings,
	})
	return &refined, nil
}

func logWarnings(logger port.LoggerPort, warnings []domain.NormalizationWarning) {
	if len(warnings) == 0 {
		return
	}
	n := min(len(warnings), warningsLogLimit)
	sample := make([]string, 0, n)
	for _, w := range warnings[:n] {
		sample = append(sample, w.String())
	}
	logger.Warn("Listings normalized with defaults", port.Fields{
		"warnings_total": len(warnings),
		"warnings":       sample,
	})
}

// reconcilePagination чинит счетчики бэкенда, если они отсутствуют или
// противоречат странице: page >= 1, len(listings) <= pageSize,
// totalListings не меньше уже увиденных объявлений.
func reconcilePagination(logger port.LoggerPort, p domain.Pagination, page, limit, count int) domain.Pagination {
	fixed := p
	if fixed.CurrentPage < 1 {
		fixed.CurrentPage = page
	}
	if fixed.PageSize < 1 || fixed.PageSize < count {
		fixed.PageSize = max(limit, count)
	}
	if count > 0 {
		fixed.TotalListings = max(fixed.TotalListings, (fixed.CurrentPage-1)*fixed.PageSize+count)
	}
	minPages := (fixed.TotalListings + fixed.PageSize - 1) / fixed.PageSize
	fixed.TotalPages = max(fixed.TotalPages, minPages)

	fixed = domain.NewPagination(fixed.CurrentPage, fixed.TotalPages, fixed.TotalListings, fixed.PageSize)
	if fixed != p {
		logger.Warn("Backend pagination was inconsistent, recomputed", port.Fields{
			"backend_pagination": fmt.Sprintf("%+v", p),
			"listings_on_page":   count,
		})
	}
	return fixed
}
