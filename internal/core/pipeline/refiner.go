package pipeline

import (
	"strings"

	"marketplace-service/internal/core/domain"

	"golang.org/x/text/cases"
)

// LocalRefiner компенсирует отсутствие полнотекстового поиска на бэкенде:
// фильтрует уже полученную страницу и заново считает пагинацию.
//
// Поиск идет только по одной загруженной странице, а не по всему каталогу:
// подходящее объявление со второй страницы бэкенда при фильтрации первой не видно.
type LocalRefiner struct{}

func NewLocalRefiner() *LocalRefiner {
	return &LocalRefiner{}
}

// Refine фильтрует страницу по поисковой строке.
// Пустая (после trim) строка возвращает страницу без изменений.
func (r *LocalRefiner) Refine(result domain.PageResult, searchTerm string, page, pageSize int) domain.PageResult {
	return r.RefineWith(result, domain.LocalFilter{SearchTerm: searchTerm}, page, pageSize)
}

// RefineWith применяет все локальные ограничения: поисковую строку,
// максимальную площадь и обязательные удобства.
func (r *LocalRefiner) RefineWith(result domain.PageResult, filter domain.LocalFilter, page, pageSize int) domain.PageResult {
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(filter.SearchTerm))
	amenities := make([]string, 0, len(filter.Amenities))
	for _, a := range filter.Amenities {
		if a = fold.String(strings.TrimSpace(a)); a != "" {
			amenities = append(amenities, a)
		}
	}

	if term == "" && filter.AreaMax == nil && len(amenities) == 0 {
		return result
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = max(len(result.Listings), 1)
	}

	matched := make([]domain.DisplayListing, 0, len(result.Listings))
	for _, listing := range result.Listings {
		if term != "" && !matchesTerm(fold, listing, term) {
			continue
		}
		if filter.AreaMax != nil && listing.RawArea != nil && *listing.RawArea > *filter.AreaMax {
			continue
		}
		if len(amenities) > 0 && !hasAllAmenities(fold, listing, amenities) {
			continue
		}
		matched = append(matched, listing)
	}

	// Пагинация считается от отфильтрованного набора: пагинация бэкенда
	// описывает нефильтрованный каталог и в результат не попадает.
	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	return domain.PageResult{
		Listings:   matched[start:end],
		Pagination: domain.NewPagination(page, totalPages, total, pageSize),
	}
}

func matchesTerm(fold cases.Caser, listing domain.DisplayListing, term string) bool {
	fields := []string{listing.Title, listing.Description, listing.Address, listing.City, listing.State}
	for _, f := range fields {
		if strings.Contains(fold.String(f), term) {
			return true
		}
	}
	for _, amenity := range listing.Features {
		if strings.Contains(fold.String(amenity), term) {
			return true
		}
	}
	return false
}

func hasAllAmenities(fold cases.Caser, listing domain.DisplayListing, required []string) bool {
	have := make(map[string]struct{}, len(listing.Features))
	for _, f := range listing.Features {
		have[fold.String(strings.TrimSpace(f))] = struct{}{}
	}
	for _, r := range required {
		if _, ok := have[r]; !ok {
			return false
		}
	}
	return true
}
