package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"marketplace-service/internal/core/domain"

	"golang.org/x/text/cases"
)

const (
	priceBandDelimiter = " - "
	openBandSuffix     = "+"
)

// CriteriaTranslator переводит критерии витрины в параметры бэкенда.
// Чистая функция: никакого ввода-вывода, одинаковый вход дает одинаковый выход.
type CriteriaTranslator struct {
	categories   map[string]string
	listingTypes map[string]string
	priceBands   map[string]struct{}
	bedrooms     map[string]struct{}
	bathrooms    map[string]struct{}

	defaultLimit int
	maxLimit     int
}

// NewCriteriaTranslator - конструктор. Размеры страницы приходят из конфигурации.
func NewCriteriaTranslator(defaultLimit, maxLimit int) *CriteriaTranslator {
	if maxLimit <= 0 {
		maxLimit = 50
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(12, maxLimit)
	}

	t := &CriteriaTranslator{
		categories:   make(map[string]string),
		listingTypes: make(map[string]string),
		priceBands:   toSet(domain.PriceBands),
		bedrooms:     toSet(domain.BedroomOptions),
		bathrooms:    toSet(domain.BathroomOptions),
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
	for _, m := range domain.Categories {
		t.categories[foldKey(m.Label)] = m.BackendType
	}
	for _, m := range domain.CategoryAliases {
		t.categories[foldKey(m.Label)] = m.BackendType
	}
	t.listingTypes[foldKey(domain.ListingTypeSale)] = domain.BackendOperationSale
	t.listingTypes[foldKey(domain.ListingTypeRent)] = domain.BackendOperationRent

	return t
}

// Translate строит BackendQuery. Незаполненные поля критериев в запрос не попадают.
func (t *CriteriaTranslator) Translate(c domain.FilterCriteria, page, limit int) domain.BackendQuery {
	q, _ := t.translate(c, page, limit)
	return q
}

// Diagnose перечисляет значения критериев, которые были отброшены при переводе.
// Вызывающая сторона пишет их в лог, в запрос они не уходят.
func (t *CriteriaTranslator) Diagnose(c domain.FilterCriteria) []string {
	_, notes := t.translate(c, 1, t.defaultLimit)
	return notes
}

// ClampPage приводит номер и размер страницы к допустимым границам.
func (t *CriteriaTranslator) ClampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = t.defaultLimit
	}
	if limit > t.maxLimit {
		limit = t.maxLimit
	}
	return page, limit
}

func (t *CriteriaTranslator) translate(c domain.FilterCriteria, page, limit int) (domain.BackendQuery, []string) {
	var notes []string
	q := domain.BackendQuery{}
	q.Page, q.Limit = t.ClampPage(page, limit)

	if category := strings.TrimSpace(c.Category); category != "" {
		if backendType, ok := t.categories[foldKey(category)]; ok {
			q.Types = []string{backendType}
		} else {
			notes = append(notes, fmt.Sprintf("unknown category %q omitted", category))
		}
	}

	if location := strings.TrimSpace(c.Location); location != "" {
		q.City = location
	}

	if band := strings.TrimSpace(c.PriceBand); band != "" {
		minPrice, maxPrice, ok := t.decomposePriceBand(band)
		if ok {
			q.MinPrice = &minPrice
			q.MaxPrice = maxPrice
		} else {
			notes = append(notes, fmt.Sprintf("unknown price band %q omitted", band))
		}
	}

	if bedrooms := strings.TrimSpace(c.BedroomsMin); bedrooms != "" {
		if n, ok := t.parseBedrooms(bedrooms); ok {
			q.Bedrooms = &n
		} else {
			notes = append(notes, fmt.Sprintf("unknown bedrooms option %q omitted", bedrooms))
		}
	}

	if bathrooms := strings.TrimSpace(c.BathroomsMin); bathrooms != "" {
		if n, ok := t.parseBathrooms(bathrooms); ok {
			q.Bathrooms = &n
		} else {
			notes = append(notes, fmt.Sprintf("unknown bathrooms option %q omitted", bathrooms))
		}
	}

	if c.AreaMin != nil {
		if *c.AreaMin > 0 {
			area := *c.AreaMin
			q.MinConstructionArea = &area
		} else if *c.AreaMin < 0 {
			notes = append(notes, fmt.Sprintf("negative minimum area %v omitted", *c.AreaMin))
		}
	}

	if listingType := strings.TrimSpace(c.ListingType); listingType != "" {
		if operation, ok := t.listingTypes[foldKey(listingType)]; ok {
			q.Operations = []string{operation}
		} else {
			notes = append(notes, fmt.Sprintf("unknown listing type %q omitted", listingType))
		}
	}

	return q, notes
}

// decomposePriceBand раскладывает метку диапазона на границы.
// "$1,000,000 - $2,000,000" -> (1000000, 2000000); "$10,000,000+" -> (10000000, nil).
func (t *CriteriaTranslator) decomposePriceBand(band string) (int64, *int64, bool) {
	if _, known := t.priceBands[band]; !known {
		return 0, nil, false
	}
	return ParsePriceBand(band)
}

// ParsePriceBand разбирает метку диапазона без проверки по словарю.
func ParsePriceBand(band string) (int64, *int64, bool) {
	if strings.HasSuffix(band, openBandSuffix) {
		minPrice, err := parseAmount(strings.TrimSuffix(band, openBandSuffix))
		if err != nil {
			return 0, nil, false
		}
		return minPrice, nil, true
	}

	bounds := strings.Split(band, priceBandDelimiter)
	if len(bounds) != 2 {
		return 0, nil, false
	}
	minPrice, err := parseAmount(bounds[0])
	if err != nil {
		return 0, nil, false
	}
	maxPrice, err := parseAmount(bounds[1])
	if err != nil || maxPrice < minPrice {
		return 0, nil, false
	}
	return minPrice, &maxPrice, true
}

// parseAmount: "$1,000,000" -> 1000000
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative amount %d", v)
	}
	return v, nil
}

func (t *CriteriaTranslator) parseBedrooms(option string) (int, bool) {
	if _, known := t.bedrooms[option]; !known {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(option, openBandSuffix))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (t *CriteriaTranslator) parseBathrooms(option string) (float64, bool) {
	if _, known := t.bathrooms[option]; !known {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(option, openBandSuffix), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// foldKey приводит метку к ключу для сравнения без учета регистра.
// Caser хранит состояние, поэтому создается на каждый вызов.
func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
