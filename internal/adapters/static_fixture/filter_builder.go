package static_fixture

import (
	"marketplace-service/internal/core/domain"

	"golang.org/x/text/cases"
)

type predicate func(l *domain.BackendListing) bool

// filterBuilder собирает условия запроса так же, как их применяет бэкенд:
// все условия объединяются через AND, отсутствующий параметр ничего не ограничивает.
type filterBuilder struct {
	conditions []predicate
}

func newFilterBuilder() *filterBuilder {
	return &filterBuilder{}
}

func (fb *filterBuilder) addCondition(p predicate) {
	fb.conditions = append(fb.conditions, p)
}

// addOneOf - аналог "field = ANY($n)".
func (fb *filterBuilder) addOneOf(values []string, field func(l *domain.BackendListing) string) {
	if len(values) == 0 {
		return
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	fb.addCondition(func(l *domain.BackendListing) bool {
		_, ok := set[field(l)]
		return ok
	})
}

// addFoldEqual - точное совпадение без учета регистра.
func (fb *filterBuilder) addFoldEqual(value string, field func(l *domain.BackendListing) string) {
	if value == "" {
		return
	}
	want := cases.Fold().String(value)
	fb.addCondition(func(l *domain.BackendListing) bool {
		return cases.Fold().String(field(l)) == want
	})
}

// addFloatRange: nil-указатель означает отсутствие границы.
// Объявление без значения поля не проходит ни одну заданную границу.
func (fb *filterBuilder) addFloatRange(min, max *float64, field func(l *domain.BackendListing) *float64) {
	if min != nil {
		bound := *min
		fb.addCondition(func(l *domain.BackendListing) bool {
			v := field(l)
			return v != nil && *v >= bound
		})
	}
	if max != nil {
		bound := *max
		fb.addCondition(func(l *domain.BackendListing) bool {
			v := field(l)
			return v != nil && *v <= bound
		})
	}
}

func (fb *filterBuilder) match(l *domain.BackendListing) bool {
	for _, cond := range fb.conditions {
		if !cond(l) {
			return false
		}
	}
	return true
}

// applyFilters разбирает BackendQuery в набор условий.
func applyFilters(q domain.BackendQuery) *filterBuilder {
	fb := newFilterBuilder()

	fb.addOneOf(q.Types, func(l *domain.BackendListing) string { return l.Type })
	fb.addOneOf(q.Operations, func(l *domain.BackendListing) string { return l.Operation })
	fb.addFoldEqual(q.City, func(l *domain.BackendListing) string { return l.City })
	fb.addFoldEqual(q.State, func(l *domain.BackendListing) string { return l.State })

	price := func(l *domain.BackendListing) *float64 { return &l.Price }
	fb.addFloatRange(floatFromInt64(q.MinPrice), floatFromInt64(q.MaxPrice), price)

	if q.Bedrooms != nil {
		bedrooms := float64(*q.Bedrooms)
		fb.addFloatRange(&bedrooms, nil, func(l *domain.BackendListing) *float64 { return l.Bedrooms })
	}
	fb.addFloatRange(q.Bathrooms, nil, func(l *domain.BackendListing) *float64 { return l.Bathrooms })
	fb.addFloatRange(q.MinConstructionArea, nil, func(l *domain.BackendListing) *float64 { return l.ConstructionArea })

	if q.Featured != nil {
		featured := *q.Featured
		fb.addCondition(func(l *domain.BackendListing) bool { return l.Featured == featured })
	}

	return fb
}

func floatFromInt64(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
