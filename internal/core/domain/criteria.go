package domain

// FilterCriteria - критерии поиска в том виде, в каком их ввел пользователь.
// Передается по значению, пайплайн его не изменяет.
type FilterCriteria struct {
	SearchTerm string
	Category   string
	Location   string
	// PriceBand - одна из меток PriceBands или пустая строка.
	PriceBand string

	BedroomsMin  string
	BathroomsMin string
	AreaMin      *float64
	AreaMax      *float64
	Amenities    []string
	ListingType  string
}

// LocalFilter - ограничения, которые бэкенд не умеет применять сам.
type LocalFilter struct {
	SearchTerm string
	AreaMax    *float64
	Amenities  []string
}

// LocalFilter выделяет из критериев часть для локальной доработки страницы.
func (c FilterCriteria) LocalFilter() LocalFilter {
	return LocalFilter{
		SearchTerm: c.SearchTerm,
		AreaMax:    c.AreaMax,
		Amenities:  c.Amenities,
	}
}
