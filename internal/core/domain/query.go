package domain

// BackendQuery - параметры запроса GET /properties.
// Отсутствующее поле (nil или пустая строка) не попадает в query string:
// для бэкенда "нет параметра" означает "без ограничения".
type BackendQuery struct {
	Types      []string
	Operations []string
	City       string
	State      string

	MinPrice            *int64
	MaxPrice            *int64
	Bedrooms            *int
	Bathrooms           *float64
	MinConstructionArea *float64
	Featured            *bool

	Page  int
	Limit int
}
