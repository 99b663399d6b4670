package domain

// ListingID - непрозрачный идентификатор объявления.
// Хранится как есть: никаких преобразований в число или усечения.
type ListingID string

// Contact - контакты агента по объявлению.
type Contact struct {
	Phone    string
	Email    string
	WhatsApp string
}

// BackendListing - объявление в словаре бэкенда. Неизменяемый вход пайплайна.
type BackendListing struct {
	ID          ListingID
	Title       string
	Description string
	Price       float64
	Currency    string
	Type        string
	Operation   string
	Address     string
	City        string
	State       string
	Country     string

	ConstructionArea          *float64
	TerrainArea               *float64
	AvgPricePerM2Construction *float64
	AvgPricePerM2Terrain      *float64
	Bedrooms                  *float64
	Bathrooms                 *float64
	Parking                   *int

	Amenities []string
	Images    []string

	VirtualTourURL string
	// ExternalRedirectURL - политика маршрутизации, которую задает бэкенд:
	// если поле заполнено, карточка ведет на внешний сайт.
	ExternalRedirectURL string
	Featured            bool

	CreatedAt string
	UpdatedAt string
	Contact   *Contact
}

// DisplayContact - контакты с готовой ссылкой на WhatsApp.
type DisplayContact struct {
	Phone       string
	Email       string
	WhatsAppURL string
}

// DisplayListing - объявление, готовое к отображению.
type DisplayListing struct {
	ID       ListingID
	Title    string
	Location string

	Price                string
	PricePerMeter        string
	PricePerMeterTerrain string
	Currency             string
	RawPrice             float64

	Status    string
	Type      string
	Operation string

	Images []string

	Area             string
	ConstructionArea string
	TerrainArea      string
	Bedrooms         string
	Bathrooms        string
	Parking          *int
	Year             string

	Description string
	Features    []string
	Address     string
	City        string
	State       string

	VirtualTourURL      string
	ExternalRedirectURL string
	Slug                string
	URLPath             string
	Contact             *DisplayContact

	// Сырая площадь нужна локальному фильтру по AreaMax.
	RawArea *float64
}

// Pagination - метрики страницы.
type Pagination struct {
	CurrentPage   int
	TotalPages    int
	TotalListings int
	PageSize      int
	HasNext       bool
	HasPrev       bool
}

// NewPagination считает флаги из счетчиков, чтобы инвариант
// HasNext == CurrentPage < TotalPages соблюдался всегда.
func NewPagination(currentPage, totalPages, totalListings, pageSize int) Pagination {
	return Pagination{
		CurrentPage:   currentPage,
		TotalPages:    totalPages,
		TotalListings: totalListings,
		PageSize:      pageSize,
		HasNext:       currentPage < totalPages,
		HasPrev:       currentPage > 1,
	}
}

// PageResult - страница нормализованных объявлений.
type PageResult struct {
	Listings   []DisplayListing
	Pagination Pagination
}

// RawPage - страница в том виде, в каком ее вернул источник данных.
type RawPage struct {
	Listings   []BackendListing
	Pagination Pagination
}

// PropertyType - элемент справочника типов из GET /properties/types.
type PropertyType struct {
	Value string
	Label string
}

// PropertyStats - сводка из GET /properties/stats.
type PropertyStats struct {
	TotalProperties   int
	PropertiesForSale int
	PropertiesForRent int
	TypeBreakdown     map[string]int
}
