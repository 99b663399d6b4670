package rest

import (
	"marketplace-service/internal/core/domain"
)

// SearchRequest - параметры GET /properties/search в том виде, в каком их шлет панель фильтров.
type SearchRequest struct {
	SearchTerm   string   `validate:"max=200"`
	Category     string   `validate:"max=100"`
	Location     string   `validate:"max=100"`
	PriceBand    string   `validate:"max=100"`
	BedroomsMin  string   `validate:"max=10"`
	BathroomsMin string   `validate:"max=10"`
	AreaMin      *float64 `validate:"omitempty,gte=0"`
	AreaMax      *float64 `validate:"omitempty,gte=0"`
	Amenities    []string `validate:"max=50,dive,max=100"`
	ListingType  string   `validate:"max=50"`
	Page         int      `validate:"gte=0"`
	Limit        int      `validate:"gte=0"`
}

func (r SearchRequest) ToCriteria() domain.FilterCriteria {
	return domain.FilterCriteria{
		SearchTerm:   r.SearchTerm,
		Category:     r.Category,
		Location:     r.Location,
		PriceBand:    r.PriceBand,
		BedroomsMin:  r.BedroomsMin,
		BathroomsMin: r.BathroomsMin,
		AreaMin:      r.AreaMin,
		AreaMax:      r.AreaMax,
		Amenities:    r.Amenities,
		ListingType:  r.ListingType,
	}
}

// ListingsRequest - параметры GET /properties в словаре бэкенда.
type ListingsRequest struct {
	Types               []string `validate:"dive,required,max=50"`
	Operations          []string `validate:"dive,oneof=venta renta"`
	City                string   `validate:"max=100"`
	State               string   `validate:"max=100"`
	MinPrice            *int64   `validate:"omitempty,gte=0"`
	MaxPrice            *int64   `validate:"omitempty,gte=0"`
	Bedrooms            *int     `validate:"omitempty,gte=0"`
	Bathrooms           *float64 `validate:"omitempty,gte=0"`
	MinConstructionArea *float64 `validate:"omitempty,gte=0"`
	Featured            *bool
	Page                int `validate:"gte=0"`
	Limit               int `validate:"gte=0"`
}

func (r ListingsRequest) ToQuery() domain.BackendQuery {
	return domain.BackendQuery{
		Types:               r.Types,
		Operations:          r.Operations,
		City:                r.City,
		State:               r.State,
		MinPrice:            r.MinPrice,
		MaxPrice:            r.MaxPrice,
		Bedrooms:            r.Bedrooms,
		Bathrooms:           r.Bathrooms,
		MinConstructionArea: r.MinConstructionArea,
		Featured:            r.Featured,
		Page:                r.Page,
		Limit:               r.Limit,
	}
}

type ContactResponse struct {
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	WhatsAppURL string `json:"whatsappUrl,omitempty"`
}

// ListingResponse - карточка объявления для фронтенда.
type ListingResponse struct {
	ID                   string           `json:"id"`
	Title                string           `json:"title"`
	Location             string           `json:"location"`
	Price                string           `json:"price"`
	PricePerMeter        string           `json:"pricePerMeter"`
	PricePerMeterTerrain string           `json:"pricePerMeterTerrain"`
	Currency             string           `json:"currency"`
	RawPrice             float64          `json:"rawPrice"`
	Status               string           `json:"status"`
	Type                 string           `json:"type"`
	ListingType          string           `json:"listingType"`
	Image                string           `json:"image"`
	Images               []string         `json:"images"`
	Area                 string           `json:"area"`
	ConstructionArea     string           `json:"constructionArea"`
	TerrainArea          string           `json:"terrainArea"`
	Bedrooms             string           `json:"bedrooms"`
	Bathrooms            string           `json:"bathrooms"`
	Parking              *int             `json:"parking,omitempty"`
	Year                 string           `json:"year"`
	Description          string           `json:"description"`
	Features             []string         `json:"features"`
	Address              string           `json:"address"`
	City                 string           `json:"city"`
	State                string           `json:"state"`
	VirtualTourURL       string           `json:"virtualTourUrl,omitempty"`
	ExternalRedirectURL  string           `json:"externalRedirectUrl,omitempty"`
	Slug                 string           `json:"slug"`
	URLPath              string           `json:"urlPath"`
	Contact              *ContactResponse `json:"contact,omitempty"`
}

type PaginationResponse struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalListings int  `json:"totalListings"`
	PageSize      int  `json:"pageSize"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

// PageResponse - страница результатов. Пустой результат отдается как listings: [].
type PageResponse struct {
	Listings   []ListingResponse  `json:"listings"`
	Pagination PaginationResponse `json:"pagination"`
}

type PropertyTypeResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type StatsResponse struct {
	TotalProperties   int            `json:"totalProperties"`
	PropertiesForSale int            `json:"propertiesForSale"`
	PropertiesForRent int            `json:"propertiesForRent"`
	TypeBreakdown     map[string]int `json:"typeBreakdown"`
}

type FilterOptionsResponse struct {
	Categories      []string `json:"categories"`
	PriceBands      []string `json:"priceRanges"`
	BedroomOptions  []string `json:"bedroomOptions"`
	BathroomOptions []string `json:"bathroomOptions"`
	Amenities       []string `json:"amenities"`
	Locations       []string `json:"locations"`
	ListingTypes    []string `json:"listingTypes"`
}

// ErrorResponse - стандартная структура для ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	// Retryable - сбой временный, запрос можно повторить.
	Retryable bool `json:"retryable"`
}

func toListingResponse(l domain.DisplayListing) ListingResponse {
	resp := ListingResponse{
		ID:                   string(l.ID),
		Title:                l.Title,
		Location:             l.Location,
		Price:                l.Price,
		PricePerMeter:        l.PricePerMeter,
		PricePerMeterTerrain: l.PricePerMeterTerrain,
		Currency:             l.Currency,
		RawPrice:             l.RawPrice,
		Status:               l.Status,
		Type:                 l.Type,
		ListingType:          l.Operation,
		Images:               nonNil(l.Images),
		Area:                 l.Area,
		ConstructionArea:     l.ConstructionArea,
		TerrainArea:          l.TerrainArea,
		Bedrooms:             l.Bedrooms,
		Bathrooms:            l.Bathrooms,
		Parking:              l.Parking,
		Year:                 l.Year,
		Description:          l.Description,
		Features:             nonNil(l.Features),
		Address:              l.Address,
		City:                 l.City,
		State:                l.State,
		VirtualTourURL:       l.VirtualTourURL,
		ExternalRedirectURL:  l.ExternalRedirectURL,
		Slug:                 l.Slug,
		URLPath:              l.URLPath,
	}
	if len(l.Images) > 0 {
		resp.Image = l.Images[0]
	}
	if l.Contact != nil {
		resp.Contact = &ContactResponse{
			Phone:       l.Contact.Phone,
			Email:       l.Contact.Email,
			WhatsAppURL: l.Contact.WhatsAppURL,
		}
	}
	return resp
}

func toListingResponses(listings []domain.DisplayListing) []ListingResponse {
	resp := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, toListingResponse(l))
	}
	return resp
}

func toPageResponse(result *domain.PageResult) PageResponse {
	p := result.Pagination
	return PageResponse{
		Listings: toListingResponses(result.Listings),
		Pagination: PaginationResponse{
			CurrentPage:   p.CurrentPage,
			TotalPages:    p.TotalPages,
			TotalListings: p.TotalListings,
			PageSize:      p.PageSize,
			HasNext:       p.HasNext,
			HasPrev:       p.HasPrev,
		},
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
