package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"

	"marketplace-service/internal/core/domain"
)

// Envelope - общий конверт ответов API объявлений.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ErrorMessage возвращает сообщение сервера, если оно есть.
func (e Envelope) ErrorMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// ListingIDWire принимает идентификатор и строкой, и числом.
// Число сохраняется в исходной записи, без прохода через float64.
type ListingIDWire string

func (id *ListingIDWire) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ListingIDWire(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("listing id must be a string or a number: %w", err)
	}
	*id = ListingIDWire(n.String())
	return nil
}

type ContactDTO struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	WhatsApp string `json:"whatsapp"`
}

// PropertyDTO - объявление в формате бэкенда.
type PropertyDTO struct {
	ID          ListingIDWire `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Currency    string        `json:"currency"`
	Type        string        `json:"type"`
	Operation   string        `json:"operation"`
	Address     string        `json:"address"`
	City        string        `json:"city"`
	State       string        `json:"state"`
	Country     string        `json:"country,omitempty"`

	ConstructionArea          *float64 `json:"constructionArea,omitempty"`
	TerrainArea               *float64 `json:"terrainArea,omitempty"`
	AvgPricePerM2Construction *float64 `json:"avgPricePerM2Construction,omitempty"`
	AvgPricePerM2Terrain      *float64 `json:"avgPricePerM2Terrain,omitempty"`
	Bedrooms                  *float64 `json:"bedrooms,omitempty"`
	Bathrooms                 *float64 `json:"bathrooms,omitempty"`
	Parking                   *int     `json:"parking,omitempty"`

	Amenities []string `json:"amenities"`
	Images    []string `json:"images"`

	VirtualTourURL      string `json:"virtualTourUrl,omitempty"`
	ExternalRedirectURL string `json:"externalRedirectUrl,omitempty"`
	Featured            bool   `json:"featured,omitempty"`

	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
	Contact   *ContactDTO `json:"contact,omitempty"`
}

// ToDomain маппит DTO в доменную модель.
func (p PropertyDTO) ToDomain() domain.BackendListing {
	listing := domain.BackendListing{
		ID:          domain.ListingID(p.ID),
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency,
		Type:        p.Type,
		Operation:   p.Operation,
		Address:     p.Address,
		City:        p.City,
		State:       p.State,
		Country:     p.Country,

		ConstructionArea:          p.ConstructionArea,
		TerrainArea:               p.TerrainArea,
		AvgPricePerM2Construction: p.AvgPricePerM2Construction,
		AvgPricePerM2Terrain:      p.AvgPricePerM2Terrain,
		Bedrooms:                  p.Bedrooms,
		Bathrooms:                 p.Bathrooms,
		Parking:                   p.Parking,

		Amenities: p.Amenities,
		Images:    p.Images,

		VirtualTourURL:      p.VirtualTourURL,
		ExternalRedirectURL: p.ExternalRedirectURL,
		Featured:            p.Featured,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
	if p.Contact != nil {
		listing.Contact = &domain.Contact{
			Phone:    p.Contact.Phone,
			Email:    p.Contact.Email,
			WhatsApp: p.Contact.WhatsApp,
		}
	}
	return listing
}

// PaginationDTO - пагинация в формате бэкенда.
type PaginationDTO struct {
	CurrentPage       int  `json:"currentPage"`
	TotalPages        int  `json:"totalPages"`
	TotalProperties   int  `json:"totalProperties"`
	PropertiesPerPage int  `json:"propertiesPerPage"`
	HasNextPage       bool `json:"hasNextPage"`
	HasPrevPage       bool `json:"hasPrevPage"`
	NextPage          *int `json:"nextPage"`
	PrevPage          *int `json:"prevPage"`
}

// ToDomain пересчитывает флаги из счетчиков, а не доверяет hasNextPage/hasPrevPage.
func (p PaginationDTO) ToDomain() domain.Pagination {
	return domain.NewPagination(p.CurrentPage, p.TotalPages, p.TotalProperties, p.PropertiesPerPage)
}

type PropertiesData struct {
	Properties []json.RawMessage `json:"properties"`
	Pagination PaginationDTO     `json:"pagination"`
}

// DecodeIssues - что пришлось исправить при разборе страницы.
type DecodeIssues struct {
	// BadFields: индекс объявления -> поля, замененные нулевыми значениями.
	BadFields map[int][]string
	// Skipped - индексы элементов, которые не являются объектами.
	Skipped []int
}

func (i DecodeIssues) Empty() bool {
	return len(i.BadFields) == 0 && len(i.Skipped) == 0
}

func (d PropertiesData) ToDomain() (*domain.RawPage, DecodeIssues) {
	dtos, badFields, skipped := DecodeProperties(d.Properties)
	page := &domain.RawPage{
		Listings:   make([]domain.BackendListing, 0, len(dtos)),
		Pagination: d.Pagination.ToDomain(),
	}
	for _, p := range dtos {
		page.Listings = append(page.Listings, p.ToDomain())
	}
	return page, DecodeIssues{BadFields: badFields, Skipped: skipped}
}

type PropertyData struct {
	Property json.RawMessage `json:"property"`
}

type PropertyTypeDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type TypesData struct {
	Types []PropertyTypeDTO `json:"types"`
}

func (d TypesData) ToDomain() []domain.PropertyType {
	types := make([]domain.PropertyType, 0, len(d.Types))
	for _, t := range d.Types {
		types = append(types, domain.PropertyType{Value: t.Value, Label: t.Label})
	}
	return types
}

type StatsDTO struct {
	TotalProperties   int            `json:"totalProperties"`
	PropertiesForSale int            `json:"propertiesForSale"`
	PropertiesForRent int            `json:"propertiesForRent"`
	TypeBreakdown     map[string]int `json:"typeBreakdown"`
}

type StatsData struct {
	Stats StatsDTO `json:"stats"`
}

func (d StatsData) ToDomain() *domain.PropertyStats {
	return &domain.PropertyStats{
		TotalProperties:   d.Stats.TotalProperties,
		PropertiesForSale: d.Stats.PropertiesForSale,
		PropertiesForRent: d.Stats.PropertiesForRent,
		TypeBreakdown:     d.Stats.TypeBreakdown,
	}
}
