package pipeline

import (
	"strconv"
	"strings"
	"time"

	"marketplace-service/internal/core/domain"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NormalizerConfig - параметры отображения, приходят из конфигурации приложения.
type NormalizerConfig struct {
	Locale              string
	DefaultCurrency     string
	SupportedCurrencies []string
	PlaceholderImage    string
	WhatsAppBaseURL     string
	WhatsAppMessage     string
}

// Префиксы валют в том виде, в каком их показывает витрина для es-MX.
var currencyPrefixes = map[string]string{
	"MXN": "$",
	"USD": "US$",
	"EUR": "€",
}

// ListingNormalizer превращает объявления бэкенда в объявления для витрины.
// Все методы - чистые функции: повторный вызов на том же входе дает тот же результат.
type ListingNormalizer struct {
	printer          *message.Printer
	defaultCurrency  string
	supported        map[string]struct{}
	placeholderImage string
	whatsAppBaseURL  string
	whatsAppMessage  string
}

// NewListingNormalizer - конструктор. Неизвестная локаль заменяется на es-MX.
func NewListingNormalizer(cfg NormalizerConfig) *ListingNormalizer {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		tag = language.MustParse("es-MX")
	}

	defaultCurrency := strings.ToUpper(strings.TrimSpace(cfg.DefaultCurrency))
	if _, err := currency.ParseISO(defaultCurrency); err != nil {
		defaultCurrency = "MXN"
	}

	supported := make(map[string]struct{}, len(cfg.SupportedCurrencies)+1)
	supported[defaultCurrency] = struct{}{}
	for _, code := range cfg.SupportedCurrencies {
		code = strings.ToUpper(strings.TrimSpace(code))
		if _, err := currency.ParseISO(code); err == nil {
			supported[code] = struct{}{}
		}
	}

	return &ListingNormalizer{
		printer:          message.NewPrinter(tag),
		defaultCurrency:  defaultCurrency,
		supported:        supported,
		placeholderImage: cfg.PlaceholderImage,
		whatsAppBaseURL:  cfg.WhatsAppBaseURL,
		whatsAppMessage:  cfg.WhatsAppMessage,
	}
}

// Normalize превращает одно объявление.
func (n *ListingNormalizer) Normalize(raw domain.BackendListing) domain.DisplayListing {
	listing, _ := n.normalize(raw)
	return listing
}

// NormalizeAll превращает страницу объявлений. Некорректное поле не отбрасывает
// объявление целиком: оно заменяется значением по умолчанию и попадает в warnings.
func (n *ListingNormalizer) NormalizeAll(raws []domain.BackendListing) ([]domain.DisplayListing, []domain.NormalizationWarning) {
	listings := make([]domain.DisplayListing, 0, len(raws))
	var warnings []domain.NormalizationWarning
	for _, raw := range raws {
		listing, w := n.normalize(raw)
		listings = append(listings, listing)
		warnings = append(warnings, w...)
	}
	return listings, warnings
}

// NormalizePage - NormalizeAll для целой страницы с сохранением пагинации.
func (n *ListingNormalizer) NormalizePage(raw *domain.RawPage) (*domain.PageResult, []domain.NormalizationWarning) {
	listings, warnings := n.NormalizeAll(raw.Listings)
	return &domain.PageResult{
		Listings:   listings,
		Pagination: raw.Pagination,
	}, warnings
}

func (n *ListingNormalizer) normalize(raw domain.BackendListing) (domain.DisplayListing, []domain.NormalizationWarning) {
	var warnings []domain.NormalizationWarning
	warn := func(field, reason string) {
		warnings = append(warnings, domain.NormalizationWarning{ListingID: raw.ID, Field: field, Reason: reason})
	}

	code, reason := n.resolveCurrency(raw.Currency)
	if reason != "" {
		warn("currency", reason)
	}

	typeLabel, ok := domain.BackendTypeLabels[raw.Type]
	if !ok {
		typeLabel = domain.CategoryOther
		warn("type", "unknown backend type "+strconv.Quote(raw.Type))
	}

	operation := domain.ListingTypeSale
	switch raw.Operation {
	case domain.BackendOperationSale:
	case domain.BackendOperationRent:
		operation = domain.ListingTypeRent
	default:
		warn("operation", "unknown operation "+strconv.Quote(raw.Operation))
	}

	images := make([]string, len(raw.Images))
	copy(images, raw.Images)
	if len(images) == 0 {
		images = []string{n.placeholderImage}
		warn("images", "empty image list replaced with placeholder")
	}

	features := make([]string, len(raw.Amenities))
	copy(features, raw.Amenities)

	year := formatYear(raw.CreatedAt)
	if year == domain.NotAvailable && raw.CreatedAt != "" {
		warn("createdAt", "unparsable timestamp "+strconv.Quote(raw.CreatedAt))
	}

	area := firstPositive(raw.ConstructionArea, raw.TerrainArea)

	listing := domain.DisplayListing{
		// ID передается без изменений: по нему потом открывается карточка.
		ID:       raw.ID,
		Title:    raw.Title,
		Location: joinLocation(raw.City, raw.State),

		Price:                n.formatMoney(raw.Price, code),
		PricePerMeter:        n.formatOptionalMoney(raw.AvgPricePerM2Construction, code),
		PricePerMeterTerrain: n.formatOptionalMoney(raw.AvgPricePerM2Terrain, code),
		Currency:             code,
		RawPrice:             raw.Price,

		Status:    domain.StatusAvailable,
		Type:      typeLabel,
		Operation: operation,
		Images:    images,

		Area:             n.formatArea(area),
		ConstructionArea: n.formatArea(raw.ConstructionArea),
		TerrainArea:      n.formatArea(raw.TerrainArea),
		Bedrooms:         n.formatRooms(raw.Bedrooms, "recámara", "recámaras"),
		Bathrooms:        n.formatRooms(raw.Bathrooms, "baño", "baños"),
		Parking:          copyInt(raw.Parking),
		Year:             year,

		Description: raw.Description,
		Features:    features,
		Address:     raw.Address,
		City:        raw.City,
		State:       raw.State,

		VirtualTourURL:      raw.VirtualTourURL,
		ExternalRedirectURL: raw.ExternalRedirectURL,
		RawArea:             copyFloat(area),
	}

	listing.Slug = GenerateSlug(raw.Title)
	listing.URLPath = PropertyURLPath(raw.ID, listing.Slug)
	if raw.Contact != nil {
		listing.Contact = &domain.DisplayContact{
			Phone:       raw.Contact.Phone,
			Email:       raw.Contact.Email,
			WhatsAppURL: n.whatsAppURL(raw.Contact, raw.Title),
		}
	}

	return listing, warnings
}

// resolveCurrency возвращает код валюты и причину замены на валюту по умолчанию.
func (n *ListingNormalizer) resolveCurrency(raw string) (string, string) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return n.defaultCurrency, "missing currency, using " + n.defaultCurrency
	}
	if _, err := currency.ParseISO(code); err != nil {
		return n.defaultCurrency, "invalid currency " + strconv.Quote(raw) + ", using " + n.defaultCurrency
	}
	if _, ok := n.supported[code]; !ok {
		return n.defaultCurrency, "unsupported currency " + code + ", using " + n.defaultCurrency
	}
	return code, ""
}

// formatMoney: группировка по локали, ноль знаков после запятой.
func (n *ListingNormalizer) formatMoney(amount float64, code string) string {
	prefix, ok := currencyPrefixes[code]
	if !ok {
		prefix = code + " "
	}
	return prefix + n.printer.Sprintf("%v", number.Decimal(amount, number.MaxFractionDigits(0)))
}

// formatOptionalMoney не вычисляет цену за м² сама: только готовое значение бэкенда.
func (n *ListingNormalizer) formatOptionalMoney(amount *float64, code string) string {
	if amount == nil || *amount <= 0 {
		return domain.NotAvailable
	}
	return n.formatMoney(*amount, code)
}

func (n *ListingNormalizer) formatArea(area *float64) string {
	if area == nil || *area <= 0 {
		return domain.NotAvailable
	}
	return n.formatQuantity(*area) + " m²"
}

func (n *ListingNormalizer) formatRooms(count *float64, singular, plural string) string {
	if count == nil || *count <= 0 {
		return domain.NotAvailable
	}
	unit := plural
	if *count == 1 {
		unit = singular
	}
	return n.formatQuantity(*count) + " " + unit
}

func (n *ListingNormalizer) formatQuantity(v float64) string {
	return n.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2)))
}

func formatYear(createdAt string) string {
	if createdAt == "" {
		return domain.NotAvailable
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, createdAt); err == nil {
			return strconv.Itoa(t.Year())
		}
	}
	return domain.NotAvailable
}

func joinLocation(city, state string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{strings.TrimSpace(city), strings.TrimSpace(state)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func firstPositive(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil && *v > 0 {
			return v
		}
	}
	return nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
