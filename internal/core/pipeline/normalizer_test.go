package pipeline_test

import (
	"net/url"
	"reflect"
	"testing"

	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/pipeline"
)

const placeholder = "https://images.unsplash.com/photo-1580587771525-78b9dba3b914?ixlib=rb-4.0.3&auto=format&fit=crop&w=1200&h=800&q=80"

func newNormalizer() *pipeline.ListingNormalizer {
	return pipeline.NewListingNormalizer(pipeline.NormalizerConfig{
		Locale:              "en-US",
		DefaultCurrency:     "MXN",
		SupportedCurrencies: []string{"MXN", "USD"},
		PlaceholderImage:    placeholder,
		WhatsAppBaseURL:     "https://wa.me/",
		WhatsAppMessage:     "Hola, me interesa obtener más información sobre esta propiedad:",
	})
}

func sampleListing() domain.BackendListing {
	return domain.BackendListing{
		ID:                        "550e8400-e29b-41d4-a716-446655440000",
		Title:                     "Villa Moderna en Los Cabos",
		Description:               "Vista al océano",
		Price:                     1850000,
		Currency:                  "MXN",
		Type:                      domain.BackendTypeHouse,
		Operation:                 domain.BackendOperationSale,
		Address:                   "Pedregal",
		City:                      "Los Cabos",
		State:                     "Baja California Sur",
		ConstructionArea:          ptr(450.0),
		AvgPricePerM2Construction: ptr(8500.0),
		Bedrooms:                  ptr(1.0),
		Bathrooms:                 ptr(2.5),
		Parking:                   ptr(2),
		Amenities:                 []string{"Piscina", "Terraza"},
		Images:                    []string{"https://img/1.jpg", "https://img/2.jpg"},
		CreatedAt:                 "2023-01-15T00:00:00Z",
		Contact:                   &domain.Contact{Phone: "+52 55 1234 5678"},
	}
}

func TestNormalize_FormatsDisplayFields(t *testing.T) {
	n := newNormalizer()
	got := n.Normalize(sampleListing())

	checks := map[string][2]string{
		"price":          {got.Price, "$1,850,000"},
		"price per m2":   {got.PricePerMeter, "$8,500"},
		"terrain per m2": {got.PricePerMeterTerrain, domain.NotAvailable},
		"area":           {got.Area, "450 m²"},
		"terrain area":   {got.TerrainArea, domain.NotAvailable},
		"bedrooms":       {got.Bedrooms, "1 recámara"},
		"bathrooms":      {got.Bathrooms, "2.5 baños"},
		"type":           {got.Type, "Casa"},
		"operation":      {got.Operation, domain.ListingTypeSale},
		"status":         {got.Status, domain.StatusAvailable},
		"location":       {got.Location, "Los Cabos, Baja California Sur"},
		"year":           {got.Year, "2023"},
		"slug":           {got.Slug, "villa-moderna-en-los-cabos"},
		"url path":       {got.URLPath, "/propiedad/550e8400-e29b-41d4-a716-446655440000/villa-moderna-en-los-cabos"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Fatalf("%s: expected %q got %q", name, c[1], c[0])
		}
	}
	if got.RawPrice != 1850000 || got.Parking == nil || *got.Parking != 2 {
		t.Fatalf("raw values not carried: %+v", got)
	}
	if got.RawArea == nil || *got.RawArea != 450 {
		t.Fatalf("raw area not carried: %v", got.RawArea)
	}
}

func TestNormalize_PreservesIdentifier(t *testing.T) {
	n := newNormalizer()
	for _, id := range []domain.ListingID{"550e8400-e29b-41d4-a716-446655440000", "12345678901234567890", "abc-007", ""} {
		raw := sampleListing()
		raw.ID = id
		if got := n.Normalize(raw); got.ID != id {
			t.Fatalf("expected id %q got %q", id, got.ID)
		}
	}
}

func TestNormalize_PlaceholderForEmptyImages(t *testing.T) {
	n := newNormalizer()
	raw := sampleListing()
	raw.Images = nil

	listings, warnings := n.NormalizeAll([]domain.BackendListing{raw})
	if len(listings[0].Images) != 1 || listings[0].Images[0] != placeholder {
		t.Fatalf("expected placeholder got %v", listings[0].Images)
	}
	if !hasWarning(warnings, "images") {
		t.Fatalf("expected images warning got %v", warnings)
	}
	if raw.Images != nil {
		t.Fatalf("input must not be mutated")
	}
}

func TestNormalize_CurrencyIsDeterministic(t *testing.T) {
	n := newNormalizer()

	mxn := sampleListing()
	usd := sampleListing()
	usd.Currency = "usd"

	if got := n.Normalize(mxn).Price; got != "$1,850,000" {
		t.Fatalf("MXN: got %q", got)
	}
	gotUSD := n.Normalize(usd)
	if gotUSD.Price != "US$1,850,000" || gotUSD.Currency != "USD" {
		t.Fatalf("USD: got %q %q", gotUSD.Price, gotUSD.Currency)
	}
	if n.Normalize(usd).Price != gotUSD.Price {
		t.Fatalf("same input must format the same way")
	}
}

func TestNormalize_FallbacksProduceWarnings(t *testing.T) {
	n := newNormalizer()
	raw := sampleListing()
	raw.Type = "castillo"
	raw.Currency = "JPY"
	raw.Operation = "permuta"
	raw.CreatedAt = "ayer"
	raw.Bedrooms = nil
	raw.Bathrooms = ptr(0.0)

	listings, warnings := n.NormalizeAll([]domain.BackendListing{raw})
	got := listings[0]
	if got.Type != domain.CategoryOther || got.Currency != "MXN" || got.Operation != domain.ListingTypeSale {
		t.Fatalf("unexpected fallbacks %+v", got)
	}
	if got.Year != domain.NotAvailable || got.Bedrooms != domain.NotAvailable || got.Bathrooms != domain.NotAvailable {
		t.Fatalf("expected N/A sentinels got %q %q %q", got.Year, got.Bedrooms, got.Bathrooms)
	}
	for _, field := range []string{"type", "currency", "operation", "createdAt"} {
		if !hasWarning(warnings, field) {
			t.Fatalf("expected warning for %s, got %v", field, warnings)
		}
	}
}

func TestNormalize_RentOperation(t *testing.T) {
	n := newNormalizer()
	raw := sampleListing()
	raw.Operation = domain.BackendOperationRent

	if got := n.Normalize(raw).Operation; got != domain.ListingTypeRent {
		t.Fatalf("expected Renta got %q", got)
	}
}

func TestNormalize_IsIdempotent(t *testing.T) {
	n := newNormalizer()
	raw := sampleListing()

	first := n.Normalize(raw)
	second := n.Normalize(raw)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization must be deterministic:\n%+v\n%+v", first, second)
	}
}

func TestNormalize_WhatsAppLink(t *testing.T) {
	n := newNormalizer()
	got := n.Normalize(sampleListing())

	text := "Hola, me interesa obtener más información sobre esta propiedad: Villa Moderna en Los Cabos"
	want := "https://wa.me/525512345678?" + url.Values{"text": {text}}.Encode()
	if got.Contact == nil || got.Contact.WhatsAppURL != want {
		t.Fatalf("expected %q got %+v", want, got.Contact)
	}

	raw := sampleListing()
	raw.Contact = &domain.Contact{Email: "ventas@example.com"}
	if link := n.Normalize(raw).Contact.WhatsAppURL; link != "" {
		t.Fatalf("no phone means no link, got %q", link)
	}
}

func TestNormalizePage_KeepsPagination(t *testing.T) {
	n := newNormalizer()
	raw := &domain.RawPage{
		Listings:   []domain.BackendListing{sampleListing(), sampleListing()},
		Pagination: domain.NewPagination(2, 3, 30, 12),
	}

	page, warnings := n.NormalizePage(raw)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	if len(page.Listings) != 2 || page.Pagination != raw.Pagination {
		t.Fatalf("unexpected page %+v", page.Pagination)
	}
}

func TestNewListingNormalizer_BadLocaleFallsBack(t *testing.T) {
	n := pipeline.NewListingNormalizer(pipeline.NormalizerConfig{Locale: "not a locale", DefaultCurrency: "???"})
	got := n.Normalize(sampleListing())
	if got.Currency != "MXN" {
		t.Fatalf("expected MXN default got %q", got.Currency)
	}
	if got.Price == "" {
		t.Fatalf("price must still be formatted")
	}
}

func hasWarning(warnings []domain.NormalizationWarning, field string) bool {
	for _, w := range warnings {
		if w.Field == field {
			return true
		}
	}
	return false
}
