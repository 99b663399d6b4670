package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"marketplace-service/internal/adapters/rest"
	"marketplace-service/internal/adapters/static_fixture"
	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/pipeline"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/usecase"
)

type failingSource struct {
	err error
}

func (f failingSource) FetchPage(ctx context.Context, q domain.BackendQuery) (*domain.RawPage, error) {
	return nil, f.err
}

func (f failingSource) GetByID(ctx context.Context, id domain.ListingID) (*domain.BackendListing, error) {
	return nil, f.err
}

func (f failingSource) GetTypes(ctx context.Context) ([]domain.PropertyType, error) {
	return nil, f.err
}

func (f failingSource) GetStats(ctx context.Context) (*domain.PropertyStats, error) {
	return nil, f.err
}

// recordingSource запоминает идентификаторы, дошедшие до источника.
type recordingSource struct {
	failingSource
	ids []domain.ListingID
}

func (s *recordingSource) GetByID(ctx context.Context, id domain.ListingID) (*domain.BackendListing, error) {
	s.ids = append(s.ids, id)
	return nil, domain.ErrListingNotFound
}

// supersededCoordinator всегда проигрывает более новому запросу.
type supersededCoordinator struct{}

func (supersededCoordinator) Submit(ctx context.Context, sessionID string, c domain.FilterCriteria, page, limit int) (*domain.PageResult, error) {
	return nil, domain.ErrSuperseded
}

func (supersededCoordinator) Latest(sessionID string) (*domain.PageResult, bool) {
	return nil, false
}

func newHandlers(t *testing.T, source port.ListingSource) *rest.PropertyHandlers {
	t.Helper()
	translator := pipeline.NewCriteriaTranslator(12, 50)
	normalizer := pipeline.NewListingNormalizer(pipeline.NormalizerConfig{
		Locale:              "es-MX",
		DefaultCurrency:     "MXN",
		SupportedCurrencies: []string{"MXN", "USD"},
		PlaceholderImage:    "https://img/placeholder.jpg",
		WhatsAppBaseURL:     "https://wa.me/",
		WhatsAppMessage:     "Hola:",
	})
	search := usecase.NewSearchListingsUseCase(source, translator, normalizer, pipeline.NewLocalRefiner())

	return rest.NewPropertyHandlers(
		usecase.NewSearchCoordinator(search, 0),
		usecase.NewGetListingsUseCase(source, translator, normalizer),
		usecase.NewGetFeaturedListingsUseCase(source, translator, normalizer),
		usecase.NewGetListingDetailsUseCase(source, normalizer),
		usecase.NewGetPropertyTypesUseCase(source),
		usecase.NewGetPropertyStatsUseCase(source),
		usecase.NewGetFilterOptionsUseCase(),
	)
}

func newFixtureRouter(t *testing.T) http.Handler {
	t.Helper()
	source, err := static_fixture.NewStaticListingSource()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return rest.NewRouter(rest.ServerConfig{AllowedOrigins: []string{"*"}}, newHandlers(t, source), contextkeys.NoopLogger())
}

func get(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v: %s", err, rec.Body.String())
	}
	return v
}

func TestSearchListings_FiltersAndPaginates(t *testing.T) {
	h := newFixtureRouter(t)

	rec := get(t, h, "/api/v1/properties/search?category=Casa&limit=4", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	page := decode[rest.PageResponse](t, rec)
	if len(page.Listings) != 4 || page.Pagination.TotalListings != 6 || !page.Pagination.HasNext {
		t.Fatalf("unexpected page %+v", page.Pagination)
	}
	for _, l := range page.Listings {
		if l.Type != "Casa" {
			t.Fatalf("unexpected type %q", l.Type)
		}
	}
	if rec.Header().Get(rest.SessionHeader) == "" {
		t.Fatalf("session id must be issued")
	}
	if rec.Header().Get("X-Trace-ID") == "" {
		t.Fatalf("trace id must be echoed")
	}
}

func TestSearchListings_EmptyResultIsNotAnError(t *testing.T) {
	h := newFixtureRouter(t)

	rec := get(t, h, "/api/v1/properties/search?location=Atlantis", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["listings"]) != "[]" {
		t.Fatalf("expected empty array got %s", raw["listings"])
	}
}

func TestSearchListings_RejectsBadParameters(t *testing.T) {
	h := newFixtureRouter(t)

	for _, target := range []string{
		"/api/v1/properties/search?areaMin=mucho",
		"/api/v1/properties/search?limit=-1",
		"/api/v1/properties/search?areaMax=-5",
		"/api/v1/properties?operation=permuta",
		"/api/v1/properties?featured=quizas",
	} {
		rec := get(t, h, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", target, rec.Code)
		}
		if body := decode[rest.ErrorResponse](t, rec); body.Error == "" || body.Retryable {
			t.Fatalf("%s: unexpected body %+v", target, body)
		}
	}
}

func TestLatestSearch_ReturnsCommittedResultForSession(t *testing.T) {
	h := newFixtureRouter(t)
	session := http.Header{rest.SessionHeader: {"tab-1"}}

	if rec := get(t, h, "/api/v1/properties/search/latest", session); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any search got %d", rec.Code)
	}

	get(t, h, "/api/v1/properties/search?location=Valle%20de%20Bravo", session)

	rec := get(t, h, "/api/v1/properties/search/latest", session)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if page := decode[rest.PageResponse](t, rec); page.Pagination.TotalListings != 2 {
		t.Fatalf("unexpected latest result %+v", page.Pagination)
	}
	if got := rec.Header().Get(rest.SessionHeader); got != "tab-1" {
		t.Fatalf("client session id must be kept, got %q", got)
	}

	other := http.Header{rest.SessionHeader: {"tab-2"}}
	if rec := get(t, h, "/api/v1/properties/search/latest", other); rec.Code != http.StatusNotFound {
		t.Fatalf("sessions must not share results, got %d", rec.Code)
	}
}

func TestGetListingDetails(t *testing.T) {
	h := newFixtureRouter(t)

	rec := get(t, h, "/api/v1/properties/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	listing := decode[rest.ListingResponse](t, rec)
	if listing.ID != "1" || listing.Image == "" || listing.Contact == nil || listing.Contact.WhatsAppURL == "" {
		t.Fatalf("unexpected listing %+v", listing)
	}

	if rec := get(t, h, "/api/v1/properties/999", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestDictionaries(t *testing.T) {
	h := newFixtureRouter(t)

	featured := decode[[]rest.ListingResponse](t, get(t, h, "/api/v1/properties/featured?limit=2", nil))
	if len(featured) != 2 {
		t.Fatalf("expected 2 featured got %d", len(featured))
	}

	stats := decode[rest.StatsResponse](t, get(t, h, "/api/v1/properties/stats", nil))
	if stats.TotalProperties != 10 || stats.PropertiesForRent != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	types := decode[[]rest.PropertyTypeResponse](t, get(t, h, "/api/v1/properties/types", nil))
	if len(types) == 0 {
		t.Fatalf("expected property types")
	}

	opts := decode[rest.FilterOptionsResponse](t, get(t, h, "/api/v1/filters/options", nil))
	if len(opts.PriceBands) != len(domain.PriceBands) || len(opts.Categories) != len(domain.Categories) {
		t.Fatalf("unexpected options %+v", opts)
	}

	listings := decode[rest.PageResponse](t, get(t, h, "/api/v1/properties?operation=renta", nil))
	if listings.Pagination.TotalListings != 1 || listings.Listings[0].ListingType != domain.ListingTypeRent {
		t.Fatalf("unexpected listings %+v", listings)
	}

	if rec := get(t, h, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("health check failed: %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		code      int
		retryable bool
		message   string
	}{
		{"transport", &domain.TransportError{Cause: context.DeadlineExceeded}, http.StatusServiceUnavailable, true, ""},
		{"upstream 500", &domain.HTTPStatusError{Code: 500, Message: "database down"}, http.StatusBadGateway, true, "database down"},
		{"upstream 404", &domain.HTTPStatusError{Code: 404}, http.StatusNotFound, false, ""},
		{"domain", &domain.DomainError{Message: "invalid filter"}, http.StatusUnprocessableEntity, false, "invalid filter"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := rest.NewRouter(rest.ServerConfig{}, newHandlers(t, failingSource{err: tc.err}), contextkeys.NoopLogger())

			rec := get(t, h, "/api/v1/properties/search?q=vista", nil)
			if rec.Code != tc.code {
				t.Fatalf("expected %d got %d", tc.code, rec.Code)
			}
			body := decode[rest.ErrorResponse](t, rec)
			if body.Retryable != tc.retryable {
				t.Fatalf("unexpected retryable flag %+v", body)
			}
			if tc.message != "" && body.Error != tc.message {
				t.Fatalf("expected message %q got %q", tc.message, body.Error)
			}
		})
	}
}

func TestSearchListings_SupersededIsConflict(t *testing.T) {
	source, err := static_fixture.NewStaticListingSource()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	translator := pipeline.NewCriteriaTranslator(12, 50)
	normalizer := pipeline.NewListingNormalizer(pipeline.NormalizerConfig{Locale: "es-MX"})
	handlers := rest.NewPropertyHandlers(
		supersededCoordinator{},
		usecase.NewGetListingsUseCase(source, translator, normalizer),
		usecase.NewGetFeaturedListingsUseCase(source, translator, normalizer),
		usecase.NewGetListingDetailsUseCase(source, normalizer),
		usecase.NewGetPropertyTypesUseCase(source),
		usecase.NewGetPropertyStatsUseCase(source),
		usecase.NewGetFilterOptionsUseCase(),
	)
	h := rest.NewRouter(rest.ServerConfig{}, handlers, contextkeys.NoopLogger())

	if rec := get(t, h, "/api/v1/properties/search", nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	source, err := static_fixture.NewStaticListingSource()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	h := rest.NewRouter(rest.ServerConfig{RateLimit: 0.001, RateBurst: 1}, newHandlers(t, source), contextkeys.NoopLogger())

	if rec := get(t, h, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("first request must pass, got %d", rec.Code)
	}
	rec := get(t, h, "/healthz", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
	if !decode[rest.ErrorResponse](t, rec).Retryable {
		t.Fatalf("rate limit response must be retryable")
	}
}

func TestSearchListings_WithoutSessionHeaderKeepsNoResult(t *testing.T) {
	h := newFixtureRouter(t)

	for i := 0; i < 5; i++ {
		rec := get(t, h, "/api/v1/properties/search?location=Monterrey", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
		issued := rec.Header().Get(rest.SessionHeader)
		if issued == "" {
			t.Fatalf("a session id must be offered to the client")
		}

		latest := get(t, h, "/api/v1/properties/search/latest", http.Header{rest.SessionHeader: {issued}})
		if latest.Code != http.StatusNotFound {
			t.Fatalf("search without a session must not be retained, got %d", latest.Code)
		}
	}
}

func TestGetListingDetails_PassesIdentifierVerbatim(t *testing.T) {
	for _, id := range []domain.ListingID{"ab/12", "50%off", "a b", "12345678901234567890"} {
		source := &recordingSource{failingSource: failingSource{err: errors.New("unused")}}
		h := rest.NewRouter(rest.ServerConfig{}, newHandlers(t, source), contextkeys.NoopLogger())

		// Путь строится так же, как в ссылке на карточку объявления.
		path := pipeline.PropertyURLPath(id, "casa")
		target := "/api/v1/properties/" + strings.Split(strings.TrimPrefix(path, "/propiedad/"), "/")[0]

		rec := get(t, h, target, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%q: expected 404 got %d", id, rec.Code)
		}
		if len(source.ids) != 1 || source.ids[0] != id {
			t.Fatalf("%q: id reaching the source was %q", id, source.ids)
		}
	}
}

func TestGetListingDetails_RejectsBadEscaping(t *testing.T) {
	h := newFixtureRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/x", nil)
	req.URL = &url.URL{Path: "/api/v1/properties/ab/12", RawPath: "/api/v1/properties/ab%2G12"}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRateLimit_IgnoresForwardedHeadersByDefault(t *testing.T) {
	source, err := static_fixture.NewStaticListingSource()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	h := rest.NewRouter(rest.ServerConfig{RateLimit: 0.001, RateBurst: 1}, newHandlers(t, source), contextkeys.NoopLogger())

	first := get(t, h, "/healthz", http.Header{"X-Forwarded-For": {"203.0.113.1"}})
	second := get(t, h, "/healthz", http.Header{"X-Forwarded-For": {"203.0.113.2"}})
	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Fatalf("forwarded header must not reset the limit: %d %d", first.Code, second.Code)
	}
}

func TestRateLimit_UsesForwardedAddressBehindTrustedProxy(t *testing.T) {
	source, err := static_fixture.NewStaticListingSource()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	cfg := rest.ServerConfig{RateLimit: 0.001, RateBurst: 1, TrustProxyHeaders: true}
	h := rest.NewRouter(cfg, newHandlers(t, source), contextkeys.NoopLogger())

	for _, ip := range []string{"203.0.113.1", "203.0.113.2"} {
		if rec := get(t, h, "/healthz", http.Header{"X-Forwarded-For": {ip}}); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", ip, rec.Code)
		}
	}
	if rec := get(t, h, "/healthz", http.Header{"X-Forwarded-For": {"203.0.113.1"}}); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for a repeated client got %d", rec.Code)
	}
}
