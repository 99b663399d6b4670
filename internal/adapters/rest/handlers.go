package rest

import (
	"net/http"
	"net/url"
	"strings"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

type PropertyHandlers struct {
	search        usecases_port.SearchCoordinatorPort
	getListings   usecases_port.GetListingsUseCase
	getFeatured   usecases_port.GetFeaturedListingsUseCase
	getDetails    usecases_port.GetListingDetailsUseCase
	getTypes      usecases_port.GetPropertyTypesUseCase
	getStats      usecases_port.GetPropertyStatsUseCase
	filterOptions usecases_port.GetFilterOptionsUseCase
}

func NewPropertyHandlers(
	search usecases_port.SearchCoordinatorPort,
	getListings usecases_port.GetListingsUseCase,
	getFeatured usecases_port.GetFeaturedListingsUseCase,
	getDetails usecases_port.GetListingDetailsUseCase,
	getTypes usecases_port.GetPropertyTypesUseCase,
	getStats usecases_port.GetPropertyStatsUseCase,
	filterOptions usecases_port.GetFilterOptionsUseCase,
) *PropertyHandlers {
	return &PropertyHandlers{
		search:        search,
		getListings:   getListings,
		getFeatured:   getFeatured,
		getDetails:    getDetails,
		getTypes:      getTypes,
		getStats:      getStats,
		filterOptions: filterOptions,
	}
}

// SearchListings - GET /api/v1/properties/search.
// Параметры: q, category, location, priceRange, bedrooms, bathrooms, areaMin, areaMax,
// amenities, listingType, page, limit.
func (h *PropertyHandlers) SearchListings(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	req := SearchRequest{
		SearchTerm:   q.str("q"),
		Category:     q.str("category"),
		Location:     q.str("location"),
		PriceBand:    q.str("priceRange"),
		BedroomsMin:  q.str("bedrooms"),
		BathroomsMin: q.str("bathrooms"),
		AreaMin:      q.optionalFloat("areaMin"),
		AreaMax:      q.optionalFloat("areaMax"),
		Amenities:    q.list("amenities"),
		ListingType:  q.str("listingType"),
		Page:         q.intValue("page"),
		Limit:        q.intValue("limit"),
	}
	if q.err != nil {
		WriteJSONError(w, http.StatusBadRequest, q.err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	sessionID := contextkeys.SessionIDFromContext(r.Context())
	result, err := h.search.Submit(r.Context(), sessionID, req.ToCriteria(), req.Page, req.Limit)
	if err != nil {
		RespondWithError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPageResponse(result))
}

// LatestSearch - GET /api/v1/properties/search/latest: последний зафиксированный результат сессии.
func (h *PropertyHandlers) LatestSearch(w http.ResponseWriter, r *http.Request) {
	sessionID := contextkeys.SessionIDFromContext(r.Context())
	result, ok := h.search.Latest(sessionID)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "no completed search for this session")
		return
	}
	RespondWithJSON(w, http.StatusOK, toPageResponse(result))
}

// GetListings - GET /api/v1/properties с параметрами в словаре бэкенда.
func (h *PropertyHandlers) GetListings(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	req := ListingsRequest{
		Types:               q.list("type"),
		Operations:          q.list("operation"),
		City:                q.str("city"),
		State:               q.str("state"),
		MinPrice:            q.optionalInt64("minPrice"),
		MaxPrice:            q.optionalInt64("maxPrice"),
		Bedrooms:            q.optionalInt("bedrooms"),
		Bathrooms:           q.optionalFloat("bathrooms"),
		MinConstructionArea: q.optionalFloat("minConstructionArea"),
		Featured:            q.optionalBool("featured"),
		Page:                q.intValue("page"),
		Limit:               q.intValue("limit"),
	}
	if q.err != nil {
		WriteJSONError(w, http.StatusBadRequest, q.err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := h.getListings.Execute(r.Context(), req.ToQuery())
	if err != nil {
		RespondWithError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPageResponse(result))
}

func (h *PropertyHandlers) GetFeaturedListings(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	limit := q.intValue("limit")
	if q.err != nil || limit < 0 {
		WriteJSONError(w, http.StatusBadRequest, "invalid limit value")
		return
	}

	listings, err := h.getFeatured.Execute(r.Context(), limit)
	if err != nil {
		RespondWithError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingResponses(listings))
}

func (h *PropertyHandlers) GetListingDetails(w http.ResponseWriter, r *http.Request) {
	// chi отдает сырой сегмент пути, если в запросе есть экранирование (%2F).
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(id)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "invalid listing id")
			return
		}
		id = unescaped
	}
	if strings.TrimSpace(id) == "" {
		WriteJSONError(w, http.StatusBadRequest, "listing id is required")
		return
	}

	listing, err := h.getDetails.Execute(r.Context(), domain.ListingID(id))
	if err != nil {
		RespondWithError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingResponse(*listing))
}

func (h *PropertyHandlers) GetPropertyTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.getTypes.Execute(r.Context())
	if err != nil {
		RespondWithError(w, r, err)
		return
	}
	resp := make([]PropertyTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, PropertyTypeResponse{Value: t.Value, Label: t.Label})
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func (h *PropertyHandlers) GetPropertyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.getStats.Execute(r.Context())
	if err != nil {
		RespondWithError(w, r, err)
		return
	}
	breakdown := stats.TypeBreakdown
	if breakdown == nil {
		breakdown = map[string]int{}
	}
	RespondWithJSON(w, http.StatusOK, StatsResponse{
		TotalProperties:   stats.TotalProperties,
		PropertiesForSale: stats.PropertiesForSale,
		PropertiesForRent: stats.PropertiesForRent,
		TypeBreakdown:     breakdown,
	})
}

func (h *PropertyHandlers) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts := h.filterOptions.Execute(r.Context())
	RespondWithJSON(w, http.StatusOK, FilterOptionsResponse{
		Categories:      nonNil(opts.Categories),
		PriceBands:      nonNil(opts.PriceBands),
		BedroomOptions:  nonNil(opts.BedroomOptions),
		BathroomOptions: nonNil(opts.BathroomOptions),
		Amenities:       nonNil(opts.Amenities),
		Locations:       nonNil(opts.Locations),
		ListingTypes:    nonNil(opts.ListingTypes),
	})
}

func (h *PropertyHandlers) Health(w http.ResponseWriter, r *http.Request) {
	contextkeys.LoggerFromContext(r.Context()).Debug("Health check", port.Fields{"handler": "Health"})
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
