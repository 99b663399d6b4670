package contracts

import (
	"net/url"
	"strconv"
	"strings"

	"marketplace-service/internal/core/domain"
)

// EncodeQuery сериализует BackendQuery в параметры GET /properties.
// Массивы уходят повторяющимися ключами (type=casa&type=villa), пустые значения пропускаются.
// url.Values.Encode сортирует ключи, поэтому результат годится и как ключ кэша.
func EncodeQuery(q domain.BackendQuery) url.Values {
	values := url.Values{}

	addAll(values, "type", q.Types)
	addAll(values, "operation", q.Operations)
	addString(values, "city", q.City)
	addString(values, "state", q.State)

	if q.MinPrice != nil {
		values.Add("minPrice", strconv.FormatInt(*q.MinPrice, 10))
	}
	if q.MaxPrice != nil {
		values.Add("maxPrice", strconv.FormatInt(*q.MaxPrice, 10))
	}
	if q.Bedrooms != nil {
		values.Add("bedrooms", strconv.Itoa(*q.Bedrooms))
	}
	if q.Bathrooms != nil {
		values.Add("bathrooms", formatFloat(*q.Bathrooms))
	}
	if q.MinConstructionArea != nil {
		values.Add("minConstructionArea", formatFloat(*q.MinConstructionArea))
	}
	if q.Featured != nil {
		values.Add("featured", strconv.FormatBool(*q.Featured))
	}
	if q.Page > 0 {
		values.Add("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Add("limit", strconv.Itoa(q.Limit))
	}

	return values
}

func addAll(values url.Values, key string, items []string) {
	for _, item := range items {
		addString(values, key, item)
	}
}

func addString(values url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		values.Add(key, value)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
