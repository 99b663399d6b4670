package listings_api_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/contracts"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
)

// Ответы больше этого размера считаются ошибкой транспорта.
const maxResponseBytes = 8 << 20

// ListingsAPIClient - клиент API объявлений (GET /properties и соседние эндпоинты).
// Не повторяет запросы и ничего не кэширует: это делает вызывающий слой.
type ListingsAPIClient struct {
	baseURL    string // Например, "http://localhost:8000/v1"
	httpClient *http.Client
}

// NewListingsAPIClient - конструктор. timeout ограничивает каждый запрос целиком.
func NewListingsAPIClient(baseURL string, timeout time.Duration) *ListingsAPIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ListingsAPIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchPage реализует port.ListingSource.
func (c *ListingsAPIClient) FetchPage(ctx context.Context, query domain.BackendQuery) (*domain.RawPage, error) {
	var data contracts.PropertiesData
	if err := c.getEnvelope(ctx, "FetchPage", "/properties", contracts.EncodeQuery(query), &data); err != nil {
		return nil, err
	}

	page, issues := data.ToDomain()
	if !issues.Empty() {
		contextkeys.LoggerFromContext(ctx).Warn("Some listings had malformed fields", port.Fields{
			"component":  "ListingsAPIClient",
			"bad_fields": issues.BadFields,
			"skipped":    issues.Skipped,
		})
	}
	return page, nil
}

// GetByID реализует port.ListingSource. ID уходит в путь как есть (с экранированием).
func (c *ListingsAPIClient) GetByID(ctx context.Context, id domain.ListingID) (*domain.BackendListing, error) {
	var data contracts.PropertyData
	err := c.getEnvelope(ctx, "GetByID", "/properties/"+url.PathEscape(string(id)), nil, &data)
	if err != nil {
		var statusErr *domain.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", domain.ErrListingNotFound, err)
		}
		return nil, err
	}

	dto, badFields, err := contracts.DecodeProperty(data.Property)
	if err != nil {
		return nil, &domain.TransportError{Cause: fmt.Errorf("failed to decode property: %w", err)}
	}
	if len(badFields) > 0 {
		contextkeys.LoggerFromContext(ctx).Warn("Listing had malformed fields", port.Fields{
			"component":  "ListingsAPIClient",
			"listing_id": dto.ID,
			"bad_fields": badFields,
		})
	}
	listing := dto.ToDomain()
	return &listing, nil
}

func (c *ListingsAPIClient) GetTypes(ctx context.Context) ([]domain.PropertyType, error) {
	var data contracts.TypesData
	if err := c.getEnvelope(ctx, "GetTypes", "/properties/types", nil, &data); err != nil {
		return nil, err
	}
	return data.ToDomain(), nil
}

func (c *ListingsAPIClient) GetStats(ctx context.Context) (*domain.PropertyStats, error) {
	var data contracts.StatsData
	if err := c.getEnvelope(ctx, "GetStats", "/properties/stats", nil, &data); err != nil {
		return nil, err
	}
	return data.ToDomain(), nil
}

// doRequest - внутренний хелпер для выполнения запросов
func (c *ListingsAPIClient) doRequest(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// getEnvelope выполняет один GET и разбирает конверт {success, data, message}.
// Все ошибки приводятся к TransportError, HTTPStatusError или DomainError.
func (c *ListingsAPIClient) getEnvelope(ctx context.Context, method, path string, query url.Values, out interface{}) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ListingsAPIClient",
		"method":    method,
		"url":       fullURL,
	})
	clientLogger.Debug("Sending request to listings API", nil)
	startTime := time.Now()

	resp, err := c.doRequest(ctx, http.MethodGet, fullURL)
	if err != nil {
		clientLogger.Error("Failed to perform request to listings API", err, nil)
		return &domain.TransportError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		clientLogger.Error("Failed to read response body", err, port.Fields{"status_code": resp.StatusCode})
		return &domain.TransportError{Cause: fmt.Errorf("failed to read response body: %w", err)}
	}
	if len(body) > maxResponseBytes {
		return &domain.TransportError{Cause: fmt.Errorf("response body exceeds %d bytes", maxResponseBytes)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &domain.HTTPStatusError{
			Code:    resp.StatusCode,
			Body:    string(body),
			Message: extractMessage(body),
		}
		clientLogger.Warn("Received non-2xx response from listings API", port.Fields{
			"status_code": resp.StatusCode,
			"message":     statusErr.Message,
		})
		return statusErr
	}

	if err := contracts.Validate(contracts.EnvelopeSchema, body); err != nil {
		clientLogger.Error("Listings API response does not match envelope contract", err, nil)
		return &domain.TransportError{Cause: err}
	}

	var envelope contracts.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		clientLogger.Error("Failed to decode envelope", err, nil)
		return &domain.TransportError{Cause: fmt.Errorf("failed to decode envelope: %w", err)}
	}

	if !envelope.Success {
		message := envelope.ErrorMessage()
		if message == "" {
			message = "request was not successful"
		}
		clientLogger.Warn("Listings API returned success=false", port.Fields{"message": message})
		return &domain.DomainError{Message: message}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			clientLogger.Error("Failed to decode envelope data", err, nil)
			return &domain.TransportError{Cause: fmt.Errorf("failed to decode response data: %w", err)}
		}
	}

	clientLogger.Debug("Successfully received response from listings API", port.Fields{
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(startTime).Milliseconds(),
	})
	return nil
}

// extractMessage достает message/error из тела ошибки, если оно в формате конверта.
func extractMessage(body []byte) string {
	var envelope contracts.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.ErrorMessage()
}
