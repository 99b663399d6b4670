package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeError(w, statusCode, ErrorResponse{Error: message})
}

func writeError(w http.ResponseWriter, statusCode int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// RespondWithJSON отправляет успешный ответ
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondWithError переводит ошибку пайплайна в HTTP-ответ.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var (
		transportErr *domain.TransportError
		statusErr    *domain.HTTPStatusError
		domainErr    *domain.DomainError
	)
	switch {
	case errors.Is(err, domain.ErrSuperseded):
		writeError(w, http.StatusConflict, ErrorResponse{Error: "request superseded by a newer search"})
	case errors.Is(err, domain.ErrListingNotFound):
		writeError(w, http.StatusNotFound, ErrorResponse{Error: "listing not found"})
	case errors.As(err, &transportErr):
		logger.Warn("Listings backend unavailable", port.Fields{"error": err.Error()})
		writeError(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:     "listings service is temporarily unavailable, please try again",
			Retryable: true,
		})
	case errors.As(err, &statusErr):
		message := statusErr.Message
		if message == "" {
			message = fmt.Sprintf("listings service returned status %d", statusErr.Code)
		}
		code := http.StatusBadGateway
		if statusErr.Code == http.StatusNotFound {
			code = http.StatusNotFound
		}
		writeError(w, code, ErrorResponse{Error: message, Retryable: statusErr.Code >= 500})
	case errors.As(err, &domainErr):
		writeError(w, http.StatusUnprocessableEntity, ErrorResponse{Error: domainErr.Message})
	default:
		logger.Error("Unhandled error", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// validationMessage собирает ошибки валидатора в одну строку для клиента.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// queryReader читает параметры запроса и запоминает первую ошибку разбора.
type queryReader struct {
	r   *http.Request
	err error
}

func newQueryReader(r *http.Request) *queryReader {
	return &queryReader{r: r}
}

func (q *queryReader) str(key string) string {
	return strings.TrimSpace(q.r.URL.Query().Get(key))
}

// list понимает и повторяющиеся ключи (a=1&a=2), и значения через запятую.
func (q *queryReader) list(key string) []string {
	var out []string
	for _, raw := range q.r.URL.Query()[key] {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func (q *queryReader) intValue(key string) int {
	v := q.optionalInt(key)
	if v == nil {
		return 0
	}
	return *v
}

func (q *queryReader) optionalInt(key string) *int {
	raw := q.str(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(key, raw)
		return nil
	}
	return &v
}

func (q *queryReader) optionalInt64(key string) *int64 {
	raw := q.str(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.fail(key, raw)
		return nil
	}
	return &v
}

func (q *queryReader) optionalFloat(key string) *float64 {
	raw := q.str(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.fail(key, raw)
		return nil
	}
	return &v
}

func (q *queryReader) optionalBool(key string) *bool {
	raw := q.str(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(key, raw)
		return nil
	}
	return &v
}

func (q *queryReader) fail(key, raw string) {
	if q.err == nil {
		q.err = fmt.Errorf("invalid value %q for parameter %s", raw, key)
	}
}
