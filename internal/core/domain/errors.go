package domain

import (
	"errors"
	"fmt"
)

// ErrSuperseded - запрос был вытеснен более новым запросом той же сессии,
// его результат отброшен.
var ErrSuperseded = errors.New("request superseded by a newer one")

// ErrListingNotFound - источник данных не знает объявления с таким ID.
var ErrListingNotFound = errors.New("listing not found")

// TransportError - сеть недоступна, таймаут или ответ не удалось разобрать.
// Автоматически не повторяется; для клиента это состояние "попробуйте еще раз".
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("listings api transport error: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// HTTPStatusError - ответ бэкенда с кодом вне 2xx.
type HTTPStatusError struct {
	Code int
	Body string
	// Message - сообщение сервера из конверта, если его удалось извлечь.
	Message string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("listings api returned status %d: %s", e.Code, e.Body)
}

// DomainError - конверт пришел с success: false (даже при HTTP 200).
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("listings api rejected request: %s", e.Message)
}

// NormalizationWarning - поле объявления отсутствовало или было некорректным
// и было заменено значением по умолчанию. Объявление при этом не отбрасывается.
type NormalizationWarning struct {
	ListingID ListingID
	Field     string
	Reason    string
}

func (w NormalizationWarning) String() string {
	return fmt.Sprintf("listing %s: field %s: %s", w.ListingID, w.Field, w.Reason)
}
