package rest

import (
	"net/http"
	"strings"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/port"

	"github.com/google/uuid"
)

// SessionHeader - идентификатор вкладки браузера. Запросы поиска с одним
// идентификатором упорядочиваются: выигрывает последний.
const SessionHeader = "X-Client-Session"

const maxSessionIDLength = 128

// SessionMiddleware кладет в контекст идентификатор сессии, присланный клиентом.
// Если клиент его не прислал, новый идентификатор выдается только в заголовке
// ответа: запрос выполняется без сессии, и результат на сервере не хранится.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(r.Header.Get(SessionHeader))
		if sessionID == "" || len(sessionID) > maxSessionIDLength {
			w.Header().Set(SessionHeader, uuid.New().String())
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set(SessionHeader, sessionID)

		ctx := contextkeys.ContextWithSessionID(r.Context(), sessionID)
		logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"session_id": sessionID})
		ctx = contextkeys.ContextWithLogger(ctx, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
