package usecases_port

import (
	"context"
	"marketplace-service/internal/core/domain"
)

// SearchListingsUseCase - полный пайплайн: перевод критериев, запрос к источнику,
// нормализация и локальная доработка страницы.
type SearchListingsUseCase interface {
	Execute(ctx context.Context, criteria domain.FilterCriteria, page, limit int) (*domain.PageResult, error)
}

// SearchCoordinatorPort - поиск с дисциплиной "побеждает последний запрос сессии".
type SearchCoordinatorPort interface {
	// Submit возвращает domain.ErrSuperseded, если пока запрос выполнялся,
	// та же сессия отправила новый.
	Submit(ctx context.Context, sessionID string, criteria domain.FilterCriteria, page, limit int) (*domain.PageResult, error)
	// Latest возвращает последний зафиксированный результат сессии.
	Latest(sessionID string) (*domain.PageResult, bool)
}
