package usecase

import (
	"context"
	"sync"
	"time"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"
)

// sessionSlot - состояние одной клиентской сессии.
// generation растет с каждым новым запросом; результат фиксируется,
// только если за время выполнения generation не изменилась.
type sessionSlot struct {
	generation uint64
	cancel     context.CancelFunc
	latest     *domain.PageResult
	lastSeen   time.Time
}

// SearchCoordinator реализует дисциплину "побеждает последний запрос":
// новый запрос сессии отменяет предыдущий, а его запоздавший результат отбрасывается.
type SearchCoordinator struct {
	search usecases_port.SearchListingsUseCase
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionSlot
}

// NewSearchCoordinator - конструктор. ttl - время простоя, после которого сессия забывается.
func NewSearchCoordinator(search usecases_port.SearchListingsUseCase, ttl time.Duration) *SearchCoordinator {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SearchCoordinator{
		search:   search,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*sessionSlot),
	}
}

func (c *SearchCoordinator) Submit(ctx context.Context, sessionID string, criteria domain.FilterCriteria, page, limit int) (*domain.PageResult, error) {
	// Без сессии упорядочивать нечего.
	if sessionID == "" {
		return c.search.Execute(ctx, criteria, page, limit)
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "SearchCoordinator",
		"session_id": sessionID,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	slot, ok := c.sessions[sessionID]
	if !ok {
		slot = &sessionSlot{}
		c.sessions[sessionID] = slot
	}
	if slot.cancel != nil {
		slot.cancel()
		logger.Debug("Previous in-flight search canceled", port.Fields{"generation": slot.generation})
	}
	slot.generation++
	generation := slot.generation
	slot.cancel = cancel
	slot.lastSeen = c.now()
	c.mu.Unlock()

	result, err := c.search.Execute(runCtx, criteria, page, limit)

	c.mu.Lock()
	defer c.mu.Unlock()

	if current, ok := c.sessions[sessionID]; !ok || current != slot || slot.generation != generation {
		logger.Info("Search result discarded, a newer request was issued", port.Fields{"generation": generation})
		return nil, domain.ErrSuperseded
	}
	slot.cancel = nil
	slot.lastSeen = c.now()
	if err != nil {
		return nil, err
	}
	slot.latest = result
	return result, nil
}

// Latest возвращает последний зафиксированный результат сессии.
func (c *SearchCoordinator) Latest(sessionID string) (*domain.PageResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.sessions[sessionID]
	if !ok || slot.latest == nil {
		return nil, false
	}
	slot.lastSeen = c.now()
	return slot.latest, true
}

// Prune удаляет простаивающие сессии без запросов в полете. Возвращает число удаленных.
func (c *SearchCoordinator) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := c.now().Add(-c.ttl)
	removed := 0
	for id, slot := range c.sessions {
		if slot.cancel == nil && slot.lastSeen.Before(deadline) {
			delete(c.sessions, id)
			removed++
		}
	}
	return removed
}

// Run периодически вызывает Prune до отмены ctx.
func (c *SearchCoordinator) Run(ctx context.Context, interval time.Duration) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "SearchCoordinator"})
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Session janitor stopped", nil)
			return
		case <-ticker.C:
			if removed := c.Prune(); removed > 0 {
				logger.Debug("Idle sessions pruned", port.Fields{"removed": removed})
			}
		}
	}
}
