package usecase

import (
	"sync"

	"learningcenter/pkg/dbctx"
	"learningcenter/services/learning-service/internal/domain"
)

// TutorialCompletedHandler runs inside the transaction that completed the tutorial.
type TutorialCompletedHandler func(dbc dbctx.Context, event domain.TutorialCompleted) error

// EventBus delivers events synchronously, in subscription order. The first failing
// handler stops delivery and its error is returned to the publisher.
type EventBus struct {
	mu       sync.RWMutex
	handlers []TutorialCompletedHandler
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

func (b *EventBus) SubscribeTutorialCompleted(h TutorialCompletedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *EventBus) PublishTutorialCompleted(dbc dbctx.Context, event domain.TutorialCompleted) error {
	b.mu.RLock()
	handlers := make([]TutorialCompletedHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(dbc, event); err != nil {
			return err
		}
	}
	return nil
}
