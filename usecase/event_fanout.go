package usecase

import (
	"context"
	"encoding/json"

	"clipcast/domain/repository"
	"clipcast/infrastructure/logger"

	"golang.org/x/sync/errgroup"
)

type eventFanout struct {
	publishers []repository.IEventPublisher
}

// NewEventFanout publishes every event to all publishers concurrently.
// Publish returns the first failure after all publishers finished.
func NewEventFanout(publishers ...repository.IEventPublisher) repository.IEventPublisher {
	live := make([]repository.IEventPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			live = append(live, p)
		}
	}
	return &eventFanout{publishers: live}
}

func (f *eventFanout) Publish(ctx context.Context, event string, payload []byte) error {
	var g errgroup.Group
	for _, p := range f.publishers {
		g.Go(func() error {
			return p.Publish(ctx, event, payload)
		})
	}
	return g.Wait()
}

// publishEvent encodes payload and publishes it; failures are logged only
func publishEvent(ctx context.Context, publisher repository.IEventPublisher, event string, payload interface{}) {
	if publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("event", event).Error("Error while encoding event")
		return
	}
	if err := publisher.Publish(ctx, event, body); err != nil {
		logger.GetLogger().WithField("error", err).WithField("event", event).Warn("Event publish failed")
	}
}
