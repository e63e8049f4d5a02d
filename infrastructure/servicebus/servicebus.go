package servicebus

import (
	"context"
	"errors"

	"clipcast/domain/repository"
	"clipcast/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus authenticates against the namespace (e.g. "clipcast.servicebus.windows.net")
// with the default Azure credential chain
func NewServiceBus(ctx context.Context, namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, errors.New("service bus namespace not configured")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

// EventPublisher sends domain events to a queue. The event name is the message subject.
type EventPublisher struct {
	client *azservicebus.Client
	queue  string
}

func NewEventPublisher(client *azservicebus.Client, queue string) *EventPublisher {
	return &EventPublisher{client: client, queue: queue}
}

var _ repository.IEventPublisher = (*EventPublisher)(nil)

func (p *EventPublisher) Publish(ctx context.Context, event string, payload []byte) error {
	if p.client == nil {
		return nil
	}
	sender, err := p.client.NewSender(p.queue, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
		}
	}(sender, context.Background())

	contentType := "application/json"
	err = sender.SendMessage(ctx, newMessage(event, payload, contentType), nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}

func newMessage(event string, payload []byte, contentType string) *azservicebus.Message {
	return &azservicebus.Message{
		Body:                  payload,
		Subject:               &event,
		ContentType:           &contentType,
		ApplicationProperties: map[string]any{"event": event},
	}
}
