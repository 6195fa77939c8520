// Package eventbus wraps watermill-nats so the rest of the app only sees
// message publish/subscribe.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	wnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
)

// EventBus is the messaging contract between the dashboard and the bot
// process.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	conn       *nc.Conn
	logger     *slog.Logger
}

// New connects to NATS and builds the watermill publisher/subscriber pair.
func New(ctx context.Context, natsURL string, logger *slog.Logger) (EventBus, error) {
	conn, err := nc.Connect(natsURL, nc.RetryOnFailedConnect(true))
	if err != nil {
		return nil, fmt.Errorf("eventbus: connect to NATS: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaller := &wnats.NATSMarshaler{}

	publisher, err := wnats.NewPublisher(
		wnats.PublisherConfig{
			URL:       natsURL,
			Marshaler: marshaller,
			NatsOptions: []nc.Option{
				nc.RetryOnFailedConnect(true),
			},
		},
		watermillLogger,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("eventbus: create publisher: %w", err)
	}

	subscriber, err := wnats.NewSubscriber(
		wnats.SubscriberConfig{
			URL:         natsURL,
			Unmarshaler: marshaller,
			NatsOptions: []nc.Option{
				nc.RetryOnFailedConnect(true),
			},
		},
		watermillLogger,
	)
	if err != nil {
		conn.Close()
		publisher.Close()
		return nil, fmt.Errorf("eventbus: create subscriber: %w", err)
	}

	logger.InfoContext(ctx, "event bus connected", slog.String("nats_url", natsURL))

	return &eventBus{
		publisher:  publisher,
		subscriber: subscriber,
		conn:       conn,
		logger:     logger,
	}, nil
}

func (b *eventBus) Publish(topic string, messages ...*message.Message) error {
	return b.publisher.Publish(topic, messages...)
}

func (b *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

func (b *eventBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		b.logger.Warn("eventbus: closing publisher", slog.Any("error", err))
	}
	if err := b.subscriber.Close(); err != nil {
		b.logger.Warn("eventbus: closing subscriber", slog.Any("error", err))
	}
	b.conn.Close()
	return nil
}
