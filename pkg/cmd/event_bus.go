package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/dukex/flowdesk/pkg/channels/gochannel"
	"github.com/dukex/flowdesk/pkg/channels/kafka"
	"github.com/dukex/flowdesk/pkg/eventbus"
)

// NewEventBus builds the workflow event bus. gochannel keeps events in process;
// kafka shares them between API instances.
func NewEventBus(provider string, brokers []string, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "", "gochannel":
		pubSub := gochannel.New(watermillLogger)

		return eventbus.NewWatermillEventBus(pubSub, pubSub, logger), nil
	case "kafka":
		pub, sub, err := kafka.New(kafka.Config{
			Brokers:       brokers,
			ConsumerGroup: "cg-flowdesk-api",
			ClientID:      "flowdesk-api",
		}, watermillLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
