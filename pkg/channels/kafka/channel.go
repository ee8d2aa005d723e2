// Package kafka provides the Kafka pub/sub used when several API instances share events.
package kafka

import (
	"errors"
	"slices"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
)

var ErrNoBrokers = errors.New("at least one Kafka broker is required")

type Config struct {
	Brokers []string
	// ConsumerGroup is shared by every instance of one service so each event is handled once.
	ConsumerGroup string
	ClientID      string
}

func (c Config) validate() error {
	if len(c.Brokers) == 0 || slices.Contains(c.Brokers, "") {
		return ErrNoBrokers
	}

	return nil
}

func (c Config) sarama() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = c.ClientID
	config.Producer.Return.Successes = true
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	return config
}

// New connects a publisher and a consumer-group subscriber to the brokers.
func New(cfg Config, logger watermill.LoggerAdapter) (*kafka.Publisher, *kafka.Subscriber, error) {
	err := cfg.validate()
	if err != nil {
		return nil, nil, err
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.Brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: cfg.sarama(),
		ConsumerGroup:         cfg.ConsumerGroup,
		OTELEnabled:           true,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               cfg.Brokers,
		Marshaler:             kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: cfg.sarama(),
		OTELEnabled:           true,
	}, logger)
	if err != nil {
		_ = subscriber.Close()

		return nil, nil, err
	}

	return publisher, subscriber, nil
}
