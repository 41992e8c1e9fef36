package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"FundChain/config"
	"FundChain/internal/domain/shared"
	"FundChain/internal/logger"

	"github.com/segmentio/kafka-go"
)

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher grava cada evento de forma síncrona. A chave da
// mensagem é o id da campanha, o que mantém a ordem dos eventos de uma
// mesma campanha dentro da partição.
type KafkaEventPublisher struct {
	writer       kafkaMessageWriter
	topic        string
	writeTimeout time.Duration
}

func NewKafkaEventPublisher(cfg *config.Config) *KafkaEventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		WriteTimeout: cfg.Kafka.WriteTimeout,
	}

	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("Publicador de eventos Kafka configurado")

	return newKafkaEventPublisher(writer, cfg.Kafka.Topic, cfg.Kafka.WriteTimeout)
}

func newKafkaEventPublisher(writer kafkaMessageWriter, topic string, writeTimeout time.Duration) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		writer:       writer,
		topic:        topic,
		writeTimeout: writeTimeout,
	}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event shared.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if p.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.writeTimeout)
		defer cancel()
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(event.CampaignId, 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Type, p.topic, err)
	}
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

// NewEventPublisher escolhe o publicador conforme KAFKA_ENABLED.
func NewEventPublisher(cfg *config.Config) shared.EventPublisher {
	if !cfg.Kafka.Enabled {
		logger.Info().Msg("Publicação de eventos desabilitada")
		return shared.NoopEventPublisher{}
	}
	return NewKafkaEventPublisher(cfg)
}
