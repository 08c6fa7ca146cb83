package emitters

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/ferreirogomes/contatos/logger"
	"github.com/ferreirogomes/contatos/models"
)

// KafkaEmitter publica eventos de transferência num tópico Kafka.
type KafkaEmitter struct {
	writer *kafka.Writer
	mu     sync.Mutex
}

func NewKafkaEmitter(brokerAddress, topic string) *KafkaEmitter {
	return &KafkaEmitter{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokerAddress),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (k *KafkaEmitter) EmitTransfer(ctx context.Context, event models.TransferEvent) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer == nil {
		return fmt.Errorf("emitter fechado")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("falha ao serializar evento: %w", err)
	}

	key := event.Signature
	if key == "" {
		key = event.Sender
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("falha ao publicar evento no Kafka: %w", err)
	}

	logger.GetLogger().Info().
		Str("signature", event.Signature).
		Str("status", event.Status).
		Msg("Evento de transferência publicado")
	return nil
}

func (k *KafkaEmitter) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer != nil {
		err := k.writer.Close()
		k.writer = nil
		return err
	}
	return nil
}

// NopEmitter descarta eventos; usado quando não há broker configurado.
type NopEmitter struct{}

func (NopEmitter) EmitTransfer(context.Context, models.TransferEvent) error { return nil }

func (NopEmitter) Close() error { return nil }
