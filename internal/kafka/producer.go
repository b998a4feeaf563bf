package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"bookings-system/internal/config"
	"bookings-system/internal/logger"
	"bookings-system/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer публикует доменные события в Kafka
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронный Kafka producer
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("Successfully connected to Kafka producer")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// publishEvent сериализует событие и отправляет его в топик
func (p *Producer) publishEvent(topic string, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID.String()),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"event_id":  event.ID,
		"type":      event.Type,
	}).Debug("Event published to Kafka")

	return nil
}

// PublishOrderPriced публикует событие о рассчитанном и созданном заказе
func (p *Producer) PublishOrderPriced(order *models.Order) error {
	event := models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeOrderPriced,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"order_id":    order.ID.String(),
			"order_total": order.OrderTotal,
			"line_count":  len(order.Lines),
			"pincode":     order.Pincode,
		},
	}
	return p.publishEvent(p.topics.Orders, event)
}

// PublishOrderStatusChanged публикует событие об изменении статуса заказа
func (p *Producer) PublishOrderStatusChanged(orderID uuid.UUID, oldStatus, newStatus models.OrderStatus) error {
	event := models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeOrderStatusChanged,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"order_id":   orderID.String(),
			"old_status": string(oldStatus),
			"new_status": string(newStatus),
		},
	}
	return p.publishEvent(p.topics.Orders, event)
}

// PublishServiceUpdated публикует событие об изменении записи каталога
func (p *Producer) PublishServiceUpdated(serviceID uuid.UUID, name string) error {
	event := models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeServiceUpdated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"service_id": serviceID.String(),
			"name":       name,
		},
	}
	return p.publishEvent(p.topics.Catalog, event)
}
