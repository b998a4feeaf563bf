package kafka

import (
	"testing"

	"bookings-system/internal/config"
	"bookings-system/internal/logger"
	"bookings-system/internal/models"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
)

func TestPublishEvent(t *testing.T) {
	cfg := sarama.NewConfig()
	mp := mocks.NewSyncProducer(t, cfg)
	mp.ExpectSendMessageAndSucceed()

	event := models.Event{ID: uuid.New(), Type: models.EventTypeOrderPriced}
	p := &Producer{
		producer: mp,
		log:      logger.New(&config.LoggerConfig{Level: "error", Format: "json"}),
		topics:   &config.Topics{Orders: "orders"},
	}
	if err := p.publishEvent("orders", event); err != nil {
		t.Fatalf("expected publish success, got %v", err)
	}

	if err := mp.Close(); err != nil {
		t.Fatalf("failed to close mock producer: %v", err)
	}
}

func TestProducer_WrapperMethods(t *testing.T) {
	cfg := sarama.NewConfig()
	mp := mocks.NewSyncProducer(t, cfg)
	for i := 0; i < 3; i++ {
		mp.ExpectSendMessageAndSucceed()
	}

	p := &Producer{
		producer: mp,
		log:      logger.New(&config.LoggerConfig{Level: "error", Format: "json"}),
		topics:   &config.Topics{Orders: "orders", Catalog: "catalog"},
	}

	orderID := uuid.New()
	serviceID := uuid.New()
	order := &models.Order{ID: orderID, CustomerName: "n", CustomerPhone: "p", Pincode: "560001", OrderTotal: 2748}

	if err := p.PublishOrderPriced(order); err != nil {
		t.Fatalf("PublishOrderPriced failed: %v", err)
	}
	if err := p.PublishOrderStatusChanged(orderID, models.OrderStatusCreated, models.OrderStatusConfirmed); err != nil {
		t.Fatalf("PublishOrderStatusChanged failed: %v", err)
	}
	if err := p.PublishServiceUpdated(serviceID, "Bike Shifting"); err != nil {
		t.Fatalf("PublishServiceUpdated failed: %v", err)
	}
}

func TestProducer_PublishEvent_Failure(t *testing.T) {
	cfg := sarama.NewConfig()
	mp := mocks.NewSyncProducer(t, cfg)
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := &Producer{
		producer: mp,
		log:      logger.New(&config.LoggerConfig{Level: "error", Format: "json"}),
		topics:   &config.Topics{Orders: "orders"},
	}

	ev := models.Event{ID: uuid.New(), Type: models.EventTypeOrderPriced}
	err := p.publishEvent("orders", ev)
	if err == nil {
		t.Fatalf("expected error on send failure")
	}
	_ = p.Close()
}

func TestNewProducer_Error(t *testing.T) {
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	cfg := &config.KafkaConfig{Brokers: []string{"localhost:0"}}
	if _, err := NewProducer(cfg, log); err == nil {
		t.Fatalf("expected error creating producer")
	}
}

func TestProducer_CloseNil(t *testing.T) {
	var p *Producer
	if err := p.Close(); err != nil {
		t.Fatalf("expected nil error on nil producer")
	}
	p = &Producer{}
	if err := p.Close(); err != nil {
		t.Fatalf("expected nil error on empty producer, got %v", err)
	}
}
