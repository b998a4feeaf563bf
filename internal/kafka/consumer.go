package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"bookings-system/internal/config"
	"bookings-system/internal/logger"
	"bookings-system/internal/models"

	"github.com/IBM/sarama"
)

// EventHandler обрабатывает одно событие из Kafka
type EventHandler func(ctx context.Context, event *models.Event) error

// Consumer читает события из Kafka и раздает их по зарегистрированным обработчикам
type Consumer struct {
	group    sarama.ConsumerGroup
	log      *logger.Logger
	topics   []string
	handlers map[models.EventType]EventHandler
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewConsumer создает consumer group для топиков заказов и каталога
func NewConsumer(cfg *config.KafkaConfig, log *logger.Logger) (*Consumer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Consumer{
		group:    group,
		log:      log,
		topics:   []string{cfg.Topics.Orders, cfg.Topics.Catalog},
		handlers: make(map[models.EventType]EventHandler),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// RegisterHandler регистрирует обработчик для типа события
func (c *Consumer) RegisterHandler(eventType models.EventType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventType] = handler
}

// HandlerCount возвращает количество зарегистрированных обработчиков
func (c *Consumer) HandlerCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers)
}

// Start запускает цикл потребления в фоне
func (c *Consumer) Start() error {
	if c.group == nil {
		return fmt.Errorf("consumer group is not initialized")
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			if err := c.group.Consume(c.ctx, c.topics, c); err != nil {
				c.log.WithError(err).Error("Kafka consume loop failed")
			}
			if c.ctx.Err() != nil {
				return
			}
		}
	}()

	c.log.WithField("topics", c.topics).Info("Kafka consumer started")
	return nil
}

// Stop останавливает consumer и дожидается завершения цикла
func (c *Consumer) Stop() error {
	if c == nil {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	if c.group != nil {
		return c.group.Close()
	}
	return nil
}

// processMessage десериализует событие и вызывает обработчик его типа.
// Отсутствие обработчика не считается ошибкой.
func (c *Consumer) processMessage(msg *sarama.ConsumerMessage) error {
	var event models.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event from topic %s: %w", msg.Topic, err)
	}

	c.mu.RLock()
	handler, ok := c.handlers[event.Type]
	c.mu.RUnlock()

	if !ok {
		c.log.WithFields(map[string]interface{}{
			"topic": msg.Topic,
			"type":  event.Type,
		}).Debug("No handler registered for event type")
		return nil
	}

	if err := handler(c.ctx, &event); err != nil {
		return fmt.Errorf("handler for event %s failed: %w", event.Type, err)
	}

	return nil
}

// Setup реализует sarama.ConsumerGroupHandler
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup реализует sarama.ConsumerGroupHandler
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim обрабатывает сообщения одной партиции
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := c.processMessage(msg); err != nil {
				c.log.WithError(err).WithField("topic", msg.Topic).Error("Failed to process Kafka message")
			}
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
