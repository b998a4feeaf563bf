package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType описывает тип события в Kafka
type EventType string

const (
	EventTypeOrderPriced        EventType = "order.priced"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeServiceUpdated     EventType = "service.updated"
)

// Event представляет событие, публикуемое в Kafka
type Event struct {
	ID        uuid.UUID              `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
