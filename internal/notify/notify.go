// Package notify publishes domain events after a state change has been committed.
// Delivery is best effort: a failed notification never undoes the change.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	OrderCreated       EventType = "order.created"
	OrderCancelled     EventType = "order.cancelled"
	OrderStatusChanged EventType = "order.status_changed"
	CompanyApproved    EventType = "company.approved"
	CompanyRejected    EventType = "company.rejected"
)

// Event is the message sent to brokers. Email is the address to notify, when known.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"`
	CompanyID  string    `json:"company_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Total      string    `json:"total,omitempty"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(t EventType) Event {
	return Event{ID: uuid.New().String(), Type: t, OccurredAt: time.Now().UTC()}
}

// Notifier delivers events.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Publisher is a broker client that sends a body under a routing key.
type Publisher interface {
	Publish(ctx context.Context, key string, body []byte) error
}

// BrokerNotifier encodes events as JSON and routes them by type.
type BrokerNotifier struct {
	pub Publisher
}

func NewBrokerNotifier(pub Publisher) *BrokerNotifier {
	return &BrokerNotifier{pub: pub}
}

func (n *BrokerNotifier) Notify(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", e.Type, err)
	}
	if err := n.pub.Publish(ctx, string(e.Type), body); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", e.Type, err)
	}
	return nil
}

// LogNotifier only writes events to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, e Event) error {
	log.Info().
		Str("event", string(e.Type)).
		Str("order_id", e.OrderID).
		Str("company_id", e.CompanyID).
		Str("status", e.Status).
		Msg("event published")
	return nil
}

// Send notifies and logs a failure as a warning instead of returning it.
func Send(ctx context.Context, n Notifier, e Event) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, e); err != nil {
		log.Warn().Err(err).Str("event", string(e.Type)).Str("order_id", e.OrderID).Msg("notification failed")
	}
}
