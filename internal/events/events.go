// Package events publishes order lifecycle events to a topic exchange.
// The stream is advisory: consumers (notification services, dashboards)
// may lag or be absent, and a publish failure never fails the mutation
// that produced it.
package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"foodMarketplace/models"
)

// OrderEvent is the message emitted on order creation and on every
// applied status transition.
type OrderEvent struct {
	OrderID      int64              `json:"order_id"`
	OrderNumber  string             `json:"order_number"`
	RestaurantID int64              `json:"restaurant_id"`
	CustomerID   int64              `json:"customer_id"`
	FromStatus   models.OrderStatus `json:"from_status,omitempty"`
	ToStatus     models.OrderStatus `json:"to_status"`
	ChangedBy    int64              `json:"changed_by"`
	Total        float64            `json:"total"`
	OccurredAt   string             `json:"occurred_at"`
}

// RoutingKey is "orders.status.<status>", so consumers can bind to a
// single status or to orders.status.*.
func (e OrderEvent) RoutingKey() string {
	return "orders.status." + string(e.ToStatus)
}

// Publisher is what the services depend on.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, e OrderEvent) error
}

// Nop discards events. Used when no broker is configured and in tests.
type Nop struct{}

func (Nop) PublishOrderEvent(context.Context, OrderEvent) error { return nil }

// AMQPPublisher publishes order events to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// ConnectAMQP dials the broker and declares the exchange.
func ConnectAMQP(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, err
	}
	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

func (p *AMQPPublisher) PublishOrderEvent(ctx context.Context, e OrderEvent) error {
	if e.OccurredAt == "" {
		e.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		e.RoutingKey(),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
}

// Close shuts down the channel and connection.
func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
