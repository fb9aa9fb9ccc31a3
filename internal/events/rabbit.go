// Package events publishes checkout lifecycle events to a RabbitMQ
// topic exchange. Publishing is best effort: a failure is logged and
// never fails the user-facing operation.
package events

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Routing keys published by the shop.
const (
	RKTransactionCompleted = "transaction.completed"
	RKTransactionDeleted   = "transaction.deleted"
)

type TransactionCompletedPayload struct {
	TransactionID string `json:"transaction_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Items         int    `json:"items"`
	Total         string `json:"total"`
}

type TransactionDeletedPayload struct {
	TransactionID string `json:"transaction_id"`
}

// Publisher wraps one connection and channel. A nil *Publisher is valid
// and drops every publish, so callers need no enabled-check.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *Publisher) PublishJSON(ctx context.Context, routingKey string, v any) {
	if p == nil {
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("rk", routingKey).Msg("event marshal failed")
		return
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		log.Warn().Err(err).Str("rk", routingKey).Msg("event publish failed")
	}
}
