package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/beachpoint/portal/models"
)

// RegistrationSubmitted is emitted after the orchestrator finishes a
// submission, full or partial, for the notification collaborator.
type RegistrationSubmitted struct {
	PlayerID     int                      `json:"player_id"`
	TournamentID int                      `json:"tournament_id"`
	Outcomes     []models.CategoryOutcome `json:"outcomes"`
	Partial      bool                     `json:"partial"`
}

// Publisher pushes portal events to a topic exchange. A nil *Publisher is a
// valid no-op, so callers never need to branch on whether events are enabled.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// PublishRegistrationSubmitted emits the registration.submitted event.
func (p *Publisher) PublishRegistrationSubmitted(ctx context.Context, event RegistrationSubmitted) error {
	return p.publishJSON(ctx, "registration.submitted", event)
}

func (p *Publisher) publishJSON(ctx context.Context, key string, v any) error {
	if p == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
