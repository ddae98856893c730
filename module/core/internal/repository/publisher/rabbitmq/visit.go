package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/publisher"
)

var _ publisher.VisitEventPublisher = (*VisitEventPublisher)(nil)

const (
	exchangeName = "fieldops.events"
	queueName    = "visit_events"
)

type VisitEventPublisher struct {
	ch *amqp.Channel
}

func NewVisitEventPublisher(conn *amqp.Connection) (*VisitEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &VisitEventPublisher{ch: ch}, nil
}

func (p *VisitEventPublisher) PublishVisitEvent(ctx context.Context, event *domain.VisitEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal visit event: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
