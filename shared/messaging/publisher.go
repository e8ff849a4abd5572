package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kacperborowieckb/schema-wizard/shared/contracts"
)

// MessagePublisher is the part of *RabbitMQ the stage publisher needs.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, exchange, routingKey string, message contracts.AmqpMessage) error
}

// StagePublisher wraps stage events in the shared AMQP envelope.
type StagePublisher struct {
	mq       MessagePublisher
	exchange string
}

func NewStagePublisher(mq MessagePublisher) *StagePublisher {
	return &StagePublisher{mq: mq, exchange: WizardExchange}
}

func (p *StagePublisher) Publish(ctx context.Context, event StageEvent) error {
	routingKey, err := event.RoutingKey()
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stage event: %w", err)
	}

	msg := contracts.AmqpMessage{
		OwnerId: event.SessionID,
		Data:    data,
	}

	if err := p.mq.PublishMessage(ctx, p.exchange, routingKey, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	return nil
}

// DecodeStageEvent unwraps the envelope and the event inside it.
func DecodeStageEvent(d amqp.Delivery) (StageEvent, error) {
	var amqpMsg contracts.AmqpMessage
	if err := json.Unmarshal(d.Body, &amqpMsg); err != nil {
		return StageEvent{}, fmt.Errorf("failed to unmarshal outer AmqpMessage: %w", err)
	}

	var event StageEvent
	if err := json.Unmarshal(amqpMsg.Data, &event); err != nil {
		return StageEvent{}, fmt.Errorf("failed to unmarshal inner StageEvent: %w", err)
	}

	if event.SessionID == "" {
		event.SessionID = amqpMsg.OwnerId
	}

	return event, nil
}
