package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kacperborowieckb/schema-wizard/shared/contracts"
)

const (
	WizardExchange = "wizard_exchange"
)

type RabbitMQ struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

func NewRabbitMQ(uri string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %v", err)
	}

	return &RabbitMQ{
		conn:    conn,
		Channel: ch,
	}, nil
}

// MessageHandler is the function signature for processing a delivered message.
// Return an error to Nack (reject) the message, or nil to Ack (acknowledge) it.
type MessageHandler func(ctx context.Context, d amqp.Delivery) error

// ConsumeMessages handles deliveries one at a time until ctx is cancelled or
// the channel closes. Schema generation is slow, so the prefetch is 1 and the
// broker spreads plans across workers.
func (r *RabbitMQ) ConsumeMessages(ctx context.Context, queueName string, handler MessageHandler) error {
	if err := r.Channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %v", err)
	}

	msgs, err := r.Channel.ConsumeWithContext(ctx,
		queueName, // queue
		"",        // consumer
		false,     // auto-ack (we want manual ack)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %v", err)
	}

	go func() {
		for d := range msgs {
			log.Printf("Received a message with routing key: %s", d.RoutingKey)

			if err := handler(ctx, d); err != nil {
				// Nack the message and drop it (don't requeue)
				log.Printf("Failed to handle message: %v", err)
				d.Nack(false, false)
				continue
			}

			d.Ack(false)
		}
		log.Printf("Consumer for %s stopped", queueName)
	}()

	return nil
}

func (r *RabbitMQ) PublishMessage(ctx context.Context, exchange, routingKey string, message contracts.AmqpMessage) error {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %v", err)
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         jsonMsg,
	}

	return r.Channel.PublishWithContext(ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		msg,
	)
}

// Ping reports whether the broker connection is still open.
func (r *RabbitMQ) Ping(ctx context.Context) error {
	if r.conn == nil || r.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection is closed")
	}

	return nil
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		r.Channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

// SetupAppTopology declares the wizard exchange and the queues the workers
// consume from.
func (r *RabbitMQ) SetupAppTopology() error {
	log.Println("Setting up RabbitMQ application topology...")

	err := r.Channel.ExchangeDeclare(
		WizardExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %v", WizardExchange, err)
	}

	if err := r.declareAndBind(SchemaGenerationQueue, WizardExchange, contracts.PlanReadyRoutingKey); err != nil {
		return err
	}

	log.Println("RabbitMQ application topology setup complete.")

	return nil
}

func (r *RabbitMQ) declareAndBind(queueName, exchangeName, routingKey string) error {
	q, err := r.Channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %v", queueName, err)
	}

	if err := r.Channel.QueueBind(q.Name, routingKey, exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to %s: %v", q.Name, routingKey, err)
	}

	return nil
}
