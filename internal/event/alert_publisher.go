package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// amqpChannel is the part of *amqp.Channel the publisher needs.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitAlertPublisher publishes alert events to a durable RabbitMQ queue
type RabbitAlertPublisher struct {
	channel amqpChannel
	queue   string

	mu                sync.Mutex
	declared          bool
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

func NewRabbitAlertPublisher(conn *RabbitMQConnection, queue string) *RabbitAlertPublisher {
	return newRabbitAlertPublisher(conn.Channel, queue)
}

func newRabbitAlertPublisher(ch amqpChannel, queue string) *RabbitAlertPublisher {
	if queue == "" {
		queue = DefaultAlertQueue
	}
	return &RabbitAlertPublisher{
		channel: ch,
		queue:   queue,
	}
}

// PublishAlert publishes one alert event to the alert queue
func (p *RabbitAlertPublisher) PublishAlert(ctx context.Context, event AlertEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared {
		_, err := p.channel.QueueDeclare(
			p.queue, // queue name
			true,    // durable
			false,   // delete when unused
			false,   // exclusive
			false,   // no-wait
			nil,     // arguments
		)
		if err != nil {
			p.messagesFailed++
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		p.declared = true
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish alert event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	log.WithFields(log.Fields{
		"queue":    p.queue,
		"priority": event.Priority,
		"title":    event.Title,
		"cycle_id": event.CycleID,
	}).Info("Alert event published")

	return nil
}

func (p *RabbitAlertPublisher) Stats() PublisherStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PublisherStats{
		MessagesPublished: p.messagesPublished,
		MessagesFailed:    p.messagesFailed,
		LastPublishTime:   p.lastPublishTime,
	}
}
