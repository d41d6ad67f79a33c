// Package queue_publisher publishes domain events to RabbitMQ. Errors are
// logged and returned so callers can fall back without interrupting the
// request that triggered the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	q "github.com/cypher-music/cypher-backend/internal/queue"
)

// PublishNotification publishes a NotificationEvent to the durable
// notification.created queue. Messages are marked persistent so they
// survive broker restarts. A short-lived connection per publish keeps the
// function self-contained; notification volume is a handful of events per
// user action.
func PublishNotification(ctx context.Context, amqpURL string, event q.NotificationEvent, log zerolog.Logger) error {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(q.NotificationQueueName, true, false, false, false, nil); err != nil {
		log.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: marshal event failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", q.NotificationQueueName, false, false, pub); err != nil {
		log.Warn().Err(err).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
