// Package queue contains the notification event schema and the background
// consumer that drains the notification.created queue into the database.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/cypher-music/cypher-backend/internal/model"
	"github.com/cypher-music/cypher-backend/internal/repository"
)

// StartNotificationConsumer connects to RabbitMQ, declares the durable
// notification.created queue and consumes it forever, inserting one
// notifications row per event. It runs a reconnect loop with exponential
// backoff and never returns; failed messages are rejected without requeue
// so a poison message cannot stall the queue.
func StartNotificationConsumer(amqpURL string, repo *repository.NotificationRepo, log zerolog.Logger) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(amqpURL)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("notification consumer: broker dial failed")
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, repo, log); err != nil {
			log.Warn().Err(err).Msg("notification consumer: consume loop ended, reconnecting")
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, repo *repository.NotificationRepo, log zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("notification consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(NotificationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(NotificationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, repo); err != nil {
			log.Error().Err(err).Msg("notification consumer: handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, repo *repository.NotificationRepo) error {
	var ev NotificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n := &model.Notification{
		RecipientID: ev.RecipientID,
		SenderID:    ev.SenderID,
		Type:        ev.Type,
		Message:     ev.Message,
		TrackID:     ev.TrackID,
	}
	if err := repo.Create(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
