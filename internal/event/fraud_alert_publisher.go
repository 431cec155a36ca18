package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// FraudAlertPublisher queues fraud alerts for the back office.
type FraudAlertPublisher struct {
	conn              *RabbitMQConnection
	mu                sync.Mutex
	messagesPublished int64
	messagesFailed    int64
}

func NewFraudAlertPublisher(conn *RabbitMQConnection) *FraudAlertPublisher {
	return &FraudAlertPublisher{conn: conn}
}

func (p *FraudAlertPublisher) PublishFraudAlert(ctx context.Context, alert FraudAlertEvent) error {
	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	body, err := json.Marshal(alert)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal fraud alert: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",              // exchange
		FraudAlertQueue, // routing key (queue name)
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish fraud alert: %w", err)
	}

	p.messagesPublished++
	slog.Info("Fraud alert published",
		"queue", FraudAlertQueue,
		"claim_id", alert.ClaimID,
		"evidence_id", alert.EvidenceID,
		"level", alert.Level)

	return nil
}

// HealthCheck returns the health status of the publisher
func (p *FraudAlertPublisher) HealthCheck() PublisherHealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PublisherHealthStatus{
		IsHealthy:         p.conn != nil && p.conn.Connection != nil && !p.conn.Connection.IsClosed(),
		MessagesPublished: p.messagesPublished,
		MessagesFailed:    p.messagesFailed,
		Queue:             FraudAlertQueue,
	}
}

type PublisherHealthStatus struct {
	IsHealthy         bool   `json:"is_healthy"`
	MessagesPublished int64  `json:"messages_published"`
	MessagesFailed    int64  `json:"messages_failed"`
	Queue             string `json:"queue"`
}
