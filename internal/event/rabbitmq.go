package event

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConnection carries fraud alerts to the back office. The fraud alert
// queue is declared once when the connection opens.
type RabbitMQConnection struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
}

func amqpURI(cfg config.RabbitMQConfig) string {
	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     cfg.Host,
		Username: cfg.Username,
		Password: cfg.Password,
		Vhost:    "/",
	}
	if port, err := strconv.Atoi(cfg.Port); err == nil && port > 0 {
		uri.Port = port
	} else {
		uri.Port = 5672
	}
	return uri.String()
}

func ConnectRabbitMQ(cfg config.RabbitMQConfig) (*RabbitMQConnection, error) {
	conn, err := amqp.DialConfig(amqpURI(cfg), amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(5 * time.Second),
		Properties: amqp.Table{
			"connection_name": "liquidapp-fraud-alerts",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ at %s: %w", net.JoinHostPort(cfg.Host, cfg.Port), err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(FraudAlertQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", FraudAlertQueue, err)
	}

	slog.Info("Connected to RabbitMQ", "host", cfg.Host, "port", cfg.Port, "queue", FraudAlertQueue)
	return &RabbitMQConnection{Connection: conn, Channel: ch}, nil
}

// Close tears down the channel before the connection; the first error wins.
func (r *RabbitMQConnection) Close() error {
	var firstErr error
	if r.Channel != nil && !r.Channel.IsClosed() {
		firstErr = r.Channel.Close()
	}
	if r.Connection != nil && !r.Connection.IsClosed() {
		if err := r.Connection.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("failed to close RabbitMQ connection: %w", firstErr)
	}
	return nil
}
