// Package broker publishes video processing jobs to RabbitMQ.
package broker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/vidforge/gateway/config"
)

// videoJobMessage is the wire format consumed by the processing worker.
type videoJobMessage struct {
	VideoID  int64  `json:"video_id"`
	Filename string `json:"filename"`
}

// Publisher publishes durable job messages to the processing queue. A fresh
// connection is dialed per publish and torn down on every exit path; retry
// policy belongs to the caller.
type Publisher struct {
	cfg    config.BrokerConfig
	logger *zap.Logger
}

// NewPublisher creates a RabbitMQ publisher. No connection is established
// until the first publish.
func NewPublisher(cfg config.BrokerConfig, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{cfg: cfg, logger: logger}
}

// PublishVideoJob declares the durable processing queue and publishes a
// persistent {video_id, filename} message to it. The queue declare is
// idempotent; persistent delivery survives a broker restart.
func (p *Publisher) PublishVideoJob(ctx context.Context, videoID int64, storageKey string) error {
	body, err := json.Marshal(videoJobMessage{VideoID: videoID, Filename: storageKey})
	if err != nil {
		return fmt.Errorf("marshal job message: %w", err)
	}

	conn, err := amqp.Dial(p.cfg.URL())
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		p.cfg.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = ch.PublishWithContext(ctx,
		"",     // default exchange
		q.Name, // routing key
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}

	p.logger.Debug("published video job",
		zap.Int64("video_id", videoID),
		zap.String("filename", storageKey),
		zap.String("queue", q.Name),
	)
	return nil
}
