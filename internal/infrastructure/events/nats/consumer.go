package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/config"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

// NotificationHandler processes the payload of one upload notification.
// A nil error means handled or deliberately ignored.
type NotificationHandler interface {
	HandleNotification(ctx context.Context, data []byte) error
}

// UploadConsumer feeds storage upload notifications from JetStream to a
// NotificationHandler and settles each message by the error kind
type UploadConsumer struct {
	js      jetstream.JetStream
	handler NotificationHandler
	config  config.NATSConfig
	logger  *zap.Logger
}

// NewUploadConsumer creates a consumer for the upload notification stream
func NewUploadConsumer(js jetstream.JetStream, cfg config.NATSConfig, handler NotificationHandler, logger *zap.Logger) *UploadConsumer {
	if cfg.MaxDeliver <= 0 {
		cfg.MaxDeliver = 5
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = 30 * time.Second
	}
	return &UploadConsumer{
		js:      js,
		handler: handler,
		config:  cfg,
		logger:  logger.Named("upload_consumer"),
	}
}

// Run consumes until ctx is cancelled
func (c *UploadConsumer) Run(ctx context.Context) error {
	consumer, err := c.js.CreateOrUpdateConsumer(ctx, c.config.UploadStream, jetstream.ConsumerConfig{
		Durable:       c.config.Consumer,
		Description:   "Episode upload notification processor",
		FilterSubject: c.config.UploadSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.config.AckWait,
		MaxDeliver:    c.config.MaxDeliver,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
		MaxAckPending: 100,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		c.HandleMessage(ctx, msg)
	}, jetstream.ConsumeErrHandler(func(_ jetstream.ConsumeContext, err error) {
		c.logger.Error("consume error", zap.Error(err))
	}))
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("upload consumer started",
		zap.String("stream", c.config.UploadStream),
		zap.String("consumer", c.config.Consumer),
	)

	<-ctx.Done()
	cc.Stop()
	c.logger.Info("upload consumer stopping")
	return nil
}

// HandleMessage processes one message and acknowledges it. Success is
// acked, non-retryable errors are terminated, anything else is redelivered
// after a delay until MaxDeliver, then parked on the dead letter subject.
func (c *UploadConsumer) HandleMessage(ctx context.Context, msg jetstream.Msg) {
	err := c.handler.HandleNotification(ctx, msg.Data())
	if err == nil {
		if ackErr := msg.Ack(); ackErr != nil {
			c.logger.Error("failed to acknowledge message", zap.Error(ackErr))
		}
		return
	}

	log := c.logger.With(
		zap.Error(err),
		zap.String("subject", msg.Subject()),
		zap.String("error_kind", string(apperrors.KindOf(err))),
	)

	if ctx.Err() != nil {
		log.Warn("processing interrupted, message will be redelivered")
		_ = msg.Nak()
		return
	}

	if !apperrors.Retryable(err) {
		log.Warn("dropping notification that cannot succeed")
		if termErr := msg.TermWithReason(apperrors.CodeOf(err)); termErr != nil {
			log.Error("failed to terminate message", zap.NamedError("term_error", termErr))
		}
		return
	}

	var delivered uint64
	if meta, metaErr := msg.Metadata(); metaErr == nil && meta != nil {
		delivered = meta.NumDelivered
	}

	if delivered >= uint64(c.config.MaxDeliver) {
		c.sendToDeadLetterQueue(ctx, msg, err, delivered)
		_ = msg.Term()
		return
	}

	log.Warn("processing failed, scheduling redelivery",
		zap.Uint64("deliveries", delivered),
		zap.Duration("delay", c.config.NakDelay),
	)
	if nakErr := msg.NakWithDelay(c.config.NakDelay); nakErr != nil {
		log.Error("failed to nak message", zap.NamedError("nak_error", nakErr))
	}
}

// sendToDeadLetterQueue sends failed messages to DLQ
func (c *UploadConsumer) sendToDeadLetterQueue(ctx context.Context, msg jetstream.Msg, originalErr error, delivered uint64) {
	dlqMessage := DeadLetterMessage{
		OriginalSubject: msg.Subject(),
		OriginalData:    msg.Data(),
		Error:           originalErr.Error(),
		ErrorCode:       apperrors.CodeOf(originalErr),
		Timestamp:       time.Now().UTC(),
		NumDelivered:    delivered,
		Consumer:        c.config.Consumer,
	}

	data, err := json.Marshal(dlqMessage)
	if err != nil {
		c.logger.Error("failed to marshal DLQ message", zap.Error(err))
		return
	}

	out := nats.NewMsg(c.config.DLQSubject)
	out.Data = data

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if _, err := c.js.PublishMsg(pubCtx, out); err != nil {
		c.logger.Error("failed to send message to DLQ",
			zap.Error(err),
			zap.String("subject", c.config.DLQSubject),
		)
		return
	}

	c.logger.Warn("message sent to dead letter queue",
		zap.String("original_subject", msg.Subject()),
		zap.String("error", originalErr.Error()),
		zap.Uint64("deliveries", delivered),
	)
}

// DeadLetterMessage represents a message in the dead letter queue
type DeadLetterMessage struct {
	OriginalSubject string    `json:"original_subject"`
	OriginalData    []byte    `json:"original_data"`
	Error           string    `json:"error"`
	ErrorCode       string    `json:"error_code,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	NumDelivered    uint64    `json:"num_delivered"`
	Consumer        string    `json:"consumer"`
}
