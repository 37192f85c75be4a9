package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fjod/go_cart/cartstore/internal/logging"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Notice is the event published for every user-facing message.
type Notice struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type requestIDKey struct{}

// ContextWithRequestID tags notices raised under ctx with the request id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func newNotice(ctx context.Context, message string) Notice {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return Notice{
		ID:        uuid.NewString(),
		Message:   message,
		RequestID: requestID,
		CreatedAt: time.Now().UTC(),
	}
}

// Kafka publishes notices to a topic without waiting for the broker.
type Kafka struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafka(logger *zap.Logger, topic string, brokers ...string) *Kafka {
	k := &Kafka{logger: logger}
	k.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				k.logger.Warn("publish cart notices failed", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
	return k
}

func (k *Kafka) Error(ctx context.Context, message string) {
	notice := newNotice(ctx, message)
	payload, err := json.Marshal(notice)
	if err != nil {
		logging.FromContext(ctx, k.logger).Error("marshal notice failed", zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(notice.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("cart.notice")},
		},
	}
	// async writer: returns once the message is queued
	if err := k.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		logging.FromContext(ctx, k.logger).Warn("queue notice failed", zap.Error(err))
	}
}

// Close flushes pending messages.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
