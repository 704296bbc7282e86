package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/carts-service/internal/domain"
)

const detailTypeHeader = "detail-type"

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Publisher writes domain events to the topic named by their channel.
type Publisher struct {
	writer Writer
	logger *zap.Logger
}

func NewPublisher(writer Writer, logger *zap.Logger) *Publisher {
	return &Publisher{writer: writer, logger: logger}
}

// NewWriter returns a writer without a fixed topic; every message carries its own.
func NewWriter(brokers []string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}

func (p *Publisher) Publish(ctx context.Context, ev domain.Event) error {
	if ev.Channel == "" {
		return fmt.Errorf("%w: empty channel", domain.ErrPublishFailure)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	msg, err := message(ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish failed",
			zap.String("topic", ev.Channel),
			zap.String("event_id", ev.ID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", domain.ErrPublishFailure, err)
	}

	p.logger.Info("event published",
		zap.String("topic", ev.Channel),
		zap.String("detail_type", ev.DetailType),
		zap.String("event_id", ev.ID),
		zap.Int("value_bytes", len(msg.Value)),
	)
	return nil
}

func message(ev domain.Event) (kafkago.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("%w: encode event: %v", domain.ErrPublishFailure, err)
	}

	headers := []kafkago.Header{{Key: detailTypeHeader, Value: []byte(ev.DetailType)}}
	keys := make([]string, 0, len(ev.Headers))
	for k := range ev.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(ev.Headers[k])})
	}

	return kafkago.Message{
		Topic:   ev.Channel,
		Key:     []byte(ev.Key),
		Value:   value,
		Time:    ev.Time,
		Headers: headers,
	}, nil
}
