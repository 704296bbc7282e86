package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/carts-service/internal/config"
	"github.com/TemirB/carts-service/internal/domain"
	"github.com/TemirB/carts-service/internal/observability"
	"github.com/TemirB/carts-service/internal/pkg/retry"
)

//go:generate mockgen -source handler.go -destination=handler_mock_test.go -package=handler

var (
	ErrDispatch    = errors.New("dispatch failed")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

const detailTypeHeader = "detail-type"

type Dispatcher interface {
	Dispatch(ctx context.Context, trigger domain.Trigger) domain.Response
}

type brk interface {
	Allow() error
	Success()
	Failure()
}

type dedupe interface {
	Seen(id string) bool
	Add(id string)
}

type Handler struct {
	dispatcher  Dispatcher
	breaker     brk
	seen        dedupe
	logger      *zap.Logger
	metrics     observability.Metrics
	retryPolicy config.Retry
}

func NewHandler(dispatcher Dispatcher, breaker brk, seen dedupe, retryPolicy config.Retry, logger *zap.Logger, metrics observability.Metrics) *Handler {
	return &Handler{
		dispatcher:  dispatcher,
		breaker:     breaker,
		seen:        seen,
		logger:      logger,
		metrics:     metrics,
		retryPolicy: retryPolicy,
	}
}

// Handle is called by the consumer for a single message. A nil return lets
// the consumer commit the offset, so only server side failures are returned;
// messages that can never succeed are logged and dropped.
func (h *Handler) Handle(ctx context.Context, message kafkago.Message) error {
	start := time.Now()
	err := h.handle(ctx, message)
	h.metrics.ObserveKafka(observability.SinceMs(start), err == nil)
	return err
}

func (h *Handler) handle(ctx context.Context, message kafkago.Message) error {
	if err := h.breaker.Allow(); err != nil {
		h.logger.Warn("circuit breaker is open",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}

	trigger, err := decodeTrigger(message)
	if err != nil {
		h.logger.Error("dropping undecodable message",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return nil
	}

	if trigger.ID != "" && h.seen.Seen(trigger.ID) {
		h.metrics.IncDuplicate()
		h.logger.Info("duplicate event skipped",
			zap.String("event_id", trigger.ID),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return nil
	}

	var resp domain.Response
	err = retry.Do(ctx, h.retryPolicy, func() error {
		resp = h.dispatcher.Dispatch(ctx, trigger)
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("status %d: %s", resp.StatusCode, resp.Body)
		}
		return nil
	})
	if err != nil {
		h.logger.Error("event failed after retries",
			zap.String("event_id", trigger.ID),
			zap.String("detail_type", trigger.DetailType),
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		h.breaker.Failure()
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	h.breaker.Success()
	if resp.StatusCode >= http.StatusBadRequest {
		h.logger.Warn("event rejected",
			zap.String("event_id", trigger.ID),
			zap.String("detail_type", trigger.DetailType),
			zap.Int("status", resp.StatusCode),
			zap.String("body", resp.Body),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return nil
	}

	if trigger.ID != "" {
		h.seen.Add(trigger.ID)
	}
	h.logger.Info("successfully processed event",
		zap.String("event_id", trigger.ID),
		zap.String("detail_type", trigger.DetailType),
		zap.Int("partition", message.Partition),
		zap.Int64("offset", message.Offset),
		zap.Int("value_bytes", len(message.Value)),
	)
	return nil
}

// decodeTrigger reads an event shaped trigger from the message value. The
// detail type may also travel as a header.
func decodeTrigger(message kafkago.Message) (domain.Trigger, error) {
	var trigger domain.Trigger
	if err := json.Unmarshal(message.Value, &trigger); err != nil {
		return trigger, fmt.Errorf("bad json: %w", err)
	}
	if trigger.DetailType == "" {
		for _, h := range message.Headers {
			if h.Key == detailTypeHeader {
				trigger.DetailType = string(h.Value)
				break
			}
		}
	}
	if !trigger.IsEvent() {
		return trigger, errors.New("missing detail-type")
	}
	return trigger, nil
}
