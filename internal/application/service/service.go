package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TemirB/carts-service/internal/config"
	"github.com/TemirB/carts-service/internal/domain"
	"github.com/TemirB/carts-service/internal/observability"
	"github.com/TemirB/carts-service/internal/pkg/retry"
)

//go:generate mockgen -source service.go -destination=service_mock_test.go -package=service

const checkoutIDHeader = "checkout-id"

type Store interface {
	Get(ctx context.Context, email string) (domain.Record, error)
	Put(ctx context.Context, email string, cart domain.Cart) error
	PutIfVersion(ctx context.Context, email string, cart domain.Cart, version int64) error
	Create(ctx context.Context, email string) (bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

type Options struct {
	CheckoutTopic    string
	Events           config.Events
	ConflictAttempts int
	Retry            config.Retry
}

type Service struct {
	store     Store
	publisher Publisher
	opts      Options
	logger    *zap.Logger
	metrics   observability.Metrics

	newID func() string
	now   func() time.Time
}

func NewService(store Store, publisher Publisher, opts Options, logger *zap.Logger, metrics observability.Metrics) *Service {
	if opts.ConflictAttempts < 1 {
		opts.ConflictAttempts = 1
	}
	return &Service{
		store:     store,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// FetchCart returns the stored cart of body.email.
func (s *Service) FetchCart(ctx context.Context, body json.RawMessage) (resp domain.Response) {
	defer s.observe("FetchCart", time.Now(), &resp)()

	var req emailRequest
	if err := decode(body, &req, domain.ErrInvalidAccess); err != nil {
		return s.fail("FetchCart", "", err)
	}
	if missing(req.Email) {
		return s.fail("FetchCart", "", domain.ErrInvalidAccess)
	}

	rec, err := s.store.Get(ctx, req.Email)
	if err != nil {
		return s.fail("FetchCart", req.Email, err)
	}
	return s.ok("OK", rec.Carts)
}

// UpdateCart merges one item into the cart. A concurrent write between the
// read and the write is detected by version and the merge is redone, up to
// the configured number of attempts.
func (s *Service) UpdateCart(ctx context.Context, body json.RawMessage) (resp domain.Response) {
	defer s.observe("UpdateCart", time.Now(), &resp)()

	var req updateRequest
	if err := decode(body, &req, domain.ErrInvalidItem); err != nil {
		return s.fail("UpdateCart", "", err)
	}
	if missing(req.Email) || missing(req.ProdName) || req.Quantity == nil || req.Price == nil || req.ImageURL == nil {
		return s.fail("UpdateCart", req.Email, domain.ErrInvalidAccess)
	}
	item := req.item()
	if err := item.Validate(); err != nil {
		return s.fail("UpdateCart", req.Email, err)
	}

	for attempt := 1; ; attempt++ {
		rec, err := s.store.Get(ctx, req.Email)
		if err != nil {
			return s.fail("UpdateCart", req.Email, err)
		}

		merged, err := domain.Merge(rec.Carts, item)
		if err != nil {
			return s.fail("UpdateCart", req.Email, err)
		}

		err = s.store.PutIfVersion(ctx, req.Email, merged, rec.Version)
		if err == nil {
			s.logger.Info("cart updated",
				zap.String("email", req.Email),
				zap.String("product", item.ProductID),
				zap.Int64("version", rec.Version+1),
				zap.Int("attempt", attempt),
			)
			return s.ok("Update Successful", merged)
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= s.opts.ConflictAttempts {
			return s.fail("UpdateCart", req.Email, err)
		}

		s.metrics.IncConflict()
		s.logger.Warn("cart modified concurrently, merging again",
			zap.String("email", req.Email),
			zap.Int64("version", rec.Version),
			zap.Int("attempt", attempt),
		)
	}
}

// SaveCart replaces the whole cart with body.cartInfo.
func (s *Service) SaveCart(ctx context.Context, body json.RawMessage) (resp domain.Response) {
	defer s.observe("SaveCart", time.Now(), &resp)()

	var req cartRequest
	if err := decode(body, &req, domain.ErrInvalidAccess); err != nil {
		return s.fail("SaveCart", "", err)
	}
	if missing(req.Email) || req.CartInfo == nil {
		return s.fail("SaveCart", req.Email, domain.ErrInvalidAccess)
	}

	cart := domain.ReplaceAll(req.CartInfo)
	if err := s.store.Put(ctx, req.Email, cart); err != nil {
		return s.fail("SaveCart", req.Email, err)
	}

	s.logger.Info("cart saved",
		zap.String("email", req.Email),
		zap.Int("items", len(cart)),
	)
	return s.ok("Update Successful", cart)
}

// Checkout publishes the checkout event with the whole request body and
// then empties the cart. Emptying is an idempotent write and is retried;
// when it keeps failing the caller gets the checkout id back so a retried
// checkout can be matched downstream.
func (s *Service) Checkout(ctx context.Context, body json.RawMessage) (resp domain.Response) {
	defer s.observe("Checkout", time.Now(), &resp)()

	var req cartRequest
	if err := decode(body, &req, domain.ErrInvalidAccess); err != nil {
		return s.fail("Checkout", "", err)
	}
	if missing(req.Email) || len(req.CartInfo) == 0 {
		return s.fail("Checkout", req.Email, domain.ErrInvalidAccess)
	}

	checkoutID := s.newID()
	event := domain.Event{
		ID:         checkoutID,
		Source:     s.opts.Events.Source,
		DetailType: s.opts.Events.CheckoutType,
		Time:       s.now().UTC(),
		Detail:     body,
		Channel:    s.opts.CheckoutTopic,
		Key:        req.Email,
		Headers:    map[string]string{checkoutIDHeader: checkoutID},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		return s.fail("Checkout", req.Email, fmt.Errorf("%w: %v", domain.ErrPublishFailure, err))
	}

	err := retry.DoIf(ctx, s.opts.Retry, func() error {
		return s.store.Put(ctx, req.Email, domain.Cart{})
	}, retryable)
	if err != nil {
		s.logger.Error("checkout published but cart not cleared",
			zap.String("email", req.Email),
			zap.String("checkout_id", checkoutID),
			zap.Error(err),
		)
		return domain.NewResponse(http.StatusInternalServerError, domain.Payload{
			Message:    domain.MessageOf(domain.ErrCheckoutIncomplete),
			CheckoutID: checkoutID,
		})
	}

	s.logger.Info("checkout completed",
		zap.String("email", req.Email),
		zap.String("checkout_id", checkoutID),
		zap.Int("items", len(req.CartInfo)),
	)
	return domain.NewResponse(http.StatusOK, domain.Payload{
		Message:    "Checkout Successful",
		CheckoutID: checkoutID,
	})
}

// ProvisionUser creates an empty cart for a newly registered user. An
// existing cart is left untouched.
func (s *Service) ProvisionUser(ctx context.Context, detail json.RawMessage) (resp domain.Response) {
	defer s.observe("ProvisionUser", time.Now(), &resp)()

	var req emailRequest
	if err := decode(detail, &req, domain.ErrInvalidAccess); err != nil {
		return s.fail("ProvisionUser", "", err)
	}
	if missing(req.Email) {
		return s.fail("ProvisionUser", "", domain.ErrInvalidAccess)
	}

	created, err := s.store.Create(ctx, req.Email)
	if err != nil {
		return s.fail("ProvisionUser", req.Email, err)
	}
	if !created {
		s.logger.Info("cart already exists", zap.String("email", req.Email))
		return s.ok("Cart Already Exists", nil)
	}

	s.logger.Info("cart created", zap.String("email", req.Email))
	return s.ok("Cart Created", nil)
}

// retryable reports false once the caller has given up.
func retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (s *Service) ok(message string, carts domain.Cart) domain.Response {
	return domain.OK(message, carts)
}

func (s *Service) fail(op, email string, err error) domain.Response {
	resp := domain.ErrorResponse(err)
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("email", email),
		zap.Int("status", resp.StatusCode),
		zap.Error(err),
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		s.logger.Error("cart operation failed", fields...)
	} else {
		s.logger.Warn("cart operation rejected", fields...)
	}
	return resp
}

func (s *Service) observe(op string, start time.Time, resp *domain.Response) func() {
	return func() {
		s.metrics.ObserveOperation(op, resp.StatusCode, observability.SinceMs(start))
	}
}
