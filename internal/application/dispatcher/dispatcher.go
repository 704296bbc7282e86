package dispatcher

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/TemirB/carts-service/internal/domain"
)

//go:generate mockgen -source dispatcher.go -destination=dispatcher_mock_test.go -package=dispatcher

type Operations interface {
	FetchCart(ctx context.Context, body json.RawMessage) domain.Response
	UpdateCart(ctx context.Context, body json.RawMessage) domain.Response
	SaveCart(ctx context.Context, body json.RawMessage) domain.Response
	Checkout(ctx context.Context, body json.RawMessage) domain.Response
	ProvisionUser(ctx context.Context, detail json.RawMessage) domain.Response
}

type operation func(ctx context.Context, body json.RawMessage) domain.Response

type route struct {
	method string
	op     operation
}

// Dispatcher routes a trigger to exactly one cart operation. It never
// returns a bare error: rejected triggers get an envelope too.
type Dispatcher struct {
	ops             Operations
	userCreatedType string
	routes          map[string]route
	logger          *zap.Logger
}

func New(ops Operations, userCreatedType string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		ops:             ops,
		userCreatedType: userCreatedType,
		routes: map[string]route{
			"/carts":          {method: http.MethodPost, op: ops.FetchCart},
			"/carts/update":   {method: http.MethodPost, op: ops.UpdateCart},
			"/carts/save":     {method: http.MethodPost, op: ops.SaveCart},
			"/carts/checkout": {method: http.MethodPost, op: ops.Checkout},
		},
		logger: logger,
	}
}

// Paths lists the request paths the dispatcher serves.
func (d *Dispatcher) Paths() []string {
	paths := make([]string, 0, len(d.routes))
	for p := range d.routes {
		paths = append(paths, p)
	}
	return paths
}

func (d *Dispatcher) Dispatch(ctx context.Context, trigger domain.Trigger) domain.Response {
	if trigger.IsEvent() {
		if trigger.DetailType != d.userCreatedType {
			d.logger.Warn("unsupported event type",
				zap.String("detail_type", trigger.DetailType),
				zap.String("event_id", trigger.ID),
			)
			return domain.ErrorResponse(domain.ErrUnsupportedRoute)
		}
		return d.ops.ProvisionUser(ctx, trigger.EventDetail())
	}

	path := normalizePath(trigger.Path)
	r, ok := d.routes[path]
	if !ok {
		d.logger.Warn("unsupported route",
			zap.String("method", trigger.HTTPMethod),
			zap.String("path", trigger.Path),
		)
		return domain.ErrorResponse(domain.ErrUnsupportedRoute)
	}
	if !strings.EqualFold(trigger.HTTPMethod, r.method) {
		d.logger.Warn("method not allowed",
			zap.String("method", trigger.HTTPMethod),
			zap.String("path", trigger.Path),
		)
		resp := domain.ErrorResponse(domain.ErrMethodNotAllowed)
		resp.Headers["Allow"] = r.method
		return resp
	}

	return r.op(ctx, trigger.Payload())
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
