package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/TemirB/carts-service/internal/domain"
	"github.com/TemirB/carts-service/internal/observability"
)

//go:generate mockgen -source httpapi.go -destination=httpapi_mock_test.go -package=httpapi

const maxBodyBytes = 1 << 20

type Dispatcher interface {
	Dispatch(ctx context.Context, trigger domain.Trigger) domain.Response
}

type snapshotter interface {
	Snapshot() observability.Snapshot
}

// Server turns HTTP requests into triggers for the dispatcher. Cart paths
// accept every verb so that a wrong verb still gets an envelope back.
type Server struct {
	dispatcher Dispatcher
	router     chi.Router
	logger     *zap.Logger
	metrics    observability.Metrics
}

func New(dispatcher Dispatcher, logger *zap.Logger, metrics observability.Metrics) *Server {
	s := &Server{
		dispatcher: dispatcher,
		router:     chi.NewRouter(),
		logger:     logger,
		metrics:    metrics,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.logger))
	r.Use(ServerTimingApp(s.metrics))

	r.Get("/healthz", s.healthz)
	r.Get("/metrics", s.metricsSnapshot)
	r.HandleFunc("/invoke", s.invoke)

	r.HandleFunc("/carts", s.forward)
	r.HandleFunc("/carts/*", s.forward)
	r.NotFound(s.forward)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) metricsSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.metrics.(snapshotter)
	if !ok {
		http.Error(w, "metrics disabled", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap.Snapshot())
}

// forward dispatches a real REST request and writes the envelope as the
// HTTP response.
func (s *Server) forward(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.logger.Warn("read request body", zap.Error(err), zap.String("path", r.URL.Path))
		writeEnvelope(w, domain.ErrorResponse(fmt.Errorf("%w: %v", domain.ErrInvalidItem, err)))
		return
	}

	start := time.Now()
	resp := s.dispatcher.Dispatch(r.Context(), domain.Trigger{
		HTTPMethod: r.Method,
		Path:       r.URL.Path,
		Body:       body,
	})
	dur := observability.SinceMs(start)
	observability.AppendServerTiming(w, "dispatch", dur, "dispatcher")
	observability.SetIfPos(w, "X-Dispatch-Time", dur)
	writeEnvelope(w, resp)
}

// invoke accepts a raw trigger and answers with the envelope itself.
func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		resp := domain.ErrorResponse(domain.ErrMethodNotAllowed)
		resp.Headers["Allow"] = http.MethodPost
		writeEnvelope(w, resp)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusOK, domain.ErrorResponse(fmt.Errorf("%w: %v", domain.ErrInvalidItem, err)))
		return
	}

	var trigger domain.Trigger
	if err := json.Unmarshal(body, &trigger); err != nil {
		s.logger.Warn("bad trigger json", zap.Error(err))
		writeJSON(w, http.StatusOK, domain.ErrorResponse(fmt.Errorf("%w: %v", domain.ErrInvalidItem, err)))
		return
	}

	start := time.Now()
	resp := s.dispatcher.Dispatch(r.Context(), trigger)
	observability.AppendServerTiming(w, "dispatch", observability.SinceMs(start), "dispatcher")
	writeJSON(w, http.StatusOK, resp)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func writeEnvelope(w http.ResponseWriter, resp domain.Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// ListenAndServe serves until ctx is done and then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler { return s.router }
