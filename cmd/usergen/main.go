package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/TemirB/carts-service/internal/domain"
	"github.com/TemirB/carts-service/internal/kafka"
)

// Generator publishes user created events at a fixed rate so provisioning
// can be exercised end to end.
type Generator struct {
	publisher  *kafka.Publisher
	topic      string
	source     string
	detailType string
	logger     *zap.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning atomic.Bool
	totalSent atomic.Int64
}

type startRequest struct {
	Rate     int    `json:"rate"`
	Duration string `json:"duration"`
}

func (g *Generator) Start(rate int, duration time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.isRunning.Load() {
		return false
	}
	g.isRunning.Store(true)
	g.totalSent.Store(0)

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	g.cancel = cancel
	g.logger.Info("generating users", zap.Int("rate", rate), zap.Duration("duration", duration))

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.isRunning.Store(false)
		defer cancel()

		ticker := time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := g.publishOne(ctx); err != nil {
					g.logger.Warn("publish user", zap.Error(err))
					continue
				}
				g.totalSent.Add(1)
			case <-ctx.Done():
				g.logger.Info("generation finished", zap.Int64("total_sent", g.totalSent.Load()))
				return
			}
		}
	}()
	return true
}

func (g *Generator) Stop() {
	g.mu.Lock()
	cancel := g.cancel
	g.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	g.wg.Wait()
}

func (g *Generator) publishOne(ctx context.Context) error {
	email := fmt.Sprintf("user%d_%d@example.com", time.Now().UnixNano(), rand.Intn(1000))
	detail, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return err
	}
	return g.publisher.Publish(ctx, domain.Event{
		Source:     g.source,
		DetailType: g.detailType,
		Detail:     detail,
		Channel:    g.topic,
		Key:        email,
	})
}

func main() {
	_ = godotenv.Load("env/.env")

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	brokers := strings.Split(envDefault("KAFKA_BROKERS", "kafka:9092"), ",")
	writer := kafka.NewWriter(brokers)
	defer writer.Close()

	gen := &Generator{
		publisher:  kafka.NewPublisher(writer, logger.Named("publisher")),
		topic:      envDefault("KAFKA_USER_TOPIC", "users"),
		source:     envDefault("USERGEN_SOURCE", "users.service"),
		detailType: envDefault("EVENT_USER_CREATED_TYPE", "UserCreated"),
		logger:     logger,
	}
	defer gen.Stop()

	r := chi.NewRouter()
	r.Post("/start", func(w http.ResponseWriter, r *http.Request) {
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Rate <= 0 {
			req.Rate = 10
		}
		if req.Rate > 1000 {
			req.Rate = 1000
		}
		duration, err := time.ParseDuration(req.Duration)
		if err != nil || duration <= 0 {
			http.Error(w, "Invalid duration", http.StatusBadRequest)
			return
		}

		started := gen.Start(req.Rate, duration)
		writeJSON(w, map[string]any{
			"started":  started,
			"rate":     req.Rate,
			"duration": duration.String(),
		})
	})
	r.Post("/stop", func(w http.ResponseWriter, r *http.Request) {
		gen.Stop()
		writeJSON(w, map[string]any{
			"status":     "stopped",
			"total_sent": gen.totalSent.Load(),
		})
	})
	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"is_running": gen.isRunning.Load(),
			"total_sent": gen.totalSent.Load(),
		})
	})

	addr := ":" + envDefault("USERGEN_PORT", "8082")
	logger.Info("usergen listening", zap.String("addr", addr), zap.Strings("brokers", brokers))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("usergen stopped", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
