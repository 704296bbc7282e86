package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

type Tables struct {
	Schema string
	Carts  string
}

type Postgres struct {
	Host     string
	Port     string
	DB       string
	User     string
	Password string
	SSLMode  string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Mongo struct {
	URI        string
	DB         string
	Collection string
}

type Kafka struct {
	Brokers       []string
	UserTopic     string
	Group         string
	Workers       int
	CheckoutTopic string
	Partitions    int
	Replication   int
}

// Events names the event types the service emits and reacts to.
type Events struct {
	Source          string
	CheckoutType    string
	UserCreatedType string
}

type Breaker struct {
	Threshold   uint32
	OpenTimeout time.Duration
	MaxHalfOpen uint32
}

type Retry struct {
	Attempts     int
	Base         time.Duration
	Max          time.Duration
	JitterFactor float64
}

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPAddr string

	StoreDriver      string
	DedupeCap        int
	ConflictAttempts int

	Pg      Postgres
	Tables  Tables
	Redis   Redis
	Mongo   Mongo
	Kafka   Kafka
	Events  Events
	Breaker Breaker
	Retry   Retry
}

// Load keeps the original API and fatals on error for simplicity in main().
func Load() Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	return cfg
}

func load() (Config, error) {
	_ = godotenv.Load("env/.env")

	cfg := Config{
		AppEnv:   envDefault("APP_ENV", "prod"),
		LogLevel: envDefault("LOG_LEVEL", "info"),
		HTTPAddr: envDefault("HTTP_ADDR", ":8081"),

		StoreDriver:      strings.ToLower(envDefault("STORE_DRIVER", DriverPostgres)),
		DedupeCap:        envInt("DEDUPE_CAP", 10000),
		ConflictAttempts: envInt("CONFLICT_ATTEMPTS", 3),

		Pg: Postgres{
			Host:     strings.TrimSpace(os.Getenv("PG_HOST")),
			Port:     strings.TrimSpace(envDefault("PG_PORT", "5432")),
			DB:       strings.TrimSpace(os.Getenv("PG_DB")),
			User:     strings.TrimSpace(os.Getenv("PG_USER")),
			Password: strings.TrimSpace(os.Getenv("PG_PASSWORD")),
			SSLMode:  strings.TrimSpace(envDefault("PG_SSLMODE", "disable")),
		},

		Tables: Tables{
			Schema: envDefault("DB_SCHEMA", "public"),
			Carts:  envDefault("TBL_CARTS", "carts"),
		},

		Redis: Redis{
			Addr:     envDefault("REDIS_ADDR", "localhost:6379"),
			Password: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
			DB:       envInt("REDIS_DB", 0),
			Prefix:   envDefault("REDIS_PREFIX", "carts"),
		},

		Mongo: Mongo{
			URI:        strings.TrimSpace(os.Getenv("MONGO_URI")),
			DB:         envDefault("MONGO_DB", "carts"),
			Collection: envDefault("MONGO_COLLECTION", "carts"),
		},

		Kafka: Kafka{
			Brokers:       splitCSV(strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))),
			UserTopic:     strings.TrimSpace(os.Getenv("KAFKA_USER_TOPIC")),
			Group:         strings.TrimSpace(os.Getenv("KAFKA_GROUP")),
			Workers:       envInt("KAFKA_WORKERS", 4),
			CheckoutTopic: strings.TrimSpace(os.Getenv("KAFKA_CHECKOUT_TOPIC")),
			Partitions:    envInt("KAFKA_PARTITIONS", 3),
			Replication:   envInt("KAFKA_REPLICATION", 1),
		},

		Events: Events{
			Source:          envDefault("EVENT_SOURCE", "carts.service"),
			CheckoutType:    envDefault("EVENT_CHECKOUT_TYPE", "CartCheckedOut"),
			UserCreatedType: envDefault("EVENT_USER_CREATED_TYPE", "UserCreated"),
		},

		Breaker: Breaker{
			Threshold:   envUint32("BREAKER_THRESHOLD", 5),
			OpenTimeout: envDurationMS("BREAKER_OPENTIMEOUT", 10*time.Second),
			MaxHalfOpen: envUint32("BREAKER_MAXHALFOPEN", 3),
		},

		Retry: Retry{
			Attempts:     envInt("RETRY_ATTEMPTS", 5),
			Base:         envDurationMS("RETRY_BASE", 100*time.Millisecond),
			Max:          envDurationMS("RETRY_MAX", 5*time.Second),
			JitterFactor: envFloat64("RETRY_JITTERFACTOR", 0.3),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	req := map[string]string{
		"KAFKA_BROKERS":        strings.Join(c.Kafka.Brokers, ","),
		"KAFKA_USER_TOPIC":     c.Kafka.UserTopic,
		"KAFKA_GROUP":          c.Kafka.Group,
		"KAFKA_CHECKOUT_TOPIC": c.Kafka.CheckoutTopic,
	}
	switch c.StoreDriver {
	case DriverPostgres:
		req["PG_HOST"] = c.Pg.Host
		req["PG_DB"] = c.Pg.DB
		req["PG_USER"] = c.Pg.User
		req["PG_PASSWORD"] = c.Pg.Password
	case DriverRedis:
		req["REDIS_ADDR"] = c.Redis.Addr
	case DriverMongo:
		req["MONGO_URI"] = c.Mongo.URI
	default:
		return &invalidEnvError{Key: "STORE_DRIVER", Value: c.StoreDriver}
	}

	for k, v := range req {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &missingEnvError{Keys: missing}
	}
	return nil
}

// normalize clamps values that would otherwise break the workers.
func (c *Config) normalize() {
	if c.DedupeCap <= 0 {
		log.Printf("DEDUPE_CAP is %d, adjusting to 1", c.DedupeCap)
		c.DedupeCap = 1
	}
	if c.ConflictAttempts < 1 {
		log.Printf("CONFLICT_ATTEMPTS is %d, adjusting to 1", c.ConflictAttempts)
		c.ConflictAttempts = 1
	}
	if c.Kafka.Workers < 1 {
		log.Printf("KAFKA_WORKERS is %d, adjusting to 1", c.Kafka.Workers)
		c.Kafka.Workers = 1
	}
	if c.Retry.Attempts < 1 {
		log.Printf("RETRY_ATTEMPTS is %d, adjusting to 1", c.Retry.Attempts)
		c.Retry.Attempts = 1
	}
	if c.Retry.Base <= 0 {
		log.Printf("RETRY_BASE is %v, adjusting to 100ms", c.Retry.Base)
		c.Retry.Base = 100 * time.Millisecond
	}
	if c.Retry.Max < c.Retry.Base {
		log.Printf("RETRY_MAX (%v) < RETRY_BASE (%v), adjusting max to base", c.Retry.Max, c.Retry.Base)
		c.Retry.Max = c.Retry.Base
	}
}

type missingEnvError struct{ Keys []string }

func (e *missingEnvError) Error() string {
	return "missing required envs: " + strings.Join(e.Keys, ", ")
}

type invalidEnvError struct{ Key, Value string }

func (e *invalidEnvError) Error() string {
	return "invalid " + e.Key + "=" + strconv.Quote(e.Value)
}

// DSN builds a proper Postgres URL, safely escaping user/pass and query.
func (c Config) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Pg.User, c.Pg.Password),
		Host:   net.JoinHostPort(c.Pg.Host, c.Pg.Port),
		Path:   "/" + c.Pg.DB,
	}
	q := url.Values{}
	if c.Pg.SSLMode != "" {
		q.Set("sslmode", c.Pg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return n
}

func envUint32(k string, def uint32) uint32 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return uint32(u)
}

func envFloat64(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %.3f: %v", k, v, def, err)
		return def
	}
	return f
}

// envDurationMS supports either plain integer milliseconds ("1500") or
// Go duration strings ("1.5s", "250ms", "2m").
func envDurationMS(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
			return def
		}
		return d
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
