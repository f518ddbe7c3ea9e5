package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	GRPC          GRPCConfig          `yaml:"grpc"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	RabbitMQ      RabbitMQConfig      `yaml:"rabbitmq"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Auth          AuthConfig          `yaml:"auth"`
	Booking       BookingConfig       `yaml:"booking"`
	CheckIn       CheckInConfig       `yaml:"check_in"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Worker        WorkerConfig        `yaml:"worker"`
	Log           LogConfig           `yaml:"log"`
	SeatMap       SeatMapConfig       `yaml:"seat_map"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Enabled is false when no host is configured; the app then runs on the in-memory store.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type RabbitMQConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

// NotificationsConfig selects where notification events are published: kafka, rabbitmq or none.
type NotificationsConfig struct {
	Broker string `yaml:"broker"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

type BookingConfig struct {
	HoldTTLMinutes         int `yaml:"hold_ttl_minutes"`
	PaymentGraceMinutes    int `yaml:"payment_grace_minutes"`
	SeatLockSeconds        int `yaml:"seat_lock_seconds"`
	FlightsCacheTTLSeconds int `yaml:"flights_cache_ttl_seconds"`
}

func (b BookingConfig) HoldTTL() time.Duration      { return time.Duration(b.HoldTTLMinutes) * time.Minute }
func (b BookingConfig) PaymentGrace() time.Duration { return time.Duration(b.PaymentGraceMinutes) * time.Minute }
func (b BookingConfig) SeatLockTTL() time.Duration  { return time.Duration(b.SeatLockSeconds) * time.Second }
func (b BookingConfig) FlightsCacheTTL() time.Duration {
	return time.Duration(b.FlightsCacheTTLSeconds) * time.Second
}

type CheckInConfig struct {
	OpensHoursBefore      int    `yaml:"opens_hours_before"`
	ClosesHoursBefore     int    `yaml:"closes_hours_before"`
	BoardingOffsetMinutes int    `yaml:"boarding_offset_minutes"`
	GatePrefix            string `yaml:"gate_prefix"`
	GatePlaceholder       string `yaml:"gate_placeholder"`
}

type SchedulerConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Debug bool   `yaml:"debug"`
}

type SeatMapConfig struct {
	OverridesPath string `yaml:"overrides_path"`
}

// LoadConfig reads an optional .env file, the YAML config at path, then applies
// defaults and environment overrides.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.HTTP.Address, ":8080")
	setDefault(&c.GRPC.Address, ":9090")
	setDefault(&c.Database.SSLMode, "disable")
	setDefault(&c.Kafka.NotificationsTopic, "flight-notifications")
	setDefault(&c.Kafka.GroupID, "seatflow-worker")
	setDefault(&c.RabbitMQ.Queue, "flight.notifications")
	setDefault(&c.Notifications.Broker, "kafka")
	setDefault(&c.CheckIn.GatePrefix, "Gate ")
	setDefault(&c.CheckIn.GatePlaceholder, "TBA")

	setDefaultInt(&c.Database.Port, 5432)
	setDefaultInt(&c.Auth.TokenTTLMinutes, 60)
	setDefaultInt(&c.Booking.HoldTTLMinutes, 10)
	setDefaultInt(&c.Booking.PaymentGraceMinutes, 10)
	setDefaultInt(&c.Booking.SeatLockSeconds, 5)
	setDefaultInt(&c.Booking.FlightsCacheTTLSeconds, 30)
	setDefaultInt(&c.CheckIn.OpensHoursBefore, 24)
	setDefaultInt(&c.CheckIn.ClosesHoursBefore, 1)
	setDefaultInt(&c.CheckIn.BoardingOffsetMinutes, 30)
	setDefaultInt(&c.Scheduler.IntervalSeconds, 60)
	setDefaultInt(&c.Worker.ExpirationSweepMinutes, 1)
}

func (c *Config) applyEnv() {
	overrideFromEnv(&c.Database.Password, "DATABASE_PASSWORD")
	overrideFromEnv(&c.Auth.JWTSecret, "JWT_SECRET")
	overrideFromEnv(&c.Redis.Addr, "REDIS_ADDR")
	overrideFromEnv(&c.RabbitMQ.URL, "AMQP_URL")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// setDefaultInt also replaces negative values; none of the numeric settings accept them.
func setDefaultInt(field *int, value int) {
	if *field <= 0 {
		*field = value
	}
}

func overrideFromEnv(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}
