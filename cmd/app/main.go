package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/seatflow/api"
	"github.com/Domenick1991/seatflow/config"
	"github.com/Domenick1991/seatflow/internal/auth"
	"github.com/Domenick1991/seatflow/internal/bootstrap"
	"github.com/Domenick1991/seatflow/internal/cache"
	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/kafka"
	"github.com/Domenick1991/seatflow/internal/logger"
	"github.com/Domenick1991/seatflow/internal/notify"
	"github.com/Domenick1991/seatflow/internal/rabbitmq"
	"github.com/Domenick1991/seatflow/internal/repository"
	"github.com/Domenick1991/seatflow/internal/repository/memory"
	"github.com/Domenick1991/seatflow/internal/scheduler"
	"github.com/Domenick1991/seatflow/internal/seatmap"
	"github.com/Domenick1991/seatflow/internal/service/booking"
	"github.com/Domenick1991/seatflow/internal/service/checkin"
	"github.com/Domenick1991/seatflow/internal/service/flights"
	"github.com/Domenick1991/seatflow/internal/service/payment"
	"github.com/Domenick1991/seatflow/internal/service/seats"
	"github.com/Domenick1991/seatflow/migrations"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.Log.Path, "app", cfg.Log.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()
	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, cfg, logg)
	clk := clock.NewSystem()

	notifyOpts := []notify.Option{}
	switch cfg.Notifications.Broker {
	case "kafka":
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
		defer producer.Close()
		notifyOpts = append(notifyOpts, notify.WithPublisher(kafka.NewTopicPublisher(producer, cfg.Kafka.NotificationsTopic)))
	case "rabbitmq":
		publisher := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logg)
		defer publisher.Close()
		notifyOpts = append(notifyOpts, notify.WithPublisher(publisher))
	default:
		logg.Info("notification broker disabled, announcements are stored only")
	}
	notifier := notify.NewService(store, clk, logg, notifyOpts...)

	policy := checkInPolicy(cfg.CheckIn)
	flightOpts := []flights.FlightServiceOption{flights.WithNotifier(notifier), flights.WithCheckInPolicy(policy)}
	bookingOpts := []booking.BookingServiceOption{booking.WithNotifier(notifier)}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FlightsCacheTTL())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logg.Warn("redis unavailable, continuing without warm cache", zap.Error(err))
		}
		flightOpts = append(flightOpts, flights.WithCache(redisCache))
		bookingOpts = append(bookingOpts, booking.WithCache(redisCache, cfg.Booking.SeatLockTTL()))
	}
	if cfg.SeatMap.OverridesPath != "" {
		layouts, err := seatmap.LoadLayouts(cfg.SeatMap.OverridesPath)
		if err != nil {
			logg.Fatal("load seat map overrides", zap.Error(err))
		}
		flightOpts = append(flightOpts, flights.WithLayouts(layouts))
	}

	ledger := seats.NewLedger(store, clk, logg,
		seats.WithHoldTTL(cfg.Booking.HoldTTL()),
		seats.WithPaymentGrace(cfg.Booking.PaymentGrace()),
	)
	flightService := flights.NewFlightService(store, clk, logg, flightOpts...)
	bookingService := booking.NewBookingService(store, ledger, clk, logg, bookingOpts...)
	paymentService := payment.NewPaymentService(store, ledger, clk, logg)
	checkInService := checkin.NewCheckInService(store, paymentService, policy, clk, logg)

	router := api.NewRouter(api.Services{
		Flights:       flightService,
		Seats:         ledger,
		Bookings:      bookingService,
		Profiles:      bookingService,
		Payments:      paymentService,
		CheckIns:      checkInService,
		Announcements: notifier,
	}, auth.NewProvider(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute, clk), logg)

	statusScheduler := scheduler.New(flightService, cfg.Scheduler.Interval(), logg)

	if err := bootstrap.Run(ctx, cfg, router, logg, statusScheduler); err != nil {
		logg.Fatal("server error", zap.Error(err))
	}
}

// openStore connects to Postgres and applies migrations, or falls back to the
// in-memory store when no database host is configured.
func openStore(ctx context.Context, cfg *config.Config, logg *zap.Logger) repository.Store {
	if !cfg.Database.Enabled() {
		logg.Warn("database disabled, using in-memory store")
		return memory.NewStore()
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logg.Fatal("connect postgres", zap.Error(err))
	}
	if err := pool.Ping(ctx); err != nil {
		logg.Fatal("ping postgres", zap.Error(err))
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		logg.Fatal("apply migrations", zap.Error(err))
	}
	return repository.NewPGStore(pool)
}

func checkInPolicy(cfg config.CheckInConfig) checkin.Policy {
	return checkin.Policy{
		OpensBefore:     time.Duration(cfg.OpensHoursBefore) * time.Hour,
		ClosesBefore:    time.Duration(cfg.ClosesHoursBefore) * time.Hour,
		BoardingOffset:  time.Duration(cfg.BoardingOffsetMinutes) * time.Minute,
		GatePrefix:      cfg.GatePrefix,
		GatePlaceholder: cfg.GatePlaceholder,
	}
}
