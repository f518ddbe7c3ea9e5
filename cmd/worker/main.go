package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/seatflow/config"
	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/email"
	"github.com/Domenick1991/seatflow/internal/kafka"
	"github.com/Domenick1991/seatflow/internal/logger"
	"github.com/Domenick1991/seatflow/internal/notify"
	"github.com/Domenick1991/seatflow/internal/rabbitmq"
	"github.com/Domenick1991/seatflow/internal/repository"
	"github.com/Domenick1991/seatflow/internal/service/booking"
	"github.com/Domenick1991/seatflow/internal/service/seats"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
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

	logg, err := logger.New(cfg.Log.Path, "worker", cfg.Log.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	sender := email.NewSender(logg)

	switch cfg.Notifications.Broker {
	case "kafka":
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logg)
		defer consumer.Close()
		g.Go(func() error {
			return kafka.ConsumeJSON(ctx, consumer, sender.Send)
		})
	case "rabbitmq":
		g.Go(func() error {
			return rabbitmq.Consume[notify.Event](ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logg, sender.Send)
		})
	default:
		logg.Info("notification broker disabled, not consuming announcements")
	}

	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			logg.Fatal("connect postgres", zap.Error(err))
		}
		defer pool.Close()

		store := repository.NewPGStore(pool)
		clk := clock.NewSystem()
		ledger := seats.NewLedger(store, clk, logg,
			seats.WithHoldTTL(cfg.Booking.HoldTTL()),
			seats.WithPaymentGrace(cfg.Booking.PaymentGrace()),
		)
		bookingService := booking.NewBookingService(store, ledger, clk, logg)
		interval := time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute

		g.Go(func() error {
			return sweepExpired(ctx, bookingService, interval, logg)
		})
	} else {
		logg.Warn("database disabled, expiration sweep not running")
	}

	if err := g.Wait(); err != nil {
		logg.Error("worker stopped", zap.Error(err))
		return
	}
	logg.Info("worker stopped")
}

// sweepExpired cancels unpaid bookings past their grace period until ctx is done.
// Reads already expire lazily; the sweep frees seats nobody is looking at.
func sweepExpired(ctx context.Context, bookings booking.BookingUseCase, interval time.Duration, logg *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			expired, err := bookings.ExpireStaleBookings(ctx)
			if err != nil {
				logg.Error("expire bookings", zap.Error(err))
				continue
			}
			if expired > 0 {
				logg.Info("expired bookings", zap.Int("count", expired))
			}
		}
	}
}
