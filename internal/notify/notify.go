// Package notify turns flight and booking changes into passenger announcements.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
	"github.com/Domenick1991/seatflow/internal/validation"
	"go.uber.org/zap"
)

// Notification is one passenger-visible message. FlightID targets everyone with a
// confirmed booking on the flight, UserID a single passenger, neither means everyone.
type Notification struct {
	FlightID *int64
	UserID   *int64
	Type     domain.AnnouncementType
	Title    string
	Message  string
}

// Emitter is invoked after a state change commits. Its failure must not undo the change.
type Emitter interface {
	Notify(ctx context.Context, n Notification) error
}

// Event is the broker payload consumed by the worker.
type Event struct {
	AnnouncementID int64                   `json:"announcement_id"`
	Type           domain.AnnouncementType `json:"type"`
	FlightID       *int64                  `json:"flight_id,omitempty"`
	UserID         *int64                  `json:"user_id,omitempty"`
	Recipients     []int64                 `json:"recipients,omitempty"`
	Title          string                  `json:"title"`
	Message        string                  `json:"message"`
	CreatedAt      time.Time               `json:"created_at"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

type UseCase interface {
	Emitter
	ListForUser(ctx context.Context, userID int64) ([]domain.Announcement, error)
	ListAll(ctx context.Context) ([]domain.Announcement, error)
	CreateAnnouncement(ctx context.Context, caller domain.Caller, input CreateAnnouncementInput) (*domain.Announcement, error)
}

type CreateAnnouncementInput struct {
	FlightID *int64 `json:"flight_id"`
	UserID   *int64 `json:"user_id"`
	Type     string `json:"type" validate:"omitempty,oneof=DELAY CANCELLATION GATE_CHANGE BOARDING GENERAL"`
	Title    string `json:"title" validate:"required,max=200"`
	Message  string `json:"message" validate:"required"`
}

type Service struct {
	announcements repository.AnnouncementRepository
	bookings      repository.BookingRepository
	publisher     Publisher
	clock         clock.Clock
	log           *zap.Logger
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(store repository.Store, clk clock.Clock, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		announcements: store.Announcements,
		bookings:      store.Bookings,
		clock:         clk,
		log:           log.With(zap.String("service", "notify")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Notify(ctx context.Context, n Notification) error {
	_, err := s.emit(ctx, n)
	return err
}

// emit persists the announcement and publishes it. A non-nil announcement with an
// error means only delivery failed.
func (s *Service) emit(ctx context.Context, n Notification) (*domain.Announcement, error) {
	a := &domain.Announcement{
		FlightID:  n.FlightID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Active:    true,
		CreatedAt: s.clock.Now(),
	}
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("save announcement: %w", err)
	}
	if s.publisher == nil {
		return a, nil
	}

	var recipients []int64
	key := "general"
	switch {
	case a.UserID != nil:
		recipients = []int64{*a.UserID}
		key = fmt.Sprintf("user-%d", *a.UserID)
	case a.FlightID != nil:
		ids, err := s.bookings.ListConfirmedUserIDs(ctx, *a.FlightID)
		if err != nil {
			return a, fmt.Errorf("resolve recipients: %w", err)
		}
		recipients = ids
		key = fmt.Sprintf("flight-%d", *a.FlightID)
	}

	event := Event{
		AnnouncementID: a.ID,
		Type:           a.Type,
		FlightID:       a.FlightID,
		UserID:         a.UserID,
		Recipients:     recipients,
		Title:          a.Title,
		Message:        a.Message,
		CreatedAt:      a.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		return a, fmt.Errorf("publish announcement %d: %w", a.ID, err)
	}
	s.log.Debug("announcement published", zap.Int64("announcement_id", a.ID), zap.Int("recipients", len(recipients)))
	return a, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]domain.Announcement, error) {
	flightIDs, err := s.bookings.ListFlightIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.announcements.ListForUser(ctx, userID, flightIDs)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Announcement, error) {
	return s.announcements.ListAll(ctx)
}

func (s *Service) CreateAnnouncement(ctx context.Context, caller domain.Caller, input CreateAnnouncementInput) (*domain.Announcement, error) {
	if !caller.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}

	input.Type = strings.ToUpper(strings.TrimSpace(input.Type))
	input.Title = strings.TrimSpace(input.Title)
	input.Message = strings.TrimSpace(input.Message)
	if fields := validation.Struct(input); fields != nil {
		return nil, &domain.ValidationError{Err: domain.ErrInvalidInput, Fields: fields}
	}
	typ := domain.AnnouncementType(input.Type)
	if typ == "" {
		typ = domain.AnnouncementGeneral
	}

	a, err := s.emit(ctx, Notification{
		FlightID: input.FlightID,
		UserID:   input.UserID,
		Type:     typ,
		Title:    input.Title,
		Message:  input.Message,
	})
	if a == nil {
		return nil, err
	}
	if err != nil {
		s.log.Warn("announcement delivery failed", zap.Int64("announcement_id", a.ID), zap.Error(err))
	}
	return a, nil
}

// Send emits n and logs instead of failing. Used right after a committed state change.
func Send(ctx context.Context, e Emitter, log *zap.Logger, n Notification) {
	if e == nil {
		return
	}
	if err := e.Notify(ctx, n); err != nil {
		log.Warn("notification failed", zap.String("type", string(n.Type)), zap.Error(err))
	}
}

func Int64(v int64) *int64 { return &v }

var _ UseCase = (*Service)(nil)
