package booking

import (
	"context"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/validation"
)

type ProfileUseCase interface {
	GetProfile(ctx context.Context, caller domain.Caller) (*domain.PassengerProfile, error)
	SaveProfile(ctx context.Context, caller domain.Caller, data domain.PassengerData) (*domain.PassengerProfile, error)
}

// GetProfile returns the caller's passenger profile, an empty one when nothing was saved yet.
func (s *BookingService) GetProfile(ctx context.Context, caller domain.Caller) (*domain.PassengerProfile, error) {
	p, err := s.profiles.Get(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &domain.PassengerProfile{UserID: caller.UserID}, nil
	}
	return p, nil
}

func (s *BookingService) SaveProfile(ctx context.Context, caller domain.Caller, data domain.PassengerData) (*domain.PassengerProfile, error) {
	if fields := validation.Struct(data); fields != nil {
		return nil, &domain.ValidationError{Err: domain.ErrInvalidPassengerData, Fields: fields}
	}
	data.DateOfBirth = data.DateOfBirth.UTC()
	p := &domain.PassengerProfile{UserID: caller.UserID, PassengerData: data, UpdatedAt: s.clock.Now()}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

var _ ProfileUseCase = (*BookingService)(nil)
