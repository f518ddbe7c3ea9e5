package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
)

type profileRepo struct{ db *DB }

func (r profileRepo) Get(ctx context.Context, userID int64) (*domain.PassengerProfile, error) {
	defer r.db.acquire(ctx)()
	p, ok := r.db.data.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r profileRepo) Upsert(ctx context.Context, profile *domain.PassengerProfile) error {
	defer r.db.acquire(ctx)()
	r.db.data.profiles[profile.UserID] = *profile
	return nil
}

type announcementRepo struct{ db *DB }

func newestAnnouncementFirst(a, b domain.Announcement) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func (r announcementRepo) Create(ctx context.Context, a *domain.Announcement) error {
	defer r.db.acquire(ctx)()
	a.ID = r.db.data.id()
	r.db.data.announcements[a.ID] = *a
	return nil
}

func (r announcementRepo) ListForUser(ctx context.Context, userID int64, flightIDs []int64) ([]domain.Announcement, error) {
	defer r.db.acquire(ctx)()
	return sortedValues(r.db.data.announcements, func(a domain.Announcement) bool {
		if !a.Active {
			return false
		}
		switch {
		case a.UserID != nil:
			return *a.UserID == userID
		case a.FlightID != nil:
			return slices.Contains(flightIDs, *a.FlightID)
		default:
			return true
		}
	}, newestAnnouncementFirst), nil
}

func (r announcementRepo) ListAll(ctx context.Context) ([]domain.Announcement, error) {
	defer r.db.acquire(ctx)()
	return sortedValues(r.db.data.announcements, nil, newestAnnouncementFirst), nil
}

var (
	_ repository.ProfileRepository      = profileRepo{}
	_ repository.AnnouncementRepository = announcementRepo{}
)
