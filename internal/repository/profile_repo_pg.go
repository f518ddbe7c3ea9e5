package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGProfileRepository struct {
	pgConn
}

func NewProfileRepository(db *pgxpool.Pool) ProfileRepository {
	return &PGProfileRepository{pgConn{db: db}}
}

func (r *PGProfileRepository) Get(ctx context.Context, userID int64) (*domain.PassengerProfile, error) {
	var p domain.PassengerProfile
	err := r.queryRow(ctx, `SELECT user_id, first_name, last_name, phone, passport, nationality, date_of_birth, updated_at
		FROM passenger_profiles WHERE user_id=$1`, userID).
		Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Phone, &p.Passport, &p.Nationality, &p.DateOfBirth, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile of user %d: %w", userID, err)
	}
	return &p, nil
}

func (r *PGProfileRepository) Upsert(ctx context.Context, profile *domain.PassengerProfile) error {
	_, err := r.exec(ctx, `INSERT INTO passenger_profiles (user_id, first_name, last_name, phone, passport, nationality, date_of_birth, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			passport = EXCLUDED.passport,
			nationality = EXCLUDED.nationality,
			date_of_birth = EXCLUDED.date_of_birth,
			updated_at = EXCLUDED.updated_at`,
		profile.UserID, profile.FirstName, profile.LastName, profile.Phone, profile.Passport, profile.Nationality, profile.DateOfBirth, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save profile of user %d: %w", profile.UserID, err)
	}
	return nil
}

var _ ProfileRepository = (*PGProfileRepository)(nil)
