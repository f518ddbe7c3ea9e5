package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

const announcementColumns = `id, flight_id, user_id, type, title, message, active, created_at`

type PGAnnouncementRepository struct {
	pgConn
}

func NewAnnouncementRepository(db *pgxpool.Pool) AnnouncementRepository {
	return &PGAnnouncementRepository{pgConn{db: db}}
}

func (r *PGAnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	err := r.queryRow(ctx, `INSERT INTO announcements (flight_id, user_id, type, title, message, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		a.FlightID, a.UserID, a.Type, a.Title, a.Message, a.Active, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

func (r *PGAnnouncementRepository) ListForUser(ctx context.Context, userID int64, flightIDs []int64) ([]domain.Announcement, error) {
	if flightIDs == nil {
		flightIDs = []int64{}
	}
	return r.list(ctx, `WHERE active AND (
			(flight_id IS NULL AND user_id IS NULL)
			OR (user_id IS NULL AND flight_id = ANY($1))
			OR user_id = $2
		)`, flightIDs, userID)
}

func (r *PGAnnouncementRepository) ListAll(ctx context.Context) ([]domain.Announcement, error) {
	return r.list(ctx, "")
}

func (r *PGAnnouncementRepository) list(ctx context.Context, where string, args ...any) ([]domain.Announcement, error) {
	rows, err := r.query(ctx, `SELECT `+announcementColumns+` FROM announcements `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var out []domain.Announcement
	for rows.Next() {
		var a domain.Announcement
		if err := rows.Scan(&a.ID, &a.FlightID, &a.UserID, &a.Type, &a.Title, &a.Message, &a.Active, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ AnnouncementRepository = (*PGAnnouncementRepository)(nil)
