package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avicenna-clinic/avicenna_backend/internal/model"
)

type HoldRepository struct {
	pool *pgxpool.Pool
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{pool: pool}
}

const holdColumns = `id, doctor_id, start_time, end_time, expires_at, converted_at, created_at`

func scanHold(row pgx.Row) (*model.Hold, error) {
	var h model.Hold
	err := row.Scan(
		&h.ID,
		&h.DoctorID,
		&h.StartTime,
		&h.EndTime,
		&h.ExpiresAt,
		&h.ConvertedAt,
		&h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateIfSlotFree inserts the hold under the same occupancy guard used
// for appointments. Returns false when the slot is already busy.
func (r *HoldRepository) CreateIfSlotFree(ctx context.Context, h *model.Hold) (bool, error) {
	query := `
		INSERT INTO holds (id, doctor_id, start_time, end_time, expires_at)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments x
			WHERE x.doctor_id = $2
			  AND x.start_time < $4 AND x.end_time > $3
			  AND x.status != ALL($6::text[])
		)
		AND NOT EXISTS (
			SELECT 1 FROM holds o
			WHERE o.doctor_id = $2
			  AND o.start_time < $4 AND o.end_time > $3
			  AND o.converted_at IS NULL AND o.expires_at > now()
		)
		AND NOT EXISTS (
			SELECT 1 FROM leave_requests l
			WHERE l.doctor_id = $2
			  AND (
				(l.start_hour IS NULL
				  AND l.start_date < ($4 AT TIME ZONE 'UTC')
				  AND ($3 AT TIME ZONE 'UTC') < l.end_date + interval '1 day')
				OR
				(l.start_hour IS NOT NULL
				  AND l.start_date + make_interval(hours => l.start_hour::int) < ($4 AT TIME ZONE 'UTC')
				  AND ($3 AT TIME ZONE 'UTC') < l.start_date + make_interval(hours => l.end_hour::int))
			  )
		)
		RETURNING created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		h.ID, h.DoctorID, h.StartTime, h.EndTime, h.ExpiresAt,
		nonOccupyingStatuses(),
	).Scan(&h.CreatedAt)

	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("create hold: %w", err)
	}
	return true, nil
}

// GetByID returns the hold or nil when it doesn't exist.
func (r *HoldRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1`

	h, err := scanHold(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get hold by id: %w", err)
	}
	return h, nil
}

// ListActiveByDoctorAndWindow returns unconverted, unexpired holds for the
// doctor overlapping [from, to), ordered by start time.
func (r *HoldRepository) ListActiveByDoctorAndWindow(ctx context.Context, doctorID uuid.UUID, from, to, now time.Time) ([]*model.Hold, error) {
	query := `
		SELECT ` + holdColumns + `
		FROM holds
		WHERE doctor_id = $1
		  AND start_time < $3 AND end_time > $2
		  AND converted_at IS NULL AND expires_at > $4
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, doctorID, from, to, now)
	if err != nil {
		return nil, fmt.Errorf("list active holds: %w", err)
	}
	defer rows.Close()

	var holds []*model.Hold
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hold: %w", err)
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}

// MarkConverted stamps the hold as converted, conditioned on it still
// being active. Returns false when the hold already converted or expired.
func (r *HoldRepository) MarkConverted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE holds
		SET converted_at = $2
		WHERE id = $1 AND converted_at IS NULL AND expires_at > $2
	`

	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("mark hold converted: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Expire forces an active hold to expire immediately.
func (r *HoldRepository) Expire(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE holds
		SET expires_at = $2
		WHERE id = $1 AND converted_at IS NULL AND expires_at > $2
	`

	tag, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		return false, fmt.Errorf("expire hold: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// PurgeExpired deletes unconverted holds that expired before cutoff.
// Expired holds never occupy slots; this is housekeeping only.
func (r *HoldRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM holds WHERE converted_at IS NULL AND expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge expired holds: %w", err)
	}
	return tag.RowsAffected(), nil
}
