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

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const appointmentColumns = `
	id, doctor_id, patient_id, clinic_id, start_time, end_time, status,
	cancellation_reason, consultation_notes, created_at, updated_at
`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.ClinicID,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.CancellationReason,
		&a.ConsultationNotes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateIfSlotFree inserts the appointment only if, at commit time, no
// overlapping occupying busy source exists for the doctor: an occupying
// appointment, an active hold, or a leave request covering the slot.
// Returns false without error when the guard fails (caller treats it as a
// slot conflict and may re-query and retry once).
func (r *AppointmentRepository) CreateIfSlotFree(ctx context.Context, a *model.Appointment) (bool, error) {
	query := `
		INSERT INTO appointments (id, doctor_id, patient_id, clinic_id, start_time, end_time, status, consultation_notes)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments x
			WHERE x.doctor_id = $2
			  AND x.start_time < $6 AND x.end_time > $5
			  AND x.status != ALL($9::text[])
		)
		AND NOT EXISTS (
			SELECT 1 FROM holds h
			WHERE h.doctor_id = $2
			  AND h.start_time < $6 AND h.end_time > $5
			  AND h.converted_at IS NULL AND h.expires_at > now()
		)
		AND NOT EXISTS (
			SELECT 1 FROM leave_requests l
			WHERE l.doctor_id = $2
			  AND (
				(l.start_hour IS NULL
				  AND l.start_date < ($6 AT TIME ZONE 'UTC')
				  AND ($5 AT TIME ZONE 'UTC') < l.end_date + interval '1 day')
				OR
				(l.start_hour IS NOT NULL
				  AND l.start_date + make_interval(hours => l.start_hour::int) < ($6 AT TIME ZONE 'UTC')
				  AND ($5 AT TIME ZONE 'UTC') < l.start_date + make_interval(hours => l.end_hour::int))
			  )
		)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		a.ID, a.DoctorID, a.PatientID, a.ClinicID,
		a.StartTime, a.EndTime, a.Status, a.ConsultationNotes,
		nonOccupyingStatuses(),
	).Scan(&a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("create appointment: %w", err)
	}
	return true, nil
}

// GetByID returns the appointment or nil when it doesn't exist.
func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	a, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}
	return a, nil
}

// ListByDoctorAndWindow returns appointments for the doctor overlapping
// [from, to), ordered by start time. When onlyOccupying is set, the five
// non-occupying terminal statuses are excluded.
func (r *AppointmentRepository) ListByDoctorAndWindow(ctx context.Context, doctorID uuid.UUID, from, to time.Time, onlyOccupying bool) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1 AND start_time < $3 AND end_time > $2
	`
	args := []any{doctorID, from, to}
	if onlyOccupying {
		query += ` AND status != ALL($4::text[])`
		args = append(args, nonOccupyingStatuses())
	}
	query += ` ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	defer rows.Close()

	var appts []*model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

// UpdateStatusIf atomically moves the appointment from expected to next.
// The write is conditioned on the status still equaling expected, so two
// racing transitions cannot both apply. Returns false when the condition
// did not hold (raced or already moved on).
func (r *AppointmentRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next model.AppointmentStatus, reason *string) (bool, error) {
	query := `
		UPDATE appointments
		SET status = $3,
		    cancellation_reason = COALESCE($4, cancellation_reason),
		    updated_at = now()
		WHERE id = $1 AND status = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, expected, next, reason)
	if err != nil {
		return false, fmt.Errorf("update appointment status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ExpirePendingBefore marks every PENDING appointment whose start time is
// before cutoff as EXPIRED, returning the affected ids.
func (r *AppointmentRepository) ExpirePendingBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE appointments
		SET status = $2, updated_at = now()
		WHERE status = $1 AND start_time < $3
		RETURNING id
	`

	rows, err := r.pool.Query(ctx, query, model.StatusPending, model.StatusExpired, cutoff)
	if err != nil {
		return nil, fmt.Errorf("expire pending appointments: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nonOccupyingStatuses() []string {
	out := make([]string, len(model.NonOccupyingStatuses))
	for i, s := range model.NonOccupyingStatuses {
		out[i] = string(s)
	}
	return out
}
