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

type LeaveRepository struct {
	pool *pgxpool.Pool
}

func NewLeaveRepository(pool *pgxpool.Pool) *LeaveRepository {
	return &LeaveRepository{pool: pool}
}

const leaveColumns = `
	id, doctor_id, start_date, end_date, start_hour, end_hour, reason,
	status, decided_by, decided_at, created_at
`

func scanLeave(row pgx.Row) (*model.LeaveRequest, error) {
	var l model.LeaveRequest
	err := row.Scan(
		&l.ID,
		&l.DoctorID,
		&l.StartDate,
		&l.EndDate,
		&l.StartHour,
		&l.EndHour,
		&l.Reason,
		&l.Status,
		&l.DecidedBy,
		&l.DecidedAt,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts an already-validated leave request.
func (r *LeaveRepository) Create(ctx context.Context, l *model.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (id, doctor_id, start_date, end_date, start_hour, end_hour, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		l.ID, l.DoctorID, l.StartDate, l.EndDate,
		l.StartHour, l.EndHour, l.Reason, l.Status,
	).Scan(&l.CreatedAt)
	if err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

// GetByID returns the leave request or nil when it doesn't exist.
func (r *LeaveRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`

	l, err := scanLeave(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get leave request by id: %w", err)
	}
	return l, nil
}

// ListByDoctorAndWindow returns leave requests of any status whose date
// range intersects [fromDate, toDate], ordered by start date. Pending
// requests are included deliberately: an undecided leave still blocks
// new bookings.
func (r *LeaveRepository) ListByDoctorAndWindow(ctx context.Context, doctorID uuid.UUID, fromDate, toDate time.Time) ([]*model.LeaveRequest, error) {
	query := `
		SELECT ` + leaveColumns + `
		FROM leave_requests
		WHERE doctor_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date
	`

	rows, err := r.pool.Query(ctx, query, doctorID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("list leave requests by doctor: %w", err)
	}
	defer rows.Close()

	return collectLeaves(rows)
}

// ListMine returns all leave requests of a doctor, newest first.
func (r *LeaveRepository) ListMine(ctx context.Context, doctorID uuid.UUID) ([]*model.LeaveRequest, error) {
	query := `
		SELECT ` + leaveColumns + `
		FROM leave_requests
		WHERE doctor_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list own leave requests: %w", err)
	}
	defer rows.Close()

	return collectLeaves(rows)
}

// DecideIf moves a PENDING request to next, stamping the decision.
// Returns false when the request was already decided.
func (r *LeaveRepository) DecideIf(ctx context.Context, id uuid.UUID, next model.LeaveStatus, decidedBy uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE leave_requests
		SET status = $2, decided_by = $3, decided_at = $4
		WHERE id = $1 AND status = $5
	`

	tag, err := r.pool.Exec(ctx, query, id, next, decidedBy, at, model.LeavePending)
	if err != nil {
		return false, fmt.Errorf("decide leave request: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func collectLeaves(rows pgx.Rows) ([]*model.LeaveRequest, error) {
	var leaves []*model.LeaveRequest
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}
