package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aasl/gate-duty-backend/internal/models"
)

// scheduleRunLockID is the application-scoped advisory lock key that
// serializes scheduling runs. Transaction-scoped, so it releases on
// commit or rollback without explicit unlock.
const scheduleRunLockID int64 = 742190

// ScheduleRepository handles monthly_schedule database operations
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{
		db: db,
	}
}

// TryAcquireRunLockTx attempts to take the run lock inside the given
// transaction. Returns false when another scheduling run holds it.
func (r *ScheduleRepository) TryAcquireRunLockTx(tx *sqlx.Tx) (bool, error) {
	var acquired bool

	err := tx.Get(&acquired, `SELECT pg_try_advisory_xact_lock($1)`, scheduleRunLockID)
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}

	return acquired, nil
}

// InsertAssignmentTx records one gate-duty assignment row inside the run transaction
func (r *ScheduleRepository) InsertAssignmentTx(tx *sqlx.Tx, entry models.ScheduleEntry) error {
	query := `
		INSERT INTO monthly_schedule (staff_id, month, weekday, gate)
		VALUES ($1, $2, $3, $4)
	`

	_, err := tx.Exec(query, entry.StaffID, entry.Month, entry.Weekday, entry.Gate)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}

	return nil
}

// GetByMonth retrieves the persisted schedule rows for one month
func (r *ScheduleRepository) GetByMonth(month time.Time) ([]models.MonthScheduleRow, error) {
	var rows []models.MonthScheduleRow

	query := `
		SELECT staff_id, weekday, gate
		FROM monthly_schedule
		WHERE month = $1
		ORDER BY weekday, gate, staff_id
	`

	err := r.db.Select(&rows, query, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule for month: %w", err)
	}

	return rows, nil
}

// DeleteByMonth removes all schedule rows for one month.
// Returns the number of rows deleted.
func (r *ScheduleRepository) DeleteByMonth(month time.Time) (int64, error) {
	query := `DELETE FROM monthly_schedule WHERE month = $1`

	result, err := r.db.Exec(query, month)
	if err != nil {
		return 0, fmt.Errorf("failed to delete schedule for month: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete row count: %w", err)
	}

	return rows, nil
}
