package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aasl/gate-duty-backend/internal/models"
)

// ScheduleRunRepository handles schedule_runs audit records
type ScheduleRunRepository struct {
	db DB
}

// NewScheduleRunRepository creates a new schedule run repository
func NewScheduleRunRepository(db DB) *ScheduleRunRepository {
	return &ScheduleRunRepository{
		db: db,
	}
}

// InsertTx records a run audit row inside the run transaction
func (r *ScheduleRunRepository) InsertTx(tx *sqlx.Tx, run *models.ScheduleRun) error {
	query := `
		INSERT INTO schedule_runs (
			id, month, staff_pool, assigned_count,
			shortage_days, triggered_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(
		query,
		run.ID,
		run.Month,
		run.StaffPool,
		run.AssignedCount,
		run.ShortageDays,
		run.TriggeredBy,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert schedule run: %w", err)
	}

	return nil
}

// List retrieves the most recent run audit records, newest first
func (r *ScheduleRunRepository) List(limit int) ([]models.ScheduleRun, error) {
	var runs []models.ScheduleRun

	query := `
		SELECT id, month, staff_pool, assigned_count,
		       shortage_days, triggered_by, created_at
		FROM schedule_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	err := r.db.Select(&runs, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule runs: %w", err)
	}

	return runs, nil
}
