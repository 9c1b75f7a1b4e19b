package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aasl/gate-duty-backend/internal/models"
)

// StaffRepository handles staff database operations
type StaffRepository struct {
	db DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{
		db: db,
	}
}

// GetByID retrieves a staff member by staff_id
func (r *StaffRepository) GetByID(staffID string) (*models.Staff, error) {
	var staff models.Staff

	query := `
		SELECT staff_id, staff_name, department, busy_9_10,
		       priority_count, priority_updated_month,
		       created_at, updated_at
		FROM staffs
		WHERE staff_id = $1
	`

	err := r.db.Get(&staff, query, staffID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Staff not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get staff by ID: %w", err)
	}

	return &staff, nil
}

// Create inserts a new staff member with a zero priority count
func (r *StaffRepository) Create(input models.StaffUpsertInput) (*models.Staff, error) {
	staff := &models.Staff{
		StaffID:       input.StaffID,
		StaffName:     input.StaffName,
		Department:    input.Department,
		Busy910:       input.Busy910,
		PriorityCount: 0,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	query := `
		INSERT INTO staffs (
			staff_id, staff_name, department, busy_9_10,
			priority_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		query,
		staff.StaffID,
		staff.StaffName,
		staff.Department,
		staff.Busy910,
		staff.PriorityCount,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}

	return staff, nil
}

// Update overwrites the editable fields of an existing staff member.
// The priority counter is owned by scheduling runs and is not touched here.
func (r *StaffRepository) Update(input models.StaffUpsertInput) error {
	query := `
		UPDATE staffs
		SET staff_name = $2, department = $3, busy_9_10 = $4, updated_at = NOW()
		WHERE staff_id = $1
	`

	_, err := r.db.Exec(
		query,
		input.StaffID,
		input.StaffName,
		input.Department,
		input.Busy910,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
	}

	return nil
}

// Upsert creates the staff member if missing, otherwise updates it.
// Returns true when a new record was created.
func (r *StaffRepository) Upsert(input models.StaffUpsertInput) (bool, error) {
	existing, err := r.GetByID(input.StaffID)
	if err != nil {
		return false, err
	}

	if existing != nil {
		if err := r.Update(input); err != nil {
			return false, err
		}
		return false, nil
	}

	if _, err := r.Create(input); err != nil {
		return false, err
	}

	return true, nil
}

// FetchEligibleTx retrieves the scheduling snapshot of all staff available for
// gate duty, inside the run transaction. Ordering is the tie-break order for
// the planner: ascending priority count, then staff_id for a stable result.
func (r *StaffRepository) FetchEligibleTx(tx *sqlx.Tx) ([]*models.Staff, error) {
	var staff []*models.Staff

	query := `
		SELECT staff_id, staff_name, department, busy_9_10,
		       priority_count, priority_updated_month,
		       created_at, updated_at
		FROM staffs
		WHERE busy_9_10 = FALSE
		ORDER BY priority_count, staff_id
	`

	err := tx.Select(&staff, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch eligible staff: %w", err)
	}

	return staff, nil
}

// UpdateCountersTx writes back the priority counters and month stamp for the
// staff touched by a run as one batch statement.
func (r *StaffRepository) UpdateCountersTx(tx *sqlx.Tx, staff []*models.Staff, month time.Time) error {
	if len(staff) == 0 {
		return nil
	}

	ids := make([]string, 0, len(staff))
	counts := make([]int64, 0, len(staff))
	for _, s := range staff {
		ids = append(ids, s.StaffID)
		counts = append(counts, int64(s.PriorityCount))
	}

	query := `
		UPDATE staffs AS s
		SET priority_count = u.priority_count,
		    priority_updated_month = $3,
		    updated_at = NOW()
		FROM (
			SELECT unnest($1::text[]) AS staff_id,
			       unnest($2::int[]) AS priority_count
		) AS u
		WHERE s.staff_id = u.staff_id
	`

	_, err := tx.Exec(query, pq.Array(ids), pq.Array(counts), month)
	if err != nil {
		return fmt.Errorf("failed to update staff counters: %w", err)
	}

	return nil
}

// ResetAllPriorities zeroes every staff member's priority counter and clears
// the month stamp. Returns the number of rows reset.
func (r *StaffRepository) ResetAllPriorities() (int64, error) {
	query := `
		UPDATE staffs
		SET priority_count = 0, priority_updated_month = NULL, updated_at = NOW()
	`

	result, err := r.db.Exec(query)
	if err != nil {
		return 0, fmt.Errorf("failed to reset staff priorities: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read reset row count: %w", err)
	}

	return rows, nil
}

// ListSummaries retrieves the roster view of all staff ordered by staff_id
func (r *StaffRepository) ListSummaries() ([]models.StaffSummary, error) {
	var summaries []models.StaffSummary

	query := `
		SELECT staff_id, staff_name, priority_count, priority_updated_month
		FROM staffs
		ORDER BY staff_id
	`

	err := r.db.Select(&summaries, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	return summaries, nil
}
