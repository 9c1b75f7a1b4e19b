package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aasl/gate-duty-backend/internal/database"
	"github.com/aasl/gate-duty-backend/internal/models"
)

// ErrRunInProgress is returned when another scheduling run holds the run lock
var ErrRunInProgress = errors.New("a scheduling run is already in progress")

// ScheduleService orchestrates scheduling runs and schedule maintenance
type ScheduleService struct {
	db           database.DB
	staffRepo    *database.StaffRepository
	scheduleRepo *database.ScheduleRepository
	runRepo      *database.ScheduleRunRepository
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(
	db database.DB,
	staffRepo *database.StaffRepository,
	scheduleRepo *database.ScheduleRepository,
	runRepo *database.ScheduleRunRepository,
) *ScheduleService {
	return &ScheduleService{
		db:           db,
		staffRepo:    staffRepo,
		scheduleRepo: scheduleRepo,
		runRepo:      runRepo,
	}
}

// GenerateMonthlySchedule executes one scheduling run for the given month.
//
// The whole run is a single transaction guarded by an advisory lock: the
// staff snapshot is read, the plan computed, assignment rows inserted,
// changed counters written back in one batch, and the audit row recorded.
// Nothing commits if any step fails. A concurrent run attempt gets
// ErrRunInProgress instead of a second snapshot.
func (s *ScheduleService) GenerateMonthlySchedule(month time.Time, triggeredBy string) (*models.ScheduleRunResult, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin scheduling transaction: %w", err)
	}
	defer tx.Rollback()

	locked, err := s.scheduleRepo.TryAcquireRunLockTx(tx)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrRunInProgress
	}

	eligible, err := s.staffRepo.FetchEligibleTx(tx)
	if err != nil {
		return nil, err
	}

	plan := PlanMonthlyDuty(eligible)

	for _, pa := range plan.Assignments {
		entry := models.ScheduleEntry{
			StaffID: pa.StaffID,
			Month:   month,
			Weekday: pa.Weekday,
			Gate:    pa.Gate,
		}
		if err := s.scheduleRepo.InsertAssignmentTx(tx, entry); err != nil {
			return nil, err
		}
	}

	if err := s.staffRepo.UpdateCountersTx(tx, plan.Updated, month); err != nil {
		return nil, err
	}

	run := &models.ScheduleRun{
		ID:            uuid.New(),
		Month:         month,
		StaffPool:     len(eligible),
		AssignedCount: len(plan.Assignments),
		ShortageDays:  pq.StringArray(plan.ShortageDays),
		TriggeredBy:   triggeredBy,
		CreatedAt:     time.Now(),
	}
	if err := s.runRepo.InsertTx(tx, run); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit scheduling run: %w", err)
	}

	return &models.ScheduleRunResult{
		Month:         month.Format("2006-01"),
		ScheduledDays: plan.ScheduledDays,
		ShortageDays:  plan.ShortageDays,
	}, nil
}

// GenerateForNextMonth runs scheduling for the upcoming calendar month
func (s *ScheduleService) GenerateForNextMonth() (*models.ScheduleRunResult, error) {
	return s.GenerateMonthlySchedule(nextMonth(time.Now()), models.RunTriggerCron)
}

// nextMonth returns the first-of-month stamp of the month after now.
// time.Date normalizes month 13 to January of the next year.
func nextMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// GetMonthSchedule returns the persisted schedule rows for a month
func (s *ScheduleService) GetMonthSchedule(month time.Time) ([]models.MonthScheduleRow, error) {
	return s.scheduleRepo.GetByMonth(month)
}

// DeleteMonth removes every schedule row for a month.
// Returns the number of rows deleted.
func (s *ScheduleService) DeleteMonth(month time.Time) (int64, error) {
	return s.scheduleRepo.DeleteByMonth(month)
}

// ResetAllPriorities zeroes every staff member's priority counter.
// Returns the number of staff reset.
func (s *ScheduleService) ResetAllPriorities() (int64, error) {
	return s.staffRepo.ResetAllPriorities()
}

// ListRuns returns recent run audit records, newest first
func (s *ScheduleService) ListRuns(limit int) ([]models.ScheduleRun, error) {
	return s.runRepo.List(limit)
}
