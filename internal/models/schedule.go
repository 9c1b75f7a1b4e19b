package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ScheduleEntry is one persisted gate-duty assignment row
type ScheduleEntry struct {
	StaffID string    `json:"staff_id" db:"staff_id"`
	Month   time.Time `json:"month" db:"month"`
	Weekday string    `json:"weekday" db:"weekday"`
	Gate    string    `json:"gate" db:"gate"`
}

// MonthScheduleRow is the flat view returned when listing a month's schedule
type MonthScheduleRow struct {
	StaffID string `json:"staff_id" db:"staff_id"`
	Weekday string `json:"weekday" db:"weekday"`
	Gate    string `json:"gate" db:"gate"`
}

// DutyAssignment is one seat in the generated plan as reported to the caller
type DutyAssignment struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name"`
	Gate    string `json:"gate"`
}

// ScheduleRunResult is the response body of a scheduling run
type ScheduleRunResult struct {
	Month         string                      `json:"month"`
	ScheduledDays map[string][]DutyAssignment `json:"scheduled_days"`
	ShortageDays  []string                    `json:"shortage_days"`
}

// ScheduleRun is the audit record written after every scheduling run
type ScheduleRun struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	Month         time.Time      `json:"month" db:"month"`
	StaffPool     int            `json:"staff_pool" db:"staff_pool"`
	AssignedCount int            `json:"assigned_count" db:"assigned_count"`
	ShortageDays  pq.StringArray `json:"shortage_days" db:"shortage_days"`
	TriggeredBy   string         `json:"triggered_by" db:"triggered_by"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}

// Trigger sources recorded on a ScheduleRun
const (
	RunTriggerAPI  = "api"
	RunTriggerCron = "cron"
)
