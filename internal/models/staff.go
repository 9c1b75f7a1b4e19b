package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// NullTime wraps sql.NullTime to provide proper JSON marshaling
type NullTime struct {
	sql.NullTime
}

// MarshalJSON implements json.Marshaler
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if nt.Valid {
		return json.Marshal(nt.Time)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (nt *NullTime) UnmarshalJSON(data []byte) error {
	var t *time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	if t != nil {
		nt.Valid = true
		nt.Time = *t
	} else {
		nt.Valid = false
	}
	return nil
}

// Staff represents one staff member eligible for gate duty
type Staff struct {
	StaffID              string    `json:"staff_id" db:"staff_id"`
	StaffName            string    `json:"staff_name" db:"staff_name"`
	Department           string    `json:"department" db:"department"`
	Busy910              bool      `json:"busy_9_10" db:"busy_9_10"`
	PriorityCount        int       `json:"priority_count" db:"priority_count"`
	PriorityUpdatedMonth NullTime  `json:"priority_updated_month" db:"priority_updated_month"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// StaffUpsertInput represents the body of a staff create/update request
type StaffUpsertInput struct {
	StaffID    string `json:"staff_id" binding:"required"`
	StaffName  string `json:"staff_name" binding:"required"`
	Department string `json:"department" binding:"required"`
	Busy910    bool   `json:"busy_9_10"`
}

// StaffSummary is the roster listing view of a staff member
type StaffSummary struct {
	StaffID              string   `json:"staff_id" db:"staff_id"`
	StaffName            string   `json:"staff_name" db:"staff_name"`
	PriorityCount        int      `json:"priority_count" db:"priority_count"`
	PriorityUpdatedMonth NullTime `json:"priority_updated_month" db:"priority_updated_month"`
}
