package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aasl/gate-duty-backend/internal/models"
)

func staffColumns() []string {
	return []string{
		"staff_id", "staff_name", "department", "busy_9_10",
		"priority_count", "priority_updated_month", "created_at", "updated_at",
	}
}

func TestGetStaffByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	postgresDB := &PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}
	repo := NewStaffRepository(postgresDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM staffs WHERE staff_id`).
			WithArgs("EMP001").
			WillReturnRows(sqlmock.NewRows(staffColumns()).
				AddRow("EMP001", "Kasun Perera", "Operations", false, 2, now, now, now))

		staff, err := repo.GetByID("EMP001")
		require.NoError(t, err)
		assert.NotNil(t, staff)
		assert.Equal(t, "EMP001", staff.StaffID)
		assert.Equal(t, "Kasun Perera", staff.StaffName)
		assert.Equal(t, 2, staff.PriorityCount)
		assert.True(t, staff.PriorityUpdatedMonth.Valid)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Staff Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM staffs WHERE staff_id`).
			WithArgs("EMP999").
			WillReturnError(sql.ErrNoRows)

		staff, err := repo.GetByID("EMP999")
		require.NoError(t, err)
		assert.Nil(t, staff)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM staffs WHERE staff_id`).
			WithArgs("EMP001").
			WillReturnError(fmt.Errorf("database error"))

		staff, err := repo.GetByID("EMP001")
		assert.Error(t, err)
		assert.Nil(t, staff)
		assert.Contains(t, err.Error(), "failed to get staff by ID")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestUpsertStaff(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	postgresDB := &PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}
	repo := NewStaffRepository(postgresDB)

	input := models.StaffUpsertInput{
		StaffID:    "EMP001",
		StaffName:  "Kasun Perera",
		Department: "Operations",
		Busy910:    false,
	}

	t.Run("Creates New Staff", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM staffs WHERE staff_id`).
			WithArgs("EMP001").
			WillReturnError(sql.ErrNoRows)

		mock.ExpectExec(`INSERT INTO staffs`).
			WithArgs("EMP001", "Kasun Perera", "Operations", false, 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		created, err := repo.Upsert(input)
		require.NoError(t, err)
		assert.True(t, created)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Updates Existing Staff", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM staffs WHERE staff_id`).
			WithArgs("EMP001").
			WillReturnRows(sqlmock.NewRows(staffColumns()).
				AddRow("EMP001", "K. Perera", "Security", false, 1, nil, now, now))

		mock.ExpectExec(`UPDATE staffs SET staff_name`).
			WithArgs("EMP001", "Kasun Perera", "Operations", false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		created, err := repo.Upsert(input)
		require.NoError(t, err)
		assert.False(t, created)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Lookup Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM staffs WHERE staff_id`).
			WithArgs("EMP001").
			WillReturnError(fmt.Errorf("database error"))

		created, err := repo.Upsert(input)
		assert.Error(t, err)
		assert.False(t, created)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Insert Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM staffs WHERE staff_id`).
			WithArgs("EMP001").
			WillReturnError(sql.ErrNoRows)

		mock.ExpectExec(`INSERT INTO staffs`).
			WithArgs("EMP001", "Kasun Perera", "Operations", false, 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(fmt.Errorf("database error"))

		created, err := repo.Upsert(input)
		assert.Error(t, err)
		assert.False(t, created)
		assert.Contains(t, err.Error(), "failed to create staff")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestFetchEligibleStaff(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	postgresDB := &PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}
	repo := NewStaffRepository(postgresDB)

	t.Run("Returns Snapshot In Tie-Break Order", func(t *testing.T) {
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM staffs WHERE busy_9_10 = FALSE`).
			WillReturnRows(sqlmock.NewRows(staffColumns()).
				AddRow("EMP002", "Nimal Silva", "Security", false, 0, nil, now, now).
				AddRow("EMP001", "Kasun Perera", "Operations", false, 1, now, now, now))

		tx, err := postgresDB.Beginx()
		require.NoError(t, err)

		staff, err := repo.FetchEligibleTx(tx)
		require.NoError(t, err)
		require.Len(t, staff, 2)
		assert.Equal(t, "EMP002", staff[0].StaffID)
		assert.False(t, staff[0].PriorityUpdatedMonth.Valid)
		assert.Equal(t, "EMP001", staff[1].StaffID)
		assert.True(t, staff[1].PriorityUpdatedMonth.Valid)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Empty Pool", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM staffs WHERE busy_9_10 = FALSE`).
			WillReturnRows(sqlmock.NewRows(staffColumns()))

		tx, err := postgresDB.Beginx()
		require.NoError(t, err)

		staff, err := repo.FetchEligibleTx(tx)
		require.NoError(t, err)
		assert.Len(t, staff, 0)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM staffs WHERE busy_9_10 = FALSE`).
			WillReturnError(fmt.Errorf("database error"))

		tx, err := postgresDB.Beginx()
		require.NoError(t, err)

		staff, err := repo.FetchEligibleTx(tx)
		assert.Error(t, err)
		assert.Nil(t, staff)
		assert.Contains(t, err.Error(), "failed to fetch eligible staff")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestUpdateStaffCounters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	postgresDB := &PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}
	repo := NewStaffRepository(postgresDB)

	month := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Single Batch Statement", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE staffs AS s`).
			WithArgs(pq.Array([]string{"EMP001", "EMP002"}), pq.Array([]int64{3, 2}), month).
			WillReturnResult(sqlmock.NewResult(0, 2))

		tx, err := postgresDB.Beginx()
		require.NoError(t, err)

		staff := []*models.Staff{
			{StaffID: "EMP001", PriorityCount: 3},
			{StaffID: "EMP002", PriorityCount: 2},
		}

		err = repo.UpdateCountersTx(tx, staff, month)
		require.NoError(t, err)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Empty Batch Is A No-Op", func(t *testing.T) {
		mock.ExpectBegin()

		tx, err := postgresDB.Beginx()
		require.NoError(t, err)

		err = repo.UpdateCountersTx(tx, nil, month)
		require.NoError(t, err)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE staffs AS s`).
			WithArgs(pq.Array([]string{"EMP001"}), pq.Array([]int64{1}), month).
			WillReturnError(fmt.Errorf("database error"))

		tx, err := postgresDB.Beginx()
		require.NoError(t, err)

		err = repo.UpdateCountersTx(tx, []*models.Staff{{StaffID: "EMP001", PriorityCount: 1}}, month)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to update staff counters")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestResetAllPriorities(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	postgresDB := &PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}
	repo := NewStaffRepository(postgresDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE staffs SET priority_count = 0`).
			WillReturnResult(sqlmock.NewResult(0, 14))

		count, err := repo.ResetAllPriorities()
		require.NoError(t, err)
		assert.Equal(t, int64(14), count)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("No Staff", func(t *testing.T) {
		mock.ExpectExec(`UPDATE staffs SET priority_count = 0`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		count, err := repo.ResetAllPriorities()
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE staffs SET priority_count = 0`).
			WillReturnError(fmt.Errorf("database error"))

		count, err := repo.ResetAllPriorities()
		assert.Error(t, err)
		assert.Equal(t, int64(0), count)
		assert.Contains(t, err.Error(), "failed to reset staff priorities")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestListStaffSummaries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	postgresDB := &PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}
	repo := NewStaffRepository(postgresDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`SELECT staff_id, staff_name, priority_count, priority_updated_month FROM staffs ORDER BY staff_id`).
			WillReturnRows(sqlmock.NewRows([]string{"staff_id", "staff_name", "priority_count", "priority_updated_month"}).
				AddRow("EMP001", "Kasun Perera", 3, now).
				AddRow("EMP002", "Nimal Silva", 0, nil))

		summaries, err := repo.ListSummaries()
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "EMP001", summaries[0].StaffID)
		assert.Equal(t, 3, summaries[0].PriorityCount)
		assert.True(t, summaries[0].PriorityUpdatedMonth.Valid)
		assert.Equal(t, "EMP002", summaries[1].StaffID)
		assert.False(t, summaries[1].PriorityUpdatedMonth.Valid)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Empty Result", func(t *testing.T) {
		mock.ExpectQuery(`SELECT staff_id, staff_name, priority_count, priority_updated_month FROM staffs ORDER BY staff_id`).
			WillReturnRows(sqlmock.NewRows([]string{"staff_id", "staff_name", "priority_count", "priority_updated_month"}))

		summaries, err := repo.ListSummaries()
		require.NoError(t, err)
		assert.Len(t, summaries, 0)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT staff_id, staff_name, priority_count, priority_updated_month FROM staffs ORDER BY staff_id`).
			WillReturnError(fmt.Errorf("database error"))

		summaries, err := repo.ListSummaries()
		assert.Error(t, err)
		assert.Nil(t, summaries)
		assert.Contains(t, err.Error(), "failed to list staff")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}
