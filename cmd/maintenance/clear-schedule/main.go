package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/aasl/gate-duty-backend/internal/config"
	"github.com/aasl/gate-duty-backend/internal/database"
	"github.com/aasl/gate-duty-backend/pkg/validator"
)

func main() {
	var dbURLFlag string
	var monthFlag string
	var allFlag bool
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.StringVar(&monthFlag, "month", "", "Month label (YYYY-MM) whose schedule rows should be deleted")
	flag.BoolVar(&allFlag, "all", false, "Truncate the schedule and run-audit tables entirely")
	flag.Parse()

	if monthFlag == "" && !allFlag {
		log.Fatal("nothing to do: pass -month YYYY-MM or -all")
	}
	if monthFlag != "" && allFlag {
		log.Fatal("-month and -all are mutually exclusive")
	}

	// Try loading .env from current working directory (optional)
	// This avoids having to pass secrets on the command line.
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	// Build minimal database config without loading full app config
	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if allFlag {
		fmt.Println("Connected to database. Truncating schedule tables...")

		truncateSQL := `
TRUNCATE TABLE
    monthly_schedule,
    schedule_runs
RESTART IDENTITY CASCADE;`

		if _, err := db.Exec(truncateSQL); err != nil {
			log.Fatalf("failed to truncate tables: %v", err)
		}

		fmt.Println("All schedule data cleared successfully (tables truncated).")
	} else {
		monthValidator := validator.NewMonthValidator()
		month, err := monthValidator.Validate(monthFlag)
		if err != nil {
			log.Fatalf("invalid -month value %q: %v", monthFlag, err)
		}

		fmt.Printf("Connected to database. Deleting schedule rows for %s...\n", monthValidator.Format(month))

		result, err := db.Exec(`DELETE FROM monthly_schedule WHERE month = $1`, month)
		if err != nil {
			log.Fatalf("failed to delete schedule rows: %v", err)
		}

		deleted, err := result.RowsAffected()
		if err != nil {
			log.Fatalf("failed to read deleted row count: %v", err)
		}

		fmt.Printf("Deleted %d schedule rows for %s.\n", deleted, monthValidator.Format(month))
	}

	// Verify by printing row counts for each table
	tables := []string{
		"monthly_schedule",
		"schedule_runs",
	}

	fmt.Println("Post-clear row counts:")
	for _, t := range tables {
		var count int
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", t)).Scan(&count); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}
