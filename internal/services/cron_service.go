package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron        *cron.Cron
	scheduleSvc *ScheduleService
}

// NewCronService creates a new CronService
func NewCronService(scheduleSvc *ScheduleService) *CronService {
	// Create cron with seconds precision (optional)
	c := cron.New(cron.WithSeconds())

	return &CronService{
		cron:        c,
		scheduleSvc: scheduleSvc,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	// Generate next month's gate duty schedule on the 25th at 2 AM
	// Cron format: second minute hour day month weekday
	// "0 0 2 25 * *" = At 2:00 AM on the 25th of every month
	_, err := s.cron.AddFunc("0 0 2 25 * *", s.generateNextMonthJob)
	if err != nil {
		return fmt.Errorf("failed to schedule monthly generation job: %w", err)
	}
	log.Println("✓ Scheduled: Generate next month schedule (25th at 2:00 AM)")

	// Start the cron scheduler
	s.cron.Start()
	log.Println("✓ Cron service started successfully")

	return nil
}

// Stop stops all cron jobs
func (s *CronService) Stop() {
	log.Println("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✓ Cron service stopped")
}

// generateNextMonthJob produces the gate duty schedule for the upcoming month
func (s *CronService) generateNextMonthJob() {
	log.Println("[CRON] Starting next month schedule generation job...")
	startTime := time.Now()

	result, err := s.scheduleSvc.GenerateForNextMonth()
	if err != nil {
		if err == ErrRunInProgress {
			log.Println("[CRON] Skipped: another scheduling run is in progress")
			return
		}
		log.Printf("[CRON ERROR] Failed to generate schedule: %v\n", err)
		return
	}

	duration := time.Since(startTime)
	log.Printf("[CRON] ✓ Generated schedule for %s (%d shortage days) in %v\n",
		result.Month, len(result.ShortageDays), duration)
}

// RunGenerateScheduleNow runs the schedule generation job immediately (for testing)
func (s *CronService) RunGenerateScheduleNow() error {
	log.Println("[MANUAL] Running schedule generation now...")
	s.generateNextMonthJob()
	return nil
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
