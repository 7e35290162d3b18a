package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
)

// AttendanceJobs owns the periodic reconciliation work: closing days that
// ended without a clock-out and recording scheduled absences.
type AttendanceJobs struct {
	attendanceService attendance.Service
	sweepInterval     time.Duration
}

func NewAttendanceJobs(attendanceService attendance.Service, sweepInterval time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		sweepInterval:     sweepInterval,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("end_of_day_sweep", j.sweepInterval, j.EndOfDaySweep)
}

// EndOfDaySweep closes stale punches. The service only touches dates each
// employee has fully lived through, so running every hour is safe.
func (j *AttendanceJobs) EndOfDaySweep(ctx context.Context) error {
	slog.Info("Cron: starting end-of-day attendance sweep")

	if err := j.attendanceService.Sweep(ctx); err != nil {
		return err
	}

	slog.Info("Cron: end-of-day attendance sweep completed")
	return nil
}
