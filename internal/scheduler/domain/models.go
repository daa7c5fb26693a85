package domain

import "time"

const JobAutoReset = "auto_reset"

// SchedulerRun is the per-job watermark. LastRunDate is the calendar day
// (YYYY-MM-DD, scheduler timezone) of the last completed run.
type SchedulerRun struct {
	ID          int64      `gorm:"primaryKey"`
	JobKey      string     `gorm:"size:64;not null;uniqueIndex"`
	LastRunDate *string    `gorm:"size:10"`
	LastRunAt   *time.Time
}

func (SchedulerRun) TableName() string { return "scheduler_runs" }
