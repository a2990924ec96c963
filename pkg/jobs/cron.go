package jobs

import (
	"fmt"
	"time"

	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the sweep once a minute.
const DefaultSweepSchedule = "@every 1m"

// WindowSweeper drops expired rate limit windows.
type WindowSweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// IdleCleaner drops idle callers from a token-bucket limiter.
type IdleCleaner interface {
	Cleanup() int
}

// SweepRecorder receives sweep results.
type SweepRecorder interface {
	RecordSweep(removed, remaining int)
}

// CronManager manages scheduled jobs
type CronManager struct {
	cron     *cron.Cron
	schedule string
	windows  WindowSweeper
	idle     IdleCleaner
	recorder SweepRecorder
	logger   logger.Logger
	now      func() time.Time
}

// NewCronManager creates a new cron manager. windows is nil when the rate
// limit store expires keys on its own (redis).
func NewCronManager(schedule string, windows WindowSweeper, idle IdleCleaner, recorder SweepRecorder, log logger.Logger) *CronManager {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &CronManager{
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger))),
		schedule: schedule,
		windows:  windows,
		idle:     idle,
		recorder: recorder,
		logger:   log.With("component", "cron"),
		now:      time.Now,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	if cm.windows == nil && cm.idle == nil {
		cm.logger.Info("no sweep jobs to schedule")
		return nil
	}

	if _, err := cm.cron.AddFunc(cm.schedule, cm.RunSweep); err != nil {
		return fmt.Errorf("schedule rate limit sweep %q: %w", cm.schedule, err)
	}

	cm.logger.Info("cron jobs configured", "sweep_schedule", cm.schedule)
	return nil
}

// RunSweep removes expired windows and idle callers once.
func (cm *CronManager) RunSweep() {
	if cm.windows != nil {
		removed := cm.windows.Sweep(cm.now())
		remaining := cm.windows.Len()
		if cm.recorder != nil {
			cm.recorder.RecordSweep(removed, remaining)
		}
		if removed > 0 {
			cm.logger.Debug("swept expired rate limit windows", "removed", removed, "remaining", remaining)
		}
	}

	if cm.idle != nil {
		if removed := cm.idle.Cleanup(); removed > 0 {
			cm.logger.Debug("dropped idle callers", "removed", removed)
		}
	}
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Info("starting cron scheduler")
	cm.cron.Start()
}

// Stop stops the cron scheduler and waits for a running job to finish
func (cm *CronManager) Stop() {
	cm.logger.Info("stopping cron scheduler")
	<-cm.cron.Stop().Done()
}

// Entries returns how many jobs are scheduled.
func (cm *CronManager) Entries() int {
	return len(cm.cron.Entries())
}
