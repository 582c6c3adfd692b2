package scheduler

import (
	"time"

	"github.com/atriumhq/atrium/internal/config"
)

// Config controls scheduler intervals and batch sizes.
type Config struct {
	RunInterval         time.Duration
	BatchSize           int
	OverdueScanInterval time.Duration
	ReminderInterval    time.Duration
	ReminderWindow      time.Duration
	RenewalWindow       time.Duration
	UtilityBillDay      int
	LeaderLockTTL       time.Duration
	EnabledJobs         []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:         time.Minute,
		BatchSize:           50,
		OverdueScanInterval: 12 * time.Hour,
		ReminderInterval:    24 * time.Hour,
		ReminderWindow:      72 * time.Hour,
		RenewalWindow:       30 * 24 * time.Hour,
		UtilityBillDay:      3,
		LeaderLockTTL:       2 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.OverdueScanInterval <= 0 {
		c.OverdueScanInterval = defaults.OverdueScanInterval
	}
	if c.ReminderInterval <= 0 {
		c.ReminderInterval = defaults.ReminderInterval
	}
	if c.ReminderWindow <= 0 {
		c.ReminderWindow = defaults.ReminderWindow
	}
	if c.RenewalWindow <= 0 {
		c.RenewalWindow = defaults.RenewalWindow
	}
	if c.UtilityBillDay <= 0 {
		c.UtilityBillDay = defaults.UtilityBillDay
	}
	if c.LeaderLockTTL <= 0 {
		c.LeaderLockTTL = defaults.LeaderLockTTL
	}
	return c
}

// ProvideConfig maps application settings onto the scheduler config.
func ProvideConfig(cfg config.Config) Config {
	c := DefaultConfig()
	c.RunInterval = cfg.SchedulerRunInterval
	c.BatchSize = cfg.SchedulerBatchSize
	return c.withDefaults()
}
