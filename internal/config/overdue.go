package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// OverduePolicy controls when the overdue scanner issues staged
// warnings: the first warning fires FirstWarningDays after the due
// date, then every RepeatIntervalDays from RepeatFromDays on.
type OverduePolicy struct {
	FirstWarningDays   int `mapstructure:"firstWarningDays"`
	RepeatFromDays     int `mapstructure:"repeatFromDays"`
	RepeatIntervalDays int `mapstructure:"repeatIntervalDays"`
}

func DefaultOverduePolicy() OverduePolicy {
	return OverduePolicy{
		FirstWarningDays:   1,
		RepeatFromDays:     7,
		RepeatIntervalDays: 7,
	}
}

// IsWarningDay reports whether a warning is due at the given number of
// days overdue.
func (p OverduePolicy) IsWarningDay(days int) bool {
	if days == p.FirstWarningDays {
		return true
	}
	return days >= p.RepeatFromDays && (days-p.RepeatFromDays)%p.RepeatIntervalDays == 0
}

type OverduePolicyHolder struct {
	current atomic.Value // holds OverduePolicy
}

func NewOverduePolicyHolder() (*OverduePolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("atrium")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/atrium/config") // Volume-mounted config
	v.AddConfigPath("/etc/atrium")            // System config
	v.AddConfigPath(".")                      // Current directory (dev mode)

	v.SetEnvPrefix("ATRIUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultOverduePolicy()
		v.SetDefault("overdue.firstWarningDays", defaults.FirstWarningDays)
		v.SetDefault("overdue.repeatFromDays", defaults.RepeatFromDays)
		v.SetDefault("overdue.repeatIntervalDays", defaults.RepeatIntervalDays)
	}

	var policy OverduePolicy
	if err := v.UnmarshalKey("overdue", &policy); err != nil {
		return nil, err
	}
	if err := validateOverduePolicy(policy); err != nil {
		return nil, err
	}

	holder := &OverduePolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated OverduePolicy
		if err := v.UnmarshalKey("overdue", &updated); err != nil {
			log.Printf("[overdue-policy] reload failed: %v", err)
			return
		}
		if err := validateOverduePolicy(updated); err != nil {
			log.Printf("[overdue-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[overdue-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *OverduePolicyHolder) Get() OverduePolicy {
	if h == nil {
		return DefaultOverduePolicy()
	}
	return h.current.Load().(OverduePolicy)
}

func validateOverduePolicy(p OverduePolicy) error {
	if p.FirstWarningDays < 1 {
		return errors.New("overdue.firstWarningDays must be at least 1")
	}
	if p.RepeatIntervalDays < 1 {
		return errors.New("overdue.repeatIntervalDays must be at least 1")
	}
	if p.RepeatFromDays < p.FirstWarningDays {
		return errors.New("overdue.repeatFromDays must not precede firstWarningDays")
	}
	return nil
}
