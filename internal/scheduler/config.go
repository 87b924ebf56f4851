// Package scheduler keeps the daemon's snapshots fresh by polling the
// configured connector.
package scheduler

import (
	"time"

	"github.com/fentz26/sailboard/internal/connectors"
)

// Config defines the refresher configuration.
type Config struct {
	// Interval between background refreshes.
	Interval time.Duration `yaml:"refresh_interval"`
	// KeepSnapshots is how many task snapshots survive pruning.
	KeepSnapshots int `yaml:"keep_snapshots"`
	// List selects the server-side page of tasks to fetch.
	List connectors.ListOptions `yaml:"-"`
}

// DefaultConfig returns the default refresher configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval:      time.Minute,
		KeepSnapshots: 20,
		List:          connectors.DefaultListOptions(),
	}
}

func (c *Config) keep() int {
	if c.KeepSnapshots < 1 {
		return 1
	}
	return c.KeepSnapshots
}
