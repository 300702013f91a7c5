// Package preflight runs pre-start environment checks. Currently one: a
// clock-drift check against NTP, because a node with a skewed clock rejects
// or mis-timestamps blocks long before anything else looks wrong.
package preflight

import (
	"log/slog"
	"time"

	"github.com/beevik/ntp"
)

const (
	defaultPool      = "pool.ntp.org"
	defaultThreshold = 500 * time.Millisecond
)

// ClockCheck measures local clock offset against an NTP pool.
type ClockCheck struct {
	Pool      string
	Threshold time.Duration

	// QueryFunc overrides the NTP query for tests.
	QueryFunc func(pool string) (*ntp.Response, error)
}

// Result is one clock-drift measurement.
type Result struct {
	Offset  time.Duration
	Healthy bool
	Err     error
}

// Check queries the pool once. Failure to reach NTP is reported but never
// fatal: the orchestrator warns and proceeds.
func (c *ClockCheck) Check() Result {
	pool := c.Pool
	if pool == "" {
		pool = defaultPool
	}
	threshold := c.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	query := c.QueryFunc
	if query == nil {
		query = ntp.Query
	}

	resp, err := query(pool)
	if err != nil {
		return Result{Err: err}
	}

	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	return Result{Offset: resp.ClockOffset, Healthy: offset < threshold}
}

// Warn runs the check and logs the outcome. Used on the startup path where
// drift is advisory.
func (c *ClockCheck) Warn() {
	log := slog.With("component", "preflight")
	res := c.Check()
	switch {
	case res.Err != nil:
		log.Warn("clock-drift check unavailable", "err", res.Err)
	case !res.Healthy:
		log.Warn("system clock drift exceeds threshold, node block validation may misbehave",
			"offset", res.Offset)
	default:
		log.Debug("clock drift ok", "offset", res.Offset)
	}
}
