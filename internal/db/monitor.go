package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const pingTimeout = 5 * time.Second

// Monitor periodically pings the pool and logs its statistics.
type Monitor struct {
	gw   *Gateway
	cron *cron.Cron
}

// NewMonitor schedules a check every interval. Call Start to run it.
func NewMonitor(gw *Gateway, interval time.Duration) (*Monitor, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}

	m := &Monitor{gw: gw, cron: cron.New()}
	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), m.Check); err != nil {
		return nil, fmt.Errorf("schedule pool monitor: %w", err)
	}
	return m, nil
}

func (m *Monitor) Start() {
	m.cron.Start()
}

// Stop waits for a running check to finish.
func (m *Monitor) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

// Check pings the pool once. It does nothing while the pool is closed.
func (m *Monitor) Check() {
	stats, ok := m.gw.Stats()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	pool, err := m.gw.Pool(ctx)
	if err == nil {
		err = pool.PingContext(ctx)
	}
	if err != nil {
		log.Printf("[WARN] db: pool ping failed: %v", err)
		return
	}
	log.Printf("[info] db: pool open=%d in_use=%d idle=%d wait_count=%d",
		stats.OpenConnections, stats.InUse, stats.Idle, stats.WaitCount)
}
