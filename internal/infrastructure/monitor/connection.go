package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PingFunc checks a single dependency.
type PingFunc func(ctx context.Context) error

// SizeFunc reports the number of buffered operations.
type SizeFunc func() (int, error)

// Checks are the probes run on every refresh. Nil probes report offline.
type Checks struct {
	Postgres   PingFunc
	Redis      PingFunc
	BufferSize SizeFunc
}

type Monitor struct {
	checks Checks

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(checks Checks, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// MarkSweep records the completion time of the latest expiry sweep.
func (m *Monitor) MarkSweep(at time.Time) {
	m.mu.Lock()
	m.status.LastSweep = at
	m.mu.Unlock()
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and stores the result.
func (m *Monitor) Refresh() {
	bufferOK, bufferSize := m.checkBuffer()
	pgOK := m.ping("postgres", m.checks.Postgres, 3*time.Second)
	redisOK := m.ping("redis", m.checks.Redis, 2*time.Second)

	m.mu.Lock()
	previous := m.status
	m.status = Status{
		PostgreSQL: pgOK,
		Redis:      redisOK,
		Buffer:     bufferOK,
		BufferSize: bufferSize,
		LastSweep:  previous.LastSweep,
		LastCheck:  time.Now(),
	}
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Healthy() != m.IsOnline() {
		m.logger.Warn("dependency status changed",
			zap.Bool("postgresql", pgOK),
			zap.Bool("redis", redisOK))
	}
}

func (m *Monitor) ping(name string, fn PingFunc, timeout time.Duration) bool {
	if fn == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		m.logger.Debug("dependency ping failed", zap.String("dependency", name), zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.checks.BufferSize == nil {
		return false, 0
	}
	size, err := m.checks.BufferSize()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
