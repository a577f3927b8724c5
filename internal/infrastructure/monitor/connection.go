package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/dialin/api/transport"
)

// HealthChecker is the backend's /health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) (transport.HealthResponse, error)
}

// Monitor polls the backend health endpoint and remembers the last result.
type Monitor struct {
	checker HealthChecker
	baseURL string

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(checker HealthChecker, baseURL string, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checker:  checker,
		baseURL:  baseURL,
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
	return m.status.Backend
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Check probes the backend once and records the outcome.
func (m *Monitor) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	started := time.Now()
	resp, err := m.checker.Health(ctx)
	status := Status{
		BaseURL:   m.baseURL,
		Latency:   time.Since(started),
		LastCheck: time.Now(),
	}
	if err != nil {
		status.LastError = err.Error()
	} else {
		status.Backend = resp.Status == "healthy"
		status.ServerTime = resp.Timestamp.Time
		if !status.Backend {
			status.LastError = "backend reported " + resp.Status
		}
	}

	m.mu.Lock()
	changed := m.status.Backend != status.Backend || m.status.LastCheck.IsZero()
	m.status = status
	m.mu.Unlock()

	if changed {
		m.logger.Info("backend availability changed",
			zap.Bool("online", status.Backend),
			zap.String("base_url", m.baseURL),
			zap.String("error", status.LastError))
	}
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Check(context.Background())
		case <-m.stopCh:
			return
		}
	}
}
