package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// Service runs readiness checks against the configured backends.
type Service struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{checks: map[string]Check{}, timeout: 2 * time.Second}
}

// Register adds a named check. A later registration under the same name replaces the earlier one.
func (s *Service) Register(name string, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Status returns a simple liveness payload.
func (s *Service) Status() map[string]bool {
	return map[string]bool{"ok": true}
}

// Report is the readiness result.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}

// Ready runs every check and reports "ok" or the error per dependency.
func (s *Service) Ready(ctx context.Context) Report {
	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	checks := make(map[string]Check, len(s.checks))
	for k, v := range s.checks {
		checks[k] = v
	}
	s.mu.RUnlock()
	sort.Strings(names)

	report := Report{OK: true, Checks: make(map[string]string, len(names))}
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := checks[name](checkCtx)
		cancel()
		if err != nil {
			report.OK = false
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}
