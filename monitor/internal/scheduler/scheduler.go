// Package scheduler owns one recurring trigger per tenant, mapping the
// tenant's monitoring-frequency preference to a cron expression. The
// registry is explicit and mutex-guarded; replacing a tenant's trigger
// stops the old one atomically with installing the new one.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// ErrSchedulerConfig is returned for frequency values outside the
// accepted bounds, before any timer exists.
var ErrSchedulerConfig = errors.New("scheduler: invalid frequency")

// Frequency bounds in minutes. The floor avoids hammering upstream hosts;
// the ceiling is one week.
const (
	minFrequencyMinutes = 15
	maxFrequencyMinutes = 10080
)

// FrequencyToCron maps a frequency preference in minutes to a cron
// expression. Values under the floor behave as the floor; under an hour
// runs every N minutes, under a day every H hours, anything longer once
// daily at midnight.
func FrequencyToCron(minutes int) (string, error) {
	if minutes <= 0 || minutes > maxFrequencyMinutes {
		return "", fmt.Errorf("%w: %d minutes", ErrSchedulerConfig, minutes)
	}
	if minutes < minFrequencyMinutes {
		minutes = minFrequencyMinutes
	}
	switch {
	case minutes < 60:
		return fmt.Sprintf("*/%d * * * *", minutes), nil
	case minutes < 1440:
		return fmt.Sprintf("0 */%d * * *", minutes/60), nil
	default:
		return "0 0 * * *", nil
	}
}

// Registry runs one cron entry per tenant.
type Registry struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewRegistry creates a Registry. Start must be called before any entry
// fires.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		cron:    cron.New(),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

// Start begins running scheduled entries.
func (r *Registry) Start() {
	r.cron.Start()
}

// Schedule installs (or replaces) the tenant's recurring trigger. The old
// entry, if any, is removed under the same lock that installs the new
// one, so no window exists where both fire.
func (r *Registry) Schedule(tenantID string, minutes int, job func()) error {
	expr, err := FrequencyToCron(minutes)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.cron.AddFunc(expr, job)
	if err != nil {
		return fmt.Errorf("scheduler: add entry for %s: %w", tenantID, err)
	}
	if old, ok := r.entries[tenantID]; ok {
		r.cron.Remove(old)
	}
	r.entries[tenantID] = id

	r.logger.Info("scheduler: tenant scheduled",
		"tenant_id", tenantID, "cron", expr, "frequency_minutes", minutes)
	return nil
}

// Unschedule stops the tenant's trigger. Unknown tenants are a no-op.
func (r *Registry) Unschedule(tenantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.entries[tenantID]
	if !ok {
		return
	}
	r.cron.Remove(id)
	delete(r.entries, tenantID)
	r.logger.Info("scheduler: tenant unscheduled", "tenant_id", tenantID)
}

// Scheduled reports whether the tenant currently has a trigger.
func (r *Registry) Scheduled(tenantID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[tenantID]
	return ok
}

// StopAll stops the cron runner and waits for any in-flight job to
// return. Entries stay registered; Start resumes them.
func (r *Registry) StopAll() {
	<-r.cron.Stop().Done()
	r.logger.Info("scheduler: stopped")
}
