package scheduler

import (
	"errors"
	"testing"
)

func TestFrequencyToCron(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{1, "*/15 * * * *"},
		{14, "*/15 * * * *"},
		{15, "*/15 * * * *"},
		{30, "*/30 * * * *"},
		{59, "*/59 * * * *"},
		{60, "0 */1 * * *"},
		{90, "0 */1 * * *"},
		{120, "0 */2 * * *"},
		{1439, "0 */23 * * *"},
		{1440, "0 0 * * *"},
		{1500, "0 0 * * *"},
		{10080, "0 0 * * *"},
	}
	for _, tc := range cases {
		got, err := FrequencyToCron(tc.minutes)
		if err != nil {
			t.Errorf("FrequencyToCron(%d) err = %v", tc.minutes, err)
			continue
		}
		if got != tc.want {
			t.Errorf("FrequencyToCron(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

// WHAT: out-of-bounds frequencies are rejected before a timer exists.
func TestFrequencyToCronBounds(t *testing.T) {
	for _, minutes := range []int{0, -5, 10081} {
		if _, err := FrequencyToCron(minutes); !errors.Is(err, ErrSchedulerConfig) {
			t.Errorf("FrequencyToCron(%d) err = %v, want ErrSchedulerConfig", minutes, err)
		}
	}
}

// WHAT: scheduling twice for the same tenant replaces the entry instead
// of stacking a second trigger, and unscheduling removes it.
func TestRegistryReplaceAndRemove(t *testing.T) {
	r := NewRegistry(nil)

	if err := r.Schedule("tenant-a", 30, func() {}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if !r.Scheduled("tenant-a") {
		t.Fatal("tenant-a not scheduled")
	}

	if err := r.Schedule("tenant-a", 60, func() {}); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if got := len(r.cron.Entries()); got != 1 {
		t.Fatalf("cron holds %d entries after reschedule, want 1", got)
	}

	r.Unschedule("tenant-a")
	if r.Scheduled("tenant-a") {
		t.Fatal("tenant-a still scheduled after unschedule")
	}
	if got := len(r.cron.Entries()); got != 0 {
		t.Fatalf("cron holds %d entries after unschedule, want 0", got)
	}
}

// WHAT: an invalid frequency leaves the registry untouched.
func TestRegistryRejectsBadFrequency(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Schedule("tenant-a", 0, func() {}); !errors.Is(err, ErrSchedulerConfig) {
		t.Fatalf("err = %v, want ErrSchedulerConfig", err)
	}
	if r.Scheduled("tenant-a") {
		t.Fatal("tenant-a scheduled despite bad frequency")
	}
}
