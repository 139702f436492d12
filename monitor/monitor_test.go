package monitor

import (
	"context"
	"testing"
	"time"
)

// WHAT: the scheduling surface round-trips — schedule, reschedule from
// persisted settings, unschedule — and a closed service refuses new work.
func TestServiceScheduleLifecycle(t *testing.T) {
	st := newFakeStore()
	seedItem(st)
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	svc := testService(t, st, clock,
		WithMarketplaceSource(&fakeMarketplace{snap: &Snapshot{Title: "Widget", Price: 100, Stock: StockInStock}}))

	if err := svc.ScheduleTenant("tenant-1", 30); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := svc.RescheduleTenant(context.Background(), "tenant-1"); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	svc.UnscheduleTenant("tenant-1")

	if err := svc.ScheduleTenant("tenant-1", 0); err == nil {
		t.Fatal("bad frequency accepted")
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := svc.ScheduleTenant("tenant-1", 30); err != ErrClosed {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
	// Close is idempotent.
	if err := svc.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

// WHAT: Start schedules every tenant that has items, at its persisted
// frequency.
func TestServiceStart(t *testing.T) {
	st := newFakeStore()
	seedItem(st)
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	svc := testService(t, st, clock,
		WithMarketplaceSource(&fakeMarketplace{snap: &Snapshot{Title: "Widget", Price: 100, Stock: StockInStock}}))
	defer svc.Close()

	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
}
