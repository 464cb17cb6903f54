package clock

import (
	"testing"
	"time"
)

func TestManualEveryFiresOncePerInterval(t *testing.T) {
	m := NewManual()

	var fired int
	m.Every(time.Second, func() { fired++ })

	m.Advance(5 * time.Second)
	if fired != 5 {
		t.Fatalf("expected 5 firings after 5s, got %d", fired)
	}

	m.Advance(500 * time.Millisecond)
	if fired != 5 {
		t.Fatalf("expected no firing on a partial interval, got %d", fired)
	}
}

func TestManualAfterFiresOnce(t *testing.T) {
	m := NewManual()

	var fired int
	m.After(2*time.Second, func() { fired++ })

	m.Advance(time.Second)
	if fired != 0 {
		t.Fatal("one-shot fired early")
	}

	m.Advance(10 * time.Second)
	if fired != 1 {
		t.Fatalf("expected exactly 1 firing, got %d", fired)
	}
}

func TestManualCancelPreventsFiring(t *testing.T) {
	m := NewManual()

	var fired int
	cancel := m.Every(time.Second, func() { fired++ })
	cancel()
	cancel() // safe to call twice

	m.Advance(3 * time.Second)
	if fired != 0 {
		t.Fatalf("expected 0 firings after cancel, got %d", fired)
	}
}

func TestManualTasksFireInTimestampOrder(t *testing.T) {
	m := NewManual()

	var order []string
	m.After(2*time.Second, func() { order = append(order, "b") })
	m.After(time.Second, func() { order = append(order, "a") })
	m.After(3*time.Second, func() { order = append(order, "c") })

	m.Advance(5 * time.Second)

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("expected [a b c], got %v", order)
	}
}

func TestManualCallbackMaySchedule(t *testing.T) {
	m := NewManual()

	var fired int
	m.After(time.Second, func() {
		m.After(time.Second, func() { fired++ })
	})

	m.Advance(3 * time.Second)
	if fired != 1 {
		t.Fatalf("expected chained task to fire once, got %d", fired)
	}
}
