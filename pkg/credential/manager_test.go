package credential

import (
	"testing"
	"time"
)

func TestNewRejectsEmptyKeys(t *testing.T) {
	if _, err := New(nil, DefaultOptions()); err != ErrNoKeysConfigured {
		t.Fatalf("err = %v, want ErrNoKeysConfigured", err)
	}
}

func TestAcquireRoundRobin(t *testing.T) {
	m, err := New([]string{"a", "b", "c"}, Options{MaxPerMinute: 100, Cooldown: time.Minute})
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for i := 0; i < 6; i++ {
		key, ok := m.Acquire()
		if !ok {
			t.Fatalf("iteration %d: expected a key to be available", i)
		}
		got = append(got, key)
	}

	want := []string{"a", "b", "c", "a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: key = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAcquireRespectsPerKeyWindow(t *testing.T) {
	m, err := New([]string{"only"}, Options{MaxPerMinute: 2, Cooldown: time.Minute})
	if err != nil {
		t.Fatal(err)
	}

	fixed := time.Now()
	m.now = func() time.Time { return fixed }

	if _, ok := m.Acquire(); !ok {
		t.Fatal("expected first acquire to succeed")
	}
	if _, ok := m.Acquire(); !ok {
		t.Fatal("expected second acquire to succeed")
	}
	if _, ok := m.Acquire(); ok {
		t.Fatal("expected third acquire within the same window to be exhausted")
	}
}

func TestAcquireWindowResetsAfter60Seconds(t *testing.T) {
	m, err := New([]string{"only"}, Options{MaxPerMinute: 1, Cooldown: time.Minute})
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	m.now = func() time.Time { return now }

	if _, ok := m.Acquire(); !ok {
		t.Fatal("expected first acquire to succeed")
	}
	if _, ok := m.Acquire(); ok {
		t.Fatal("expected immediate reacquire to fail")
	}

	now = now.Add(61 * time.Second)
	if _, ok := m.Acquire(); !ok {
		t.Fatal("expected acquire to succeed after the 60s window elapsed")
	}
}

func TestMarkRateLimitedCoolsDownKey(t *testing.T) {
	m, err := New([]string{"a", "b"}, Options{MaxPerMinute: 100, Cooldown: time.Minute})
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	m.now = func() time.Time { return now }

	m.MarkRateLimited("a")

	key, ok := m.Acquire()
	if !ok || key != "b" {
		t.Fatalf("key = %q, ok = %v, want b", key, ok)
	}

	key, ok = m.Acquire()
	if !ok || key != "b" {
		t.Fatalf("key = %q, ok = %v, want b (a still cooling down)", key, ok)
	}
}

func TestSnapshotReflectsUsage(t *testing.T) {
	m, err := New([]string{"a"}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	m.Acquire()
	m.MarkRateLimited("a")

	snap := m.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("len(snap) = %d, want 1", len(snap))
	}
	if snap[0].TotalRequests != 1 {
		t.Errorf("TotalRequests = %d, want 1", snap[0].TotalRequests)
	}
	if snap[0].RateLimitHits != 1 {
		t.Errorf("RateLimitHits = %d, want 1", snap[0].RateLimitHits)
	}
}
