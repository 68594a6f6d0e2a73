package state

import "testing"

func TestLatchCollapsesSets(t *testing.T) {
	l := NewLatch()

	if l.IsSet() {
		t.Fatal("new latch should be clear")
	}
	if l.TryConsume() {
		t.Fatal("consuming a clear latch should report false")
	}

	l.Set()
	l.Set()
	l.Set()

	if !l.TryConsume() {
		t.Fatal("expected one pending trigger")
	}
	if l.TryConsume() {
		t.Fatal("repeated sets must collapse to a single pending trigger")
	}
}

func TestLatchWake(t *testing.T) {
	l := NewLatch()
	l.Set()

	select {
	case <-l.Wake():
	default:
		t.Fatal("Set should signal the wake channel")
	}
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Push(HitScan{Manual: false})
	q.Push(HitScan{Manual: true, Payload: "popup"})
	q.Push(HitScan{Manual: false})

	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}

	items := q.Drain()
	if len(items) != 3 {
		t.Fatalf("Drain returned %d items, want 3", len(items))
	}
	if items[0].Manual || !items[1].Manual || items[2].Manual {
		t.Errorf("tokens out of order: %+v", items)
	}
	if items[1].Payload != "popup" {
		t.Errorf("payload = %v, want popup", items[1].Payload)
	}

	if got := q.Drain(); len(got) != 0 {
		t.Errorf("second drain returned %d items, want 0", len(got))
	}
}

func TestSharedFlags(t *testing.T) {
	s := New()

	if !s.Running() || !s.Enabled() {
		t.Fatal("new shared state should start running and enabled")
	}

	s.SetEnabled(false)
	if s.Enabled() {
		t.Error("SetEnabled(false) did not stick")
	}
	s.SetEnabled(true)
	if !s.Enabled() {
		t.Error("SetEnabled(true) did not stick")
	}

	s.Stop()
	if s.Running() {
		t.Error("Stop did not flip the running flag")
	}
}

func TestSharedCursor(t *testing.T) {
	s := New()
	s.SetCursor(120, 45)
	x, y := s.Cursor()
	if x != 120 || y != 45 {
		t.Errorf("Cursor() = (%d, %d), want (120, 45)", x, y)
	}
}
