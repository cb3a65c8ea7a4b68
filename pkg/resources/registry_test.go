package resources

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRegistry(limits Limits) (*Registry, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(limits)
	r.now = clock.now
	return r, clock
}

func TestRegisterPerIPLimit(t *testing.T) {
	r, _ := newTestRegistry(Limits{MaxSessionsPerIP: 2})

	if err := r.Register("a", "10.0.0.1", nil); err != nil {
		t.Fatalf("Register a: %v", err)
	}
	if err := r.Register("b", "10.0.0.1", nil); err != nil {
		t.Fatalf("Register b: %v", err)
	}
	if err := r.Register("c", "10.0.0.1", nil); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("third session err = %v", err)
	}
	if err := r.Register("d", "10.0.0.2", nil); err != nil {
		t.Fatalf("other IP: %v", err)
	}
	// Re-registering an existing session is not a new session.
	if err := r.Register("a", "10.0.0.1", nil); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	r.Unregister("a")
	if err := r.Register("c", "10.0.0.1", nil); err != nil {
		t.Fatalf("after unregister: %v", err)
	}
}

func TestCheckMessageWindow(t *testing.T) {
	r, clock := newTestRegistry(Limits{MaxMessagesPerMinute: 3})
	if err := r.Register("s", "10.0.0.1", nil); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := r.CheckMessage("s"); err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
	}
	if err := r.CheckMessage("s"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("fourth message err = %v", err)
	}

	clock.advance(time.Minute)
	if err := r.CheckMessage("s"); err != nil {
		t.Fatalf("new window: %v", err)
	}

	if err := r.CheckMessage("missing"); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("unknown session err = %v", err)
	}
}

func TestSweepClosesIdleSessions(t *testing.T) {
	r, clock := newTestRegistry(Limits{MaxInactiveTime: 10 * time.Minute})

	var closed []string
	r.Register("idle", "10.0.0.1", func() { closed = append(closed, "idle") })
	r.Register("busy", "10.0.0.2", func() { closed = append(closed, "busy") })

	clock.advance(6 * time.Minute)
	r.CheckMessage("busy")
	clock.advance(6 * time.Minute)

	if n := r.Sweep(); n != 1 {
		t.Fatalf("swept %d sessions", n)
	}
	if len(closed) != 1 || closed[0] != "idle" {
		t.Errorf("closed = %q", closed)
	}
	if st := r.Stats(); st.Sessions != 1 {
		t.Errorf("sessions after sweep = %d", st.Sessions)
	}
}

func TestReRegisterReplacesCloser(t *testing.T) {
	r, clock := newTestRegistry(Limits{MaxInactiveTime: time.Minute})

	var calls []string
	r.Register("s", "10.0.0.1", func() { calls = append(calls, "old") })
	r.Register("s", "10.0.0.1", func() { calls = append(calls, "new") })

	clock.advance(2 * time.Minute)
	r.Sweep()
	if len(calls) != 1 || calls[0] != "new" {
		t.Errorf("calls = %q", calls)
	}
}

func TestSweepDisabled(t *testing.T) {
	r, clock := newTestRegistry(Limits{})
	r.Register("s", "10.0.0.1", func() { t.Error("closed with sweeping disabled") })
	clock.advance(24 * time.Hour)
	if n := r.Sweep(); n != 0 {
		t.Errorf("swept %d", n)
	}
}

func TestRegistryStats(t *testing.T) {
	r, _ := newTestRegistry(Limits{})
	r.Register("a", "10.0.0.1", nil)
	r.Register("b", "10.0.0.1", nil)
	r.Register("c", "10.0.0.2", nil)
	r.CheckMessage("a")
	r.CheckMessage("a")
	r.CheckMessage("c")

	want := Stats{Sessions: 3, UniqueIPs: 2, TotalMessages: 3}
	if got := r.Stats(); got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}
