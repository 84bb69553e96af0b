package folio

import (
	"testing"
	"time"
)

// fakeClock drives a limiter without sleeping.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLimiter(t *testing.T, max int, window time.Duration) (*LoginLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLoginLimiter(max, window)
	l.now = clock.now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestLoginLimiter(t *testing.T) {
	tests := []struct {
		name     string
		max      int
		failures int
		wait     time.Duration
		want     bool
	}{
		{name: "no failures", max: 2, failures: 0, want: true},
		{name: "below max", max: 2, failures: 1, want: true},
		{name: "at max", max: 2, failures: 2, want: false},
		{name: "inside window", max: 1, failures: 1, wait: 59 * time.Second, want: false},
		{name: "window elapsed", max: 1, failures: 1, wait: time.Minute, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, clock := newTestLimiter(t, tt.max, time.Minute)
			ip := "203.0.113.10"
			for i := 0; i < tt.failures; i++ {
				l.Record(ip)
			}
			clock.advance(tt.wait)
			if got := l.Check(ip); got != tt.want {
				t.Errorf("Check = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)

	l.Record("203.0.113.30")
	if l.Check("203.0.113.30") {
		t.Fatalf("expected first ip to be blocked")
	}
	if !l.Check("203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
}

func TestLoginLimiterCheckDoesNotRecord(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ip := "203.0.113.40"

	for i := 0; i < 3; i++ {
		if !l.Check(ip) {
			t.Fatalf("expected check %d to pass without recorded failures", i+1)
		}
	}
}

func TestLoginLimiterReset(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ip := "203.0.113.50"

	l.Record(ip)
	if l.Check(ip) {
		t.Fatalf("expected ip to be blocked")
	}
	l.Reset(ip)
	if !l.Check(ip) {
		t.Fatalf("expected ip to be allowed after reset")
	}
}

func TestLoginLimiterStopTwice(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	l.Stop()
	l.Stop()
}
