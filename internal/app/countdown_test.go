package app

import (
	"strings"
	"testing"
	"time"
)

func TestCountdownReachesZeroAfterLimitTicks(t *testing.T) {
	const limit = 5
	cd := NewCountdown(limit)
	for i := 1; i <= limit; i++ {
		got := cd.Tick()
		if got != limit-i {
			t.Fatalf("tick %d: expected %d remaining, got %d", i, limit-i, got)
		}
	}
	for i := 0; i < 3; i++ {
		if got := cd.Tick(); got != 0 {
			t.Fatalf("countdown went below zero: %d", got)
		}
	}
	if cd.Limit() != limit {
		t.Fatalf("limit changed to %d", cd.Limit())
	}
}

func TestCountdownLoopStopsItselfAtZero(t *testing.T) {
	ticks := make(chan time.Time)
	stopped := make(chan struct{})
	src := func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() { close(stopped) }
	}

	var seen []int
	cd := NewCountdown(3)
	cd.Start(src, time.Second, func(remaining int) { seen = append(seen, remaining) })
	for i := 0; i < 3; i++ {
		ticks <- time.Time{}
	}

	select {
	case <-cd.Done():
	case <-time.After(time.Second):
		t.Fatalf("countdown did not finish")
	}
	<-stopped
	if len(seen) != 3 || seen[0] != 2 || seen[2] != 0 {
		t.Fatalf("unexpected tick sequence %v", seen)
	}
	if cd.Remaining() != 0 {
		t.Fatalf("expected zero remaining, got %d", cd.Remaining())
	}
}

func TestCountdownStop(t *testing.T) {
	ticks := make(chan time.Time)
	cd := NewCountdown(10)
	cd.Start(func(time.Duration) (<-chan time.Time, func()) { return ticks, func() {} }, time.Second, func(int) {})

	cd.Stop()
	cd.Stop()
	select {
	case <-cd.Done():
	case <-time.After(time.Second):
		t.Fatalf("countdown did not stop")
	}
	if cd.Remaining() != 10 {
		t.Fatalf("stopped countdown should keep its value, got %d", cd.Remaining())
	}
}

func TestCountdownWithoutTimeFinishesImmediately(t *testing.T) {
	cd := NewCountdown(0)
	cd.Start(func(time.Duration) (<-chan time.Time, func()) {
		t.Fatalf("tick source must not be used for a zero countdown")
		return nil, nil
	}, time.Second, func(int) {})
	select {
	case <-cd.Done():
	default:
		t.Fatalf("expected zero countdown to be done")
	}
}

func TestCodeGeneratorShape(t *testing.T) {
	gen := NewCodeGenerator(DefaultCodeLength, nil)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code := gen()
		if len(code) != DefaultCodeLength {
			t.Fatalf("unexpected code length %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(CodeAlphabet, r) {
				t.Fatalf("code %q has character outside alphabet", code)
			}
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 95 {
		t.Fatalf("codes collide too often: %d distinct of 100", len(seen))
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  abc123 "); got != "ABC123" {
		t.Fatalf("unexpected normalized code %q", got)
	}
}
