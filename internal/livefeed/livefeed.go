// Package livefeed provides the illustrative "live" numbers shown on the teacher's
// screen while a session runs: joining students and the spread of responses.
// Nothing here is backed by real events; the session core never depends on it.
package livefeed

import (
	"context"
	"math/rand"
	"time"

	"classroom-quiz/internal/app"
	"classroom-quiz/internal/domain"
)

// Feed produces a lazy, restartable sequence of snapshots.
// Each Stream call starts a fresh sequence that runs until ctx is cancelled.
type Feed interface {
	Stream(ctx context.Context, optionIDs []string) <-chan domain.LiveSnapshot
}

const (
	DefaultMaxStudents = 20
	DefaultPeriod      = time.Second

	joinChance   = 0.5
	answerChance = 0.3
)

// Simulated grows the student count and option tallies at random.
// Every period each option gains a response with probability 0.3; every second
// period one student joins with probability 0.5 until the cap is reached.
type Simulated struct {
	seed        int64
	maxStudents int
	period      time.Duration
	ticks       app.TickSource
}

// NewSimulated builds a seeded simulated feed. A nil ticks uses app.RealTicks.
func NewSimulated(seed int64, maxStudents int, period time.Duration, ticks app.TickSource) *Simulated {
	if maxStudents <= 0 {
		maxStudents = DefaultMaxStudents
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	if ticks == nil {
		ticks = app.RealTicks
	}
	return &Simulated{seed: seed, maxStudents: maxStudents, period: period, ticks: ticks}
}

func (f *Simulated) Stream(ctx context.Context, optionIDs []string) <-chan domain.LiveSnapshot {
	out := make(chan domain.LiveSnapshot, 1)
	options := append([]string(nil), optionIDs...)
	rnd := rand.New(rand.NewSource(f.seed))
	ticks, stop := f.ticks(f.period)

	go func() {
		defer close(out)
		defer stop()

		students := 0
		tally := make(map[string]int, len(options))
		for _, id := range options {
			tally[id] = 0
		}
		for n := 1; ; n++ {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
			}
			for _, id := range options {
				if rnd.Float64() < answerChance {
					tally[id]++
				}
			}
			if n%2 == 0 && students < f.maxStudents && rnd.Float64() < joinChance {
				students++
			}
			select {
			case out <- snapshot(students, tally):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func snapshot(students int, tally map[string]int) domain.LiveSnapshot {
	total := 0
	for _, n := range tally {
		total += n
	}
	snap := domain.LiveSnapshot{
		Students:     students,
		Distribution: make(map[string]int, len(tally)),
		Percentages:  make(map[string]float64, len(tally)),
	}
	for id, n := range tally {
		snap.Distribution[id] = n
		if total > 0 {
			snap.Percentages[id] = float64(n) * 100 / float64(total)
		} else {
			snap.Percentages[id] = 0
		}
	}
	return snap
}
