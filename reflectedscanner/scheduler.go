package reflectedscanner

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/michael1026/reflectcheck/types/scan"
)

type ProbeFunc func(ctx context.Context, probe scan.Probe) scan.Outcome

// Scheduler runs probes behind an admission gate of Concurrency slots.
type Scheduler struct {
	Concurrency int
	Delay       bool
	DelayMin    time.Duration
	DelayMax    time.Duration
	// OnOutcome is called from the probe's goroutine as soon as it finishes.
	OnOutcome func(scan.Outcome)
}

// Run returns one outcome per probe, outcomes[i] belonging to probes[i].
// Once ctx is cancelled no further probe is admitted and Run returns the
// context error along with the outcomes that did complete.
func (s *Scheduler) Run(ctx context.Context, probes []scan.Probe, probeFn ProbeFunc) ([]scan.Outcome, error) {
	gate := semaphore.NewWeighted(int64(s.Concurrency))
	outcomes := make([]scan.Outcome, len(probes))
	completed := make([]bool, len(probes))
	wg := sync.WaitGroup{}

	for i, probe := range probes {
		if ctx.Err() != nil {
			break
		}
		if err := gate.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(i int, probe scan.Probe) {
			defer wg.Done()
			defer gate.Release(1)

			// the pause holds the slot but is not part of the request timeout
			if !s.pause(ctx) {
				return
			}

			outcomes[i] = probeFn(ctx, probe)
			completed[i] = true

			if s.OnOutcome != nil {
				s.OnOutcome(outcomes[i])
			}
		}(i, probe)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		var done []scan.Outcome
		for i, ok := range completed {
			if ok {
				done = append(done, outcomes[i])
			}
		}
		return done, err
	}

	return outcomes, nil
}

func (s *Scheduler) pause(ctx context.Context) bool {
	if !s.Delay {
		return true
	}

	timer := time.NewTimer(s.delay())
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// delay is uniform over [DelayMin, DelayMax].
func (s *Scheduler) delay() time.Duration {
	spread := int64(s.DelayMax - s.DelayMin)
	if spread <= 0 {
		return s.DelayMin
	}
	return s.DelayMin + time.Duration(rand.Int63n(spread+1))
}
