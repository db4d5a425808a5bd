package daemon

import (
	"context"
	"github.com/lukasz-zimnoch/ladder"
	"sync"
	"time"
)

const (
	DefaultHoldingPeriod = 24 * time.Hour
	DefaultCooldown      = 60 * time.Second

	// cycleStepTimeout bounds placement and cancellation, which run on
	// contexts detached from shutdown.
	cycleStepTimeout      = 5 * time.Minute
	shutdownCancelTimeout = 30 * time.Second
)

type CycleState int

const (
	// StateActive covers placement and the holding period.
	StateActive CycleState = iota
	// StateSettling covers cancellation and the cooldown.
	StateSettling
)

func (cs CycleState) String() string {
	switch cs {
	case StateActive:
		return "ACTIVE"
	case StateSettling:
		return "SETTLING"
	default:
		panic("unknown cycle state")
	}
}

type CycleRunner interface {
	Place(ctx context.Context) *ladder.Cycle

	Cancel(ctx context.Context, cycle *ladder.Cycle)
}

type Scheduler struct {
	logger        ladder.Logger
	runner        CycleRunner
	holdingPeriod time.Duration
	cooldown      time.Duration

	stateMutex sync.RWMutex
	state      CycleState
	cycles     int

	done chan struct{}
}

// RunScheduler starts the cycle loop: place, hold, cancel, cool down. It runs
// until the context is done; orders held at that moment are cancelled
// before the scheduler reports it is done.
func RunScheduler(
	ctx context.Context,
	logger ladder.Logger,
	runner CycleRunner,
	holdingPeriod time.Duration,
	cooldown time.Duration,
) *Scheduler {
	scheduler := &Scheduler{
		logger:        logger,
		runner:        runner,
		holdingPeriod: holdingPeriod,
		cooldown:      cooldown,
		done:          make(chan struct{}),
	}

	go scheduler.loop(ctx)

	return scheduler
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	defer s.logger.Infof("scheduler stopped")

	for {
		if ctx.Err() != nil {
			return
		}

		s.setState(StateActive)

		var cycle *ladder.Cycle
		s.runStep(cycleStepTimeout, func(stepCtx context.Context) {
			cycle = s.runner.Place(stepCtx)
		})

		cycleLogger := s.logger.WithField("cycleID", cycle.ID.String())
		cycleLogger.Infof(
			"holding [%v] orders for [%v]",
			cycle.Batch.Len(),
			s.holdingPeriod,
		)

		if !wait(ctx, s.holdingPeriod) {
			cycleLogger.Infof("shutting down; cancelling held orders")

			s.runStep(shutdownCancelTimeout, func(stepCtx context.Context) {
				s.runner.Cancel(stepCtx, cycle)
			})

			return
		}

		s.setState(StateSettling)

		s.runStep(cycleStepTimeout, func(stepCtx context.Context) {
			s.runner.Cancel(stepCtx, cycle)
		})
		s.completeCycle()

		cycleLogger.Infof("cooling down for [%v]", s.cooldown)

		if !wait(ctx, s.cooldown) {
			return
		}
	}
}

// runStep runs a cycle step on a fresh context that a shutdown signal does
// not cancel.
func (s *Scheduler) runStep(
	timeout time.Duration,
	step func(stepCtx context.Context),
) {
	stepCtx, cancelStepCtx := context.WithTimeout(
		context.Background(),
		timeout,
	)
	defer cancelStepCtx()

	step(stepCtx)
}

func (s *Scheduler) setState(state CycleState) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	s.logger.Debugf("entering state [%v]", state)

	s.state = state
}

func (s *Scheduler) completeCycle() {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	s.cycles++
}

func (s *Scheduler) State() CycleState {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	return s.state
}

// CompletedCycles counts cycles whose cancellation step has run.
func (s *Scheduler) CompletedCycles() int {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	return s.cycles
}

func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// wait returns false if the context is done before the duration elapses.
func wait(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
