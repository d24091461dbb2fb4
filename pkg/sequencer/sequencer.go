// Package sequencer runs open-loop trajectories by streaming velocity
// commands to a channel at a fixed rate.
package sequencer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gwillem/jetauto/pkg/motion"
)

// Defaults for the tick loop.
const (
	DefaultHz     = 50
	DefaultSettle = time.Second

	// stopTimeout bounds the best-effort stop sent after an interrupt.
	stopTimeout = 500 * time.Millisecond
)

// Channel accepts velocity commands. Publishing is fire-and-forget: a nil
// error means the command was handed off, not that the robot acted on it.
type Channel interface {
	Publish(ctx context.Context, cmd motion.VelocityCommand) error
}

// Phase is the sequencer's position in its linear state machine.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseMoving   Phase = "moving"
	PhaseStopping Phase = "stopping"
	PhaseDone     Phase = "done"
)

// State is a snapshot of the sequence in progress.
type State struct {
	RunID     string
	Phase     Phase
	Loop      int
	Index     int // 1-based step index
	Total     int
	Step      string
	Command   motion.VelocityCommand
	Elapsed   time.Duration
	Duration  time.Duration
	Timestamp time.Time
	Error     error
}

// Stats counts what a run has published.
type Stats struct {
	Commands int // every published command, stops included
	Stops    int
	Steps    int // completed steps
}

// Config holds configuration for the sequencer.
type Config struct {
	Hz     int
	Settle time.Duration
	Clock  Clock
}

// Sequencer executes a motion.Sequence step by step.
type Sequencer struct {
	channel Channel
	clock   Clock
	hz      int
	settle  time.Duration

	mu      sync.RWMutex
	running bool
	runID   string
	stats   Stats
	stateCh chan State
	logCh   chan string
}

// New creates a sequencer publishing to ch.
func New(ch Channel, cfg Config) *Sequencer {
	if cfg.Hz <= 0 {
		cfg.Hz = DefaultHz
	}
	if cfg.Settle < 0 {
		cfg.Settle = 0
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}

	return &Sequencer{
		channel: ch,
		clock:   cfg.Clock,
		hz:      cfg.Hz,
		settle:  cfg.Settle,
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 64),
	}
}

// States returns a channel that receives state updates. Only the latest
// state is kept when the reader falls behind.
func (s *Sequencer) States() <-chan State {
	return s.stateCh
}

// Logs returns a channel that receives log messages.
func (s *Sequencer) Logs() <-chan string {
	return s.logCh
}

// Hz returns the tick frequency.
func (s *Sequencer) Hz() int {
	return s.hz
}

// RunID returns the identifier of the current or last run.
func (s *Sequencer) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// Stats returns counters for the current or last run.
func (s *Sequencer) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Sequencer) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", s.clock.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case s.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Run executes seq from start to finish, blocking until the last stop and
// settle pause are done. Cancelling ctx aborts the current tick loop; one
// best-effort stop is sent before Run returns ctx.Err().
func (s *Sequencer) Run(ctx context.Context, seq motion.Sequence) error {
	if err := seq.Validate(); err != nil {
		return fmt.Errorf("invalid sequence: %w", err)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("already running")
	}
	s.running = true
	s.runID = uuid.NewString()
	s.stats = Stats{}
	runID := s.runID
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	loops := seq.Loops()
	s.log("Run %s: %d steps, %d loop(s) at %d Hz", runID[:8], len(seq), loops, s.hz)
	s.sendState(State{RunID: runID, Phase: PhaseIdle, Total: len(seq), Timestamp: s.clock.Now()})

	rate := NewRate(s.clock, s.hz)
	loop := 0
	for i, step := range seq {
		if step.Loop != loop {
			loop = step.Loop
			s.log("--- Starting Loop %d/%d ---", loop, loops)
		}
		s.log("Step %d: %s (%s)", i+1, step.Name, motion.Describe(step.Segment))

		if err := s.execute(ctx, rate, runID, i, len(seq), step); err != nil {
			if ctx.Err() != nil {
				s.abort("Interrupted")
				return ctx.Err()
			}
			s.abort("Aborted")
			s.sendState(State{RunID: runID, Phase: PhaseDone, Index: i + 1, Total: len(seq), Step: step.Name, Timestamp: s.clock.Now(), Error: err})
			return err
		}
	}

	s.log("Pattern complete")
	s.sendState(State{RunID: runID, Phase: PhaseDone, Index: len(seq), Total: len(seq), Timestamp: s.clock.Now()})
	return nil
}

// execute streams one step's commands until its duration has elapsed, then
// stops and settles. Overrun of up to one tick is expected.
func (s *Sequencer) execute(ctx context.Context, rate *Rate, runID string, i, total int, step motion.Step) error {
	duration := seconds(step.Segment.Duration())
	state := State{
		RunID:    runID,
		Phase:    PhaseMoving,
		Loop:     step.Loop,
		Index:    i + 1,
		Total:    total,
		Step:     step.Name,
		Duration: duration,
	}

	start := s.clock.Now()
	rate.Reset()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := s.clock.Now()
		elapsed := now.Sub(start)
		if elapsed >= duration {
			break
		}

		cmd := step.Segment.CommandAt(elapsed.Seconds())
		if err := s.publish(ctx, cmd); err != nil {
			return fmt.Errorf("step %d (%s): publish: %w", i+1, step.Name, err)
		}

		state.Command = cmd
		state.Elapsed = elapsed
		state.Timestamp = now
		s.sendState(state)

		if err := rate.Sleep(ctx); err != nil {
			return err
		}
	}

	if err := s.stop(ctx); err != nil {
		return fmt.Errorf("step %d (%s): stop: %w", i+1, step.Name, err)
	}

	s.mu.Lock()
	s.stats.Steps++
	s.mu.Unlock()

	state.Phase = PhaseStopping
	state.Command = motion.Stop()
	state.Elapsed = s.clock.Now().Sub(start)
	state.Timestamp = s.clock.Now()
	s.sendState(state)

	return wait(ctx, s.clock, s.settle)
}

func (s *Sequencer) publish(ctx context.Context, cmd motion.VelocityCommand) error {
	if err := s.channel.Publish(ctx, cmd); err != nil {
		return err
	}
	s.mu.Lock()
	s.stats.Commands++
	s.mu.Unlock()
	return nil
}

func (s *Sequencer) stop(ctx context.Context) error {
	if err := s.publish(ctx, motion.Stop()); err != nil {
		return err
	}
	s.mu.Lock()
	s.stats.Stops++
	s.mu.Unlock()
	return nil
}

// abort sends one stop on a detached context after an interrupt or a failed
// publish. Delivery is not guaranteed.
func (s *Sequencer) abort(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := s.stop(ctx); err != nil {
		s.log("Warning: %s, stop failed: %v", reason, err)
		return
	}
	s.log("%s: stop sent", reason)
}

func (s *Sequencer) sendState(st State) {
	select {
	case s.stateCh <- st:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-s.stateCh:
		default:
		}
		select {
		case s.stateCh <- st:
		default:
		}
	}
}

func seconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
