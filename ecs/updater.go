package ecs

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TargetRate is the built-in global that sets how often Updater.Run drives a frame.
type TargetRate struct {
	Hz float64 `json:"hz"`
}

// DefaultTargetRate is used when the scene has no usable TargetRate.
const DefaultTargetRate = 60.0

// PhaseStats provides execution statistics for one frame phase.
type PhaseStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

// UpdaterStats provides statistics about frames driven by an Updater.
type UpdaterStats struct {
	Frames       int64
	FailedFrames int64
	Phases       []PhaseStats
}

type phaseStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (p *phaseStatsInternal) record(d time.Duration) {
	p.executionCount++
	p.lastDuration = d
	p.totalDuration += d
	if d < p.minDuration {
		p.minDuration = d
	}
	if d > p.maxDuration {
		p.maxDuration = d
	}
}

// Updater drives a scene by publishing PreUpdate, Update and PostUpdate for
// every frame, then flushing the frame's Commands.
type Updater struct {
	scene       *Scene
	commands    *Commands
	beforeFrame func(*Scene) error
	poll        time.Duration

	frames       int64
	failedFrames int64
	phases       []*phaseStatsInternal
}

// UpdaterOption configures an Updater.
type UpdaterOption func(*Updater)

// WithBeforeFrame sets a function called at the start of every frame, before
// PreUpdate. It is the place to hand work from other goroutines to the scene.
func WithBeforeFrame(fn func(*Scene) error) UpdaterOption {
	return func(u *Updater) {
		u.beforeFrame = fn
	}
}

// WithPollInterval sets how long Run sleeps between checks for the next frame.
func WithPollInterval(d time.Duration) UpdaterOption {
	return func(u *Updater) {
		u.poll = d
	}
}

// NewUpdater creates an updater for the scene.
func NewUpdater(scene *Scene, opts ...UpdaterOption) *Updater {
	u := &Updater{
		scene:    scene,
		commands: NewCommands(),
		poll:     time.Millisecond,
	}
	for _, name := range []string{EventPreUpdate, EventUpdate, EventPostUpdate, "Flush"} {
		u.phases = append(u.phases, &phaseStatsInternal{
			name:        name,
			minDuration: time.Duration(1<<63 - 1),
		})
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Commands returns the buffer handed to every frame event.
func (u *Updater) Commands() *Commands {
	return u.commands
}

// Once drives a single frame with the given delta time in seconds. A failing
// phase does not stop the rest of the frame; all errors are joined.
func (u *Updater) Once(dt float64) error {
	var errs []error
	if u.beforeFrame != nil {
		if err := u.beforeFrame(u.scene); err != nil {
			errs = append(errs, eris.Wrap(err, "before frame"))
		}
	}

	events := []Event{
		PreUpdate{DeltaTime: dt, Commands: u.commands},
		Update{DeltaTime: dt, Commands: u.commands},
		PostUpdate{DeltaTime: dt, Commands: u.commands},
	}
	for i, event := range events {
		start := time.Now()
		if err := u.scene.bus.Publish(event); err != nil {
			errs = append(errs, err)
		}
		u.phases[i].record(time.Since(start))
	}

	start := time.Now()
	if err := u.commands.Flush(u.scene); err != nil {
		errs = append(errs, eris.Wrap(err, "flush commands"))
	}
	u.phases[len(events)].record(time.Since(start))

	u.frames++
	if len(errs) > 0 {
		u.failedFrames++
	}
	return errors.Join(errs...)
}

// Interval returns the frame interval derived from the scene's TargetRate.
func (u *Updater) Interval() time.Duration {
	hz := DefaultTargetRate
	if rate, ok := GetGlobal[TargetRate](u.scene); ok && rate.Hz > 0 {
		hz = rate.Hz
	}
	return time.Duration(float64(time.Second) / hz)
}

// Run drives frames until ctx is cancelled. Pacing is coarse: Run polls the
// clock and starts a frame once the interval from TargetRate has elapsed, so
// it does not guarantee real-time deadlines. Frame errors are logged and the
// loop continues. The scene must be running.
func (u *Updater) Run(ctx context.Context) error {
	if !u.scene.running {
		return ErrSceneNotRunning
	}

	log := u.scene.log
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		if elapsed := now.Sub(last); elapsed >= u.Interval() {
			last = now
			if err := u.Once(elapsed.Seconds()); err != nil {
				log.Warn("frame failed", zap.Int64("frame", u.frames), zap.Error(err))
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(u.poll):
		}
	}
}

// Stats returns statistics about the frames driven so far.
func (u *Updater) Stats() UpdaterStats {
	stats := UpdaterStats{
		Frames:       u.frames,
		FailedFrames: u.failedFrames,
		Phases:       make([]PhaseStats, len(u.phases)),
	}

	for i, internal := range u.phases {
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Phases[i] = PhaseStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
	}
	return stats
}
