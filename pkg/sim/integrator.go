// Package sim integrates published velocity commands with a perfect
// omnidirectional kinematic model, so a trajectory can be checked without a
// robot.
package sim

import (
	"context"
	"math"
	"sync"

	"github.com/gwillem/jetauto/pkg/motion"
)

// Pose is a planar pose in the world frame. Theta is in radians,
// counter-clockwise from +x.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// Step advances the pose by holding a body-frame command for dt seconds.
// The body-to-world rotation uses the heading at the middle of the step.
func (p Pose) Step(cmd motion.VelocityCommand, dt float64) Pose {
	mid := p.Theta + cmd.AngularZ*dt/2
	sin, cos := math.Sincos(mid)
	return Pose{
		X:     p.X + (cos*cmd.LinearX-sin*cmd.LinearY)*dt,
		Y:     p.Y + (sin*cmd.LinearX+cos*cmd.LinearY)*dt,
		Theta: p.Theta + cmd.AngularZ*dt,
	}
}

// Distance returns the Euclidean distance between two poses.
func (p Pose) Distance(q Pose) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Sample is one integrated command.
type Sample struct {
	Time    float64
	Pose    Pose
	Command motion.VelocityCommand
}

// Integrator is a sequencer channel that moves a virtual robot. Each
// command is held for one tick period.
type Integrator struct {
	mu        sync.Mutex
	dt        float64
	now       float64
	pose      Pose
	trace     []Sample
	waypoints []Pose
}

// NewIntegrator creates an integrator for commands published at hz.
func NewIntegrator(hz int, start Pose) *Integrator {
	return &Integrator{dt: 1 / float64(hz), pose: start}
}

// Publish integrates one command. A stop command records a waypoint.
func (i *Integrator) Publish(ctx context.Context, cmd motion.VelocityCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if cmd.IsZero() {
		i.waypoints = append(i.waypoints, i.pose)
	} else {
		i.pose = i.pose.Step(cmd, i.dt)
		i.now += i.dt
	}
	i.trace = append(i.trace, Sample{Time: i.now, Pose: i.pose, Command: cmd})
	return nil
}

// Pose returns the current pose.
func (i *Integrator) Pose() Pose {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.pose
}

// Trace returns every integrated sample.
func (i *Integrator) Trace() []Sample {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Sample, len(i.trace))
	copy(out, i.trace)
	return out
}

// Waypoints returns the pose at each stop command.
func (i *Integrator) Waypoints() []Pose {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Pose, len(i.waypoints))
	copy(out, i.waypoints)
	return out
}

// Integrate runs a segment's command law from start with step dt, sampling
// the command at the middle of each step. The final step is shortened so
// the segment's exact duration is covered.
func Integrate(seg motion.Segment, start Pose, dt float64) Pose {
	pose := start
	duration := seg.Duration()
	for t := 0.0; t < duration; t += dt {
		h := math.Min(dt, duration-t)
		pose = pose.Step(seg.CommandAt(t+h/2), h)
	}
	return pose
}

// NormalizeAngle wraps an angle into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
