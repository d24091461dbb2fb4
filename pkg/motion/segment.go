package motion

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrZeroSpeed is returned for segments whose duration would divide by zero.
	ErrZeroSpeed = errors.New("segment has zero speed")
	// ErrMixedMotion is returned for constant segments that translate and rotate at once.
	ErrMixedMotion = errors.New("constant segment mixes linear and angular velocity")
	// ErrBadTarget is returned for non-positive distances and zero angles.
	ErrBadTarget = errors.New("segment target out of range")
	// ErrNotFinite is returned when a field or derived rate is NaN or infinite.
	ErrNotFinite = errors.New("segment value is not finite")
	// ErrTooLong is returned for durations beyond MaxDuration.
	ErrTooLong = errors.New("segment duration too long")
)

// MaxDuration is the longest segment in seconds, bounded by time.Duration.
const MaxDuration = float64(math.MaxInt64) / 1e9

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// checkDuration rejects durations a tick loop cannot represent.
func checkDuration(d float64) error {
	switch {
	case !finite(d):
		return ErrNotFinite
	case d >= MaxDuration:
		return ErrTooLong
	}
	return nil
}

// Segment is one atomic phase of a trajectory.
type Segment interface {
	// Duration returns how long the segment runs, in seconds.
	Duration() float64

	// CommandAt returns the command to publish t seconds into the segment.
	CommandAt(t float64) VelocityCommand

	// Validate reports configurations whose duration is undefined.
	Validate() error
}

// ConstantVelocity holds one velocity for as long as it takes to cover
// Target: a distance in metres for translations, an angle in radians for
// rotations. The sign of a rotation target is ignored; Omega sets the
// direction.
type ConstantVelocity struct {
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Omega  float64 `json:"omega"`
	Target float64 `json:"target"`
}

// Speed returns the translational speed.
func (s ConstantVelocity) Speed() float64 {
	return math.Hypot(s.VX, s.VY)
}

// Duration returns |Target/Omega| for rotations and Target/Speed otherwise.
func (s ConstantVelocity) Duration() float64 {
	if s.Omega != 0 {
		return math.Abs(s.Target / s.Omega)
	}
	return s.Target / s.Speed()
}

func (s ConstantVelocity) CommandAt(float64) VelocityCommand {
	return VelocityCommand{LinearX: s.VX, LinearY: s.VY, AngularZ: s.Omega}
}

func (s ConstantVelocity) Validate() error {
	if !finite(s.VX, s.VY, s.Omega, s.Target) {
		return ErrNotFinite
	}
	speed := s.Speed()
	switch {
	case s.Omega == 0 && speed == 0:
		return ErrZeroSpeed
	case s.Omega != 0 && speed != 0:
		return ErrMixedMotion
	case s.Omega != 0 && s.Target == 0:
		return ErrBadTarget
	case s.Omega == 0 && s.Target <= 0:
		return ErrBadTarget
	}
	return checkDuration(s.Duration())
}

// MoveAndRotate translates toward global south at a fixed speed while the
// body turns at a constant rate from StartHeading to EndHeading (radians).
type MoveAndRotate struct {
	Distance     float64 `json:"distance"`
	StartHeading float64 `json:"start_heading"`
	EndHeading   float64 `json:"end_heading"`
	Speed        float64 `json:"speed"`
}

// Duration returns Distance/Speed.
func (s MoveAndRotate) Duration() float64 {
	return s.Distance / s.Speed
}

// Omega returns the constant turn rate that reaches EndHeading at Duration.
func (s MoveAndRotate) Omega() float64 {
	return (s.EndHeading - s.StartHeading) / s.Duration()
}

// Heading returns the modelled heading t seconds into the segment.
func (s MoveAndRotate) Heading(t float64) float64 {
	return s.StartHeading + s.Omega()*t
}

// CommandAt keeps the world-frame velocity pointed at -y by counter-rotating
// the body-frame vector against the modelled heading.
func (s MoveAndRotate) CommandAt(t float64) VelocityCommand {
	h := s.Heading(t)
	return VelocityCommand{
		LinearX:  -s.Speed * math.Sin(h),
		LinearY:  -s.Speed * math.Cos(h),
		AngularZ: s.Omega(),
	}
}

func (s MoveAndRotate) Validate() error {
	if !finite(s.Distance, s.StartHeading, s.EndHeading, s.Speed) {
		return ErrNotFinite
	}
	if s.Speed <= 0 {
		return ErrZeroSpeed
	}
	if s.Distance <= 0 {
		return ErrBadTarget
	}
	if err := checkDuration(s.Duration()); err != nil {
		return err
	}
	if !finite(s.Omega()) {
		return ErrNotFinite
	}
	return nil
}

// Describe returns a short human-readable summary of a segment.
func Describe(s Segment) string {
	switch seg := s.(type) {
	case ConstantVelocity:
		if seg.Omega != 0 {
			return fmt.Sprintf("rotate %.1f° at %.2f rad/s", seg.Target*180/math.Pi, seg.Omega)
		}
		return fmt.Sprintf("translate %.2f m at (%.2f, %.2f) m/s", seg.Target, seg.VX, seg.VY)
	case MoveAndRotate:
		return fmt.Sprintf("move %.2f m south turning %.1f° → %.1f°",
			seg.Distance, seg.StartHeading*180/math.Pi, seg.EndHeading*180/math.Pi)
	default:
		return fmt.Sprintf("%T", s)
	}
}
