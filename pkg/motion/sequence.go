package motion

import (
	"fmt"
	"math"
)

// Default speeds and pattern dimensions.
const (
	DefaultLinearSpeed  = 0.2 // m/s
	DefaultAngularSpeed = 0.5 // rad/s
	DefaultRepetitions  = 2
	SideLength          = 1.0 // m
)

// Step is a named segment within a sequence. Loop is 1-based.
type Step struct {
	Loop    int
	Name    string
	Segment Segment
}

// Sequence is an ordered list of steps executed strictly one after another.
type Sequence []Step

// SquarePattern returns one pass of the square-plus-rotation pattern:
//
//	(0,0,0°) → (1,0) → (1,1) → (1,1,-90°) → (0,1,-90°) → (0,0,0°)
func SquarePattern(linear, angular float64) Sequence {
	return Sequence{
		{Name: "Move Forward", Segment: ConstantVelocity{VX: linear, Target: SideLength}},
		{Name: "Move Sideways Left", Segment: ConstantVelocity{VY: linear, Target: SideLength}},
		{Name: "Turn Clockwise 90 deg", Segment: ConstantVelocity{Omega: -angular, Target: math.Pi / 2}},
		{Name: "Move Sideways Right", Segment: ConstantVelocity{VY: -linear, Target: SideLength}},
		{Name: "Move Forward and Turn", Segment: MoveAndRotate{
			Distance:     SideLength,
			StartHeading: -math.Pi / 2,
			EndHeading:   0,
			Speed:        linear,
		}},
	}
}

// DefaultSequence is the square pattern repeated twice.
func DefaultSequence(linear, angular float64) Sequence {
	return SquarePattern(linear, angular).Repeat(DefaultRepetitions)
}

// Repeat returns n copies of the sequence with loops numbered from 1.
func (s Sequence) Repeat(n int) Sequence {
	out := make(Sequence, 0, len(s)*n)
	for i := 1; i <= n; i++ {
		for _, step := range s {
			step.Loop = i
			out = append(out, step)
		}
	}
	return out
}

// Validate checks every segment before anything is published.
func (s Sequence) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("empty sequence")
	}
	for i, step := range s {
		if step.Segment == nil {
			return fmt.Errorf("step %d (%s): missing segment", i+1, step.Name)
		}
		if err := step.Segment.Validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
	}
	return nil
}

// Duration returns the summed segment durations, excluding settle pauses.
func (s Sequence) Duration() float64 {
	var total float64
	for _, step := range s {
		total += step.Segment.Duration()
	}
	return total
}

// Loops returns the number of distinct loops in the sequence.
func (s Sequence) Loops() int {
	loops := 0
	for _, step := range s {
		if step.Loop > loops {
			loops = step.Loop
		}
	}
	return loops
}
