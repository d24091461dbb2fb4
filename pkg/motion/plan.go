package motion

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Step kinds accepted in plan files.
const (
	KindConstant      = "constant"
	KindMoveAndRotate = "move_and_rotate"
)

// Plan is the YAML form of a sequence. Distances are in metres, angles in
// degrees. A plan without steps runs the square pattern.
type Plan struct {
	Repeat       int        `yaml:"repeat"`
	LinearSpeed  float64    `yaml:"linear_speed"`
	AngularSpeed float64    `yaml:"angular_speed"`
	Steps        []PlanStep `yaml:"steps"`
}

// PlanStep is one step of a Plan.
type PlanStep struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	// constant
	VX       float64 `yaml:"vx"`
	VY       float64 `yaml:"vy"`
	Omega    float64 `yaml:"omega"`
	Distance float64 `yaml:"distance"`
	AngleDeg float64 `yaml:"angle_deg"`

	// move_and_rotate
	StartHeadingDeg float64 `yaml:"start_heading_deg"`
	EndHeadingDeg   float64 `yaml:"end_heading_deg"`
	Speed           float64 `yaml:"speed"`
}

// LoadPlan reads a plan from a YAML file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes a YAML plan, filling unset speeds with the defaults.
func ParsePlan(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan YAML: %w", err)
	}
	if p.Repeat <= 0 {
		p.Repeat = DefaultRepetitions
	}
	if p.LinearSpeed == 0 {
		p.LinearSpeed = DefaultLinearSpeed
	}
	if p.AngularSpeed == 0 {
		p.AngularSpeed = DefaultAngularSpeed
	}
	return &p, nil
}

// Sequence converts the plan into a validated sequence.
func (p *Plan) Sequence() (Sequence, error) {
	if len(p.Steps) == 0 {
		seq := SquarePattern(p.LinearSpeed, p.AngularSpeed).Repeat(p.Repeat)
		return seq, seq.Validate()
	}

	pattern := make(Sequence, 0, len(p.Steps))
	for i, ps := range p.Steps {
		seg, err := ps.segment(p.LinearSpeed)
		if err != nil {
			return nil, fmt.Errorf("plan step %d: %w", i+1, err)
		}
		name := ps.Name
		if name == "" {
			name = fmt.Sprintf("Step %d", i+1)
		}
		pattern = append(pattern, Step{Name: name, Segment: seg})
	}

	seq := pattern.Repeat(p.Repeat)
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	return seq, nil
}

func (ps PlanStep) segment(linear float64) (Segment, error) {
	switch ps.Kind {
	case KindConstant, "":
		target := ps.Distance
		if ps.Omega != 0 {
			target = ps.AngleDeg * math.Pi / 180
		}
		return ConstantVelocity{VX: ps.VX, VY: ps.VY, Omega: ps.Omega, Target: target}, nil
	case KindMoveAndRotate:
		speed := ps.Speed
		if speed == 0 {
			speed = linear
		}
		return MoveAndRotate{
			Distance:     ps.Distance,
			StartHeading: ps.StartHeadingDeg * math.Pi / 180,
			EndHeading:   ps.EndHeadingDeg * math.Pi / 180,
			Speed:        speed,
		}, nil
	default:
		return nil, fmt.Errorf("unknown step kind %q", ps.Kind)
	}
}
