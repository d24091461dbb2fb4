package motion

import (
	"errors"
	"math"
	"testing"
)

func TestConstantVelocity_Duration(t *testing.T) {
	tests := []struct {
		name     string
		seg      ConstantVelocity
		expected float64
	}{
		{"forward", ConstantVelocity{VX: 0.2, Target: 1.0}, 5.0},
		{"strafe left", ConstantVelocity{VY: 0.2, Target: 1.0}, 5.0},
		{"strafe right", ConstantVelocity{VY: -0.2, Target: 1.0}, 5.0},
		{"diagonal", ConstantVelocity{VX: 0.3, VY: 0.4, Target: 1.0}, 2.0},
		{"clockwise turn", ConstantVelocity{Omega: -0.5, Target: math.Pi / 2}, math.Pi},
		{"counter-clockwise turn", ConstantVelocity{Omega: 0.5, Target: math.Pi / 2}, math.Pi},
		{"negative angle", ConstantVelocity{Omega: 0.5, Target: -math.Pi / 2}, math.Pi},
	}

	for _, tt := range tests {
		got := tt.seg.Duration()
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("%s: Duration() = %f, want %f", tt.name, got, tt.expected)
		}
	}
}

func TestConstantVelocity_CommandIsConstant(t *testing.T) {
	seg := ConstantVelocity{VY: -0.2, Target: 1.0}
	want := VelocityCommand{LinearY: -0.2}

	for _, at := range []float64{0, 1.3, seg.Duration()} {
		if got := seg.CommandAt(at); got != want {
			t.Errorf("CommandAt(%f) = %+v, want %+v", at, got, want)
		}
	}
}

func TestConstantVelocity_Validate(t *testing.T) {
	tests := []struct {
		seg  ConstantVelocity
		want error
	}{
		{ConstantVelocity{VX: 0.2, Target: 1}, nil},
		{ConstantVelocity{Omega: -0.5, Target: 1}, nil},
		{ConstantVelocity{Target: 1}, ErrZeroSpeed},
		{ConstantVelocity{VX: 0.2, Omega: 0.5, Target: 1}, ErrMixedMotion},
		{ConstantVelocity{VX: 0.2}, ErrBadTarget},
		{ConstantVelocity{VX: 0.2, Target: -1}, ErrBadTarget},
		{ConstantVelocity{Omega: 0.5, Target: -math.Pi / 2}, nil},
		{ConstantVelocity{Omega: 0.5}, ErrBadTarget},
		{ConstantVelocity{VX: 0.2, Target: math.Inf(1)}, ErrNotFinite},
		{ConstantVelocity{VX: 0.2, Target: math.NaN()}, ErrNotFinite},
		{ConstantVelocity{Target: math.NaN()}, ErrNotFinite},
		{ConstantVelocity{VX: math.NaN(), Target: 1}, ErrNotFinite},
		{ConstantVelocity{Omega: math.Inf(-1), Target: 1}, ErrNotFinite},
		{ConstantVelocity{VX: 0.2, Target: 1e12}, ErrTooLong},
		{ConstantVelocity{VX: 1e-300, Target: 1}, ErrTooLong},
	}

	for _, tt := range tests {
		if err := tt.seg.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("Validate(%+v) = %v, want %v", tt.seg, err, tt.want)
		}
	}
}

func TestMoveAndRotate(t *testing.T) {
	seg := MoveAndRotate{Distance: 1.0, StartHeading: -math.Pi / 2, EndHeading: 0, Speed: 0.2}

	if d := seg.Duration(); math.Abs(d-5.0) > 1e-9 {
		t.Errorf("Duration() = %f, want 5.0", d)
	}
	if w := seg.Omega(); math.Abs(w-math.Pi/10) > 1e-9 {
		t.Errorf("Omega() = %f, want %f", w, math.Pi/10)
	}

	start := seg.CommandAt(0)
	if math.Abs(start.LinearX-0.2) > 1e-9 || math.Abs(start.LinearY) > 1e-9 {
		t.Errorf("CommandAt(0) = %+v, want (0.2, 0)", start)
	}

	end := seg.CommandAt(seg.Duration())
	if math.Abs(end.LinearX) > 1e-9 || math.Abs(end.LinearY+0.2) > 1e-9 {
		t.Errorf("CommandAt(end) = %+v, want (0, -0.2)", end)
	}

	// Speed is preserved throughout.
	for at := 0.0; at <= seg.Duration(); at += 0.37 {
		cmd := seg.CommandAt(at)
		if s := math.Hypot(cmd.LinearX, cmd.LinearY); math.Abs(s-0.2) > 1e-9 {
			t.Errorf("speed at %f = %f, want 0.2", at, s)
		}
		if cmd.AngularZ != seg.Omega() {
			t.Errorf("angular at %f = %f, want %f", at, cmd.AngularZ, seg.Omega())
		}
	}
}

func TestMoveAndRotate_Validate(t *testing.T) {
	if err := (MoveAndRotate{Distance: 1}).Validate(); !errors.Is(err, ErrZeroSpeed) {
		t.Errorf("zero speed: got %v, want ErrZeroSpeed", err)
	}
	if err := (MoveAndRotate{Speed: 0.2}).Validate(); !errors.Is(err, ErrBadTarget) {
		t.Errorf("zero distance: got %v, want ErrBadTarget", err)
	}

	tests := []struct {
		name string
		seg  MoveAndRotate
		want error
	}{
		{"square step", MoveAndRotate{Distance: 1, StartHeading: -math.Pi / 2, Speed: 0.2}, nil},
		{"nan start heading", MoveAndRotate{Distance: 1, StartHeading: math.NaN(), Speed: 0.2}, ErrNotFinite},
		{"inf end heading", MoveAndRotate{Distance: 1, EndHeading: math.Inf(1), Speed: 0.2}, ErrNotFinite},
		{"nan distance", MoveAndRotate{Distance: math.NaN(), Speed: 0.2}, ErrNotFinite},
		{"inf speed", MoveAndRotate{Distance: 1, Speed: math.Inf(1)}, ErrNotFinite},
		{"too long", MoveAndRotate{Distance: 1e12, Speed: 0.2}, ErrTooLong},
		{"turn rate overflows", MoveAndRotate{Distance: 1e-320, EndHeading: 1e300, Speed: 1}, ErrNotFinite},
	}

	for _, tt := range tests {
		if err := tt.seg.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("%s: Validate() = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestStop(t *testing.T) {
	if !Stop().IsZero() {
		t.Error("Stop() should be zero")
	}
	if (VelocityCommand{AngularZ: 0.1}).IsZero() {
		t.Error("rotating command reported as zero")
	}
}
