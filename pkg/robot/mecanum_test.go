package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/gwillem/jetauto/pkg/motion"
)

func wheelVector(speeds map[WheelName]float64) []float64 {
	out := make([]float64, 0, 4)
	for _, name := range AllWheels() {
		out = append(out, speeds[name])
	}
	return out
}

func TestMecanum_WheelSpeeds(t *testing.T) {
	m, err := NewMecanum(0.05, 0.1, 0.1)
	require.NoError(t, err)

	tests := []struct {
		name string
		cmd  motion.VelocityCommand
		want []float64 // front_left, front_right, rear_left, rear_right
	}{
		{"forward", motion.VelocityCommand{LinearX: 0.2}, []float64{4, 4, 4, 4}},
		{"strafe left", motion.VelocityCommand{LinearY: 0.2}, []float64{-4, 4, 4, -4}},
		{"spin ccw", motion.VelocityCommand{AngularZ: 0.5}, []float64{-2, 2, -2, 2}},
		{"stop", motion.Stop(), []float64{0, 0, 0, 0}},
	}

	for _, tt := range tests {
		got := wheelVector(m.WheelSpeeds(tt.cmd))
		assert.True(t, floats.EqualApprox(tt.want, got, 1e-9), "%s: got %v, want %v", tt.name, got, tt.want)
	}
}

func TestMecanum_BodyVelocityInvertsWheelSpeeds(t *testing.T) {
	m, err := NewMecanum(DefaultWheelRadius, DefaultHalfWheelbase, DefaultHalfTrack)
	require.NoError(t, err)

	cmds := []motion.VelocityCommand{
		{LinearX: 0.2},
		{LinearY: -0.2},
		{AngularZ: -0.5},
		{LinearX: 0.2, LinearY: -0.0001, AngularZ: 0.314},
	}
	for _, cmd := range cmds {
		body, err := m.BodyVelocity(m.WheelSpeeds(cmd))
		require.NoError(t, err)
		assert.InDelta(t, cmd.LinearX, body.LinearX, 1e-9)
		assert.InDelta(t, cmd.LinearY, body.LinearY, 1e-9)
		assert.InDelta(t, cmd.AngularZ, body.AngularZ, 1e-9)
	}
}

func TestNewMecanum_RejectsZeroRadius(t *testing.T) {
	_, err := NewMecanum(0, 0.1, 0.1)
	assert.Error(t, err)
}
