package main

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/jetauto/pkg/motion"
)

func TestSimulate_DefaultSequence(t *testing.T) {
	seq := motion.DefaultSequence(motion.DefaultLinearSpeed, motion.DefaultAngularSpeed)

	integ, results, stats, err := simulate(seq, 50, time.Second)
	require.NoError(t, err)
	require.Len(t, results, 10)

	assert.Equal(t, 10, stats.Stops)
	assert.InDelta(t, 1.0, results[0].pose.X, 1e-9)
	assert.InDelta(t, 1.0, results[1].pose.Y, 1e-9)
	assert.InDelta(t, -math.Pi/2, results[2].pose.Theta, 0.02)
	assert.InDelta(t, 0, integ.Pose().Distance(results[9].pose), 1e-12)

	out := renderResults(results)
	assert.Contains(t, out, "Move Sideways Left")
	assert.Contains(t, out, "3.14 s")
}

func TestSimulate_ZeroHzUsesDefaultRate(t *testing.T) {
	seq := motion.Sequence{{Loop: 1, Name: "forward", Segment: motion.ConstantVelocity{VX: 0.2, Target: 1}}}

	integ, results, stats, err := simulate(seq, 0, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// 5 s at the default 50 Hz plus the stop.
	assert.Equal(t, 251, stats.Commands)
	assert.InDelta(t, 1.0, integ.Pose().X, 1e-9)
}

func TestSimulate_InvalidSequence(t *testing.T) {
	seq := motion.Sequence{{Loop: 1, Name: "stalled", Segment: motion.ConstantVelocity{Target: 1}}}
	_, _, _, err := simulate(seq, 50, time.Second)
	assert.ErrorIs(t, err, motion.ErrZeroSpeed)
}
