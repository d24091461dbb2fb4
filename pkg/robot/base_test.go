package robot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/jetauto/pkg/motion"
)

type fakeServo struct {
	velocities []int
	err        error
}

func (f *fakeServo) SetVelocity(ctx context.Context, v int) error {
	if f.err != nil {
		return f.err
	}
	f.velocities = append(f.velocities, v)
	return nil
}

func newFakeBase(t *testing.T) (*Base, map[WheelName]*fakeServo) {
	t.Helper()
	kin, err := NewMecanum(0.05, 0.1, 0.1)
	require.NoError(t, err)

	fakes := make(map[WheelName]*fakeServo, 4)
	drives := make(map[WheelName]velocityServo, 4)
	for _, name := range AllWheels() {
		f := &fakeServo{}
		fakes[name] = f
		drives[name] = f
	}
	return &Base{drives: drives, calibration: DefaultCalibration(), kinematics: kin}, fakes
}

func TestBase_PublishForward(t *testing.T) {
	b, fakes := newFakeBase(t)

	// 0.2 m/s on 5 cm wheels is 4 rad/s, 2607.6 steps/s.
	require.NoError(t, b.Publish(context.Background(), motion.VelocityCommand{LinearX: 0.2}))

	assert.Equal(t, []int{2608}, fakes[FrontLeft].velocities)
	assert.Equal(t, []int{2608}, fakes[RearLeft].velocities)
	// Right-hand servos are mirrored.
	assert.Equal(t, []int{-2608}, fakes[FrontRight].velocities)
	assert.Equal(t, []int{-2608}, fakes[RearRight].velocities)
}

func TestBase_PublishSaturatedKeepsDirection(t *testing.T) {
	b, fakes := newFakeBase(t)
	cmd := motion.VelocityCommand{LinearX: 0.1, LinearY: -0.1, AngularZ: 0.3}

	// rear_right wants 5.2 rad/s (3390 steps/s), the others stay under 3000.
	require.NoError(t, b.Publish(context.Background(), cmd))
	assert.Equal(t, []int{-DefaultMaxVelocity}, fakes[RearRight].velocities)

	sent := make(map[WheelName]float64, 4)
	for _, name := range AllWheels() {
		require.Len(t, fakes[name].velocities, 1, name)
		sent[name] = b.calibration[name].FromServo(fakes[name].velocities[0])
	}
	got, err := b.kinematics.BodyVelocity(sent)
	require.NoError(t, err)

	// Same twist, uniformly slowed.
	scale := got.LinearX / cmd.LinearX
	assert.Less(t, scale, 1.0)
	assert.InDelta(t, 0.885, scale, 0.01)
	assert.InDelta(t, scale, got.LinearY/cmd.LinearY, 0.005)
	assert.InDelta(t, scale, got.AngularZ/cmd.AngularZ, 0.005)
}

func TestBase_PublishUnsaturatedUnscaled(t *testing.T) {
	b, _ := newFakeBase(t)
	speeds := b.kinematics.WheelSpeeds(motion.VelocityCommand{LinearX: 0.1, AngularZ: 0.2})
	assert.Equal(t, 1.0, b.saturationScale(speeds))
}

func TestBase_PublishStop(t *testing.T) {
	b, fakes := newFakeBase(t)

	require.NoError(t, b.Publish(context.Background(), motion.Stop()))
	require.NoError(t, b.Publish(context.Background(), motion.Stop()))

	for name, f := range fakes {
		assert.Equal(t, []int{0, 0}, f.velocities, name)
	}
}

func TestBase_PublishError(t *testing.T) {
	b, fakes := newFakeBase(t)
	fakes[FrontRight].err = errors.New("bus timeout")

	err := b.Publish(context.Background(), motion.VelocityCommand{LinearY: 0.1})
	require.Error(t, err)
	assert.ErrorIs(t, err, fakes[FrontRight].err)
	assert.Contains(t, err.Error(), "front_right")
}
