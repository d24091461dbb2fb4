package robot

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/gwillem/jetauto/pkg/motion"
)

// Mecanum maps body velocities to wheel speeds for a four-wheel mecanum
// base with rollers at 45°.
type Mecanum struct {
	jacobian *mat.Dense // 4×3, rows in AllWheels() order
}

// NewMecanum builds the kinematics for a base with the given wheel radius,
// half wheelbase (lx) and half track width (ly), all in metres.
func NewMecanum(wheelRadius, halfWheelbase, halfTrack float64) (*Mecanum, error) {
	if wheelRadius <= 0 {
		return nil, fmt.Errorf("wheel radius must be positive, got %f", wheelRadius)
	}
	k := halfWheelbase + halfTrack
	r := 1 / wheelRadius
	return &Mecanum{
		jacobian: mat.NewDense(4, 3, []float64{
			r, -r, -r * k, // front_left
			r, r, r * k,   // front_right
			r, r, -r * k,  // rear_left
			r, -r, r * k,  // rear_right
		}),
	}, nil
}

// WheelSpeeds returns each wheel's angular speed in rad/s.
func (m *Mecanum) WheelSpeeds(cmd motion.VelocityCommand) map[WheelName]float64 {
	body := mat.NewVecDense(3, []float64{cmd.LinearX, cmd.LinearY, cmd.AngularZ})
	var wheels mat.VecDense
	wheels.MulVec(m.jacobian, body)

	speeds := make(map[WheelName]float64, 4)
	for i, name := range AllWheels() {
		speeds[name] = wheels.AtVec(i)
	}
	return speeds
}

// BodyVelocity is the least-squares inverse of WheelSpeeds.
func (m *Mecanum) BodyVelocity(speeds map[WheelName]float64) (motion.VelocityCommand, error) {
	wheels := mat.NewVecDense(4, nil)
	for i, name := range AllWheels() {
		wheels.SetVec(i, speeds[name])
	}

	var body mat.VecDense
	if err := body.SolveVec(m.jacobian, wheels); err != nil {
		return motion.VelocityCommand{}, fmt.Errorf("solve body velocity: %w", err)
	}
	return motion.VelocityCommand{
		LinearX:  body.AtVec(0),
		LinearY:  body.AtVec(1),
		AngularZ: body.AtVec(2),
	}, nil
}
