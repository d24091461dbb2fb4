// Package motion describes open-loop trajectories for an omnidirectional base.
//
// A trajectory is a Sequence of Steps. Each Step wraps a Segment, which knows
// how long it lasts and which body-frame velocity to command at any time
// since its start. Segments carry no feedback: the command law depends only
// on elapsed time.
package motion

// VelocityCommand is a body-frame velocity: m/s along x (forward) and y
// (left), rad/s about z (counter-clockwise).
type VelocityCommand struct {
	LinearX  float64 `json:"linear_x"`
	LinearY  float64 `json:"linear_y"`
	AngularZ float64 `json:"angular_z"`
}

// Stop returns the zero-velocity command.
func Stop() VelocityCommand {
	return VelocityCommand{}
}

// IsZero reports whether the command requests no motion.
func (c VelocityCommand) IsZero() bool {
	return c.LinearX == 0 && c.LinearY == 0 && c.AngularZ == 0
}
