// Package ros publishes velocity commands as geometry_msgs/Twist messages.
package ros

import (
	"github.com/gwillem/jetauto/pkg/motion"
)

// TwistType is the ROS message type of a velocity command.
const TwistType = "geometry_msgs/Twist"

// Vector3 mirrors geometry_msgs/Vector3.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Twist mirrors geometry_msgs/Twist.
type Twist struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

// TwistFrom converts a body-frame command into a Twist.
func TwistFrom(cmd motion.VelocityCommand) Twist {
	return Twist{
		Linear:  Vector3{X: cmd.LinearX, Y: cmd.LinearY},
		Angular: Vector3{Z: cmd.AngularZ},
	}
}

// Command converts a Twist back into a body-frame command. Components the
// base cannot follow are dropped.
func (t Twist) Command() motion.VelocityCommand {
	return motion.VelocityCommand{
		LinearX:  t.Linear.X,
		LinearY:  t.Linear.Y,
		AngularZ: t.Angular.Z,
	}
}
