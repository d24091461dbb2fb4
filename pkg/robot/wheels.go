// Package robot provides the JetAuto base: configuration, mecanum
// kinematics and a feetech servo drive.
package robot

// WheelName identifies a wheel on the base.
type WheelName string

// Wheel names for a four-wheel mecanum base.
const (
	FrontLeft  WheelName = "front_left"
	FrontRight WheelName = "front_right"
	RearLeft   WheelName = "rear_left"
	RearRight  WheelName = "rear_right"
)

// AllWheels returns all wheel names in order (matching servo IDs 1-4).
func AllWheels() []WheelName {
	return []WheelName{
		FrontLeft,
		FrontRight,
		RearLeft,
		RearRight,
	}
}
