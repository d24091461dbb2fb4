// Package jetauto drives a mecanum robot base through a fixed, open-loop
// square-plus-rotation trajectory.
//
// Velocity commands are published at a fixed rate for the duration of each
// segment, followed by an explicit stop and a settle pause. Commands can go
// to ROS over rosbridge, straight to feetech wheel servos, or to stdout.
//
// # Installation
//
//	go install github.com/gwillem/jetauto/cmd/jetauto@latest
//
// # Usage
//
// Choose a command channel and, for a servo base, detect the port and check
// wheel directions:
//
//	jetauto setup
//
// Preview the path without a robot:
//
//	jetauto simulate --plot path.png
//
// Then drive the pattern:
//
//	jetauto run
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/jetauto: CLI with setup, run and simulate commands
//   - pkg/motion: Velocity commands, segments, sequences and YAML plans
//   - pkg/sequencer: Fixed-rate command sequencer and clocks
//   - pkg/robot: Mecanum kinematics, wheel servos and configuration
//   - pkg/ros: Twist messages over rosbridge and JSON lines
//   - pkg/sim: Kinematic integration and path plots
package jetauto
