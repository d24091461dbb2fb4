package robot

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// StepsPerRevolution is the encoder resolution of feetech STS servos.
const StepsPerRevolution = 4096

// DefaultMaxVelocity is the fastest wheel speed sent to a servo, in steps/s.
const DefaultMaxVelocity = 3000

// WheelCalibration holds calibration data for a single wheel servo.
type WheelCalibration struct {
	ID          int `json:"id"`
	DriveMode   int `json:"drive_mode"`   // 1 inverts the direction of rotation
	MaxVelocity int `json:"max_velocity"` // steps/s, 0 means DefaultMaxVelocity
}

// Calibration holds calibration data for all wheels, keyed by wheel name.
type Calibration map[WheelName]WheelCalibration

// DefaultCalibration maps wheels to servo IDs 1-4. Right-hand servos are
// mounted mirrored and run inverted.
func DefaultCalibration() Calibration {
	cal := make(Calibration, 4)
	for i, name := range AllWheels() {
		mode := 0
		if name == FrontRight || name == RearRight {
			mode = 1
		}
		cal[name] = WheelCalibration{ID: i + 1, DriveMode: mode, MaxVelocity: DefaultMaxVelocity}
	}
	return cal
}

// LoadCalibration loads calibration data from a JSON file.
func LoadCalibration(path string) (Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calibration file: %w", err)
	}

	// Parse into a map with string keys first
	var raw map[string]WheelCalibration
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse calibration JSON: %w", err)
	}

	// Convert to Calibration with WheelName keys
	cal := make(Calibration, len(raw))
	for name, wc := range raw {
		cal[WheelName(name)] = wc
	}

	return cal, nil
}

func (c WheelCalibration) maxVelocity() int {
	if c.MaxVelocity <= 0 {
		return DefaultMaxVelocity
	}
	return c.MaxVelocity
}

// steps converts rad/s to signed, unclamped servo steps/s.
func (c WheelCalibration) steps(radPerSec float64) float64 {
	steps := radPerSec * StepsPerRevolution / (2 * math.Pi)
	if c.DriveMode == 1 {
		steps = -steps
	}
	return steps
}

// ToServo converts a wheel speed in rad/s to a servo velocity in steps/s,
// applying the drive mode and clamping to MaxVelocity.
func (c WheelCalibration) ToServo(radPerSec float64) int {
	steps := c.steps(radPerSec)
	limit := float64(c.maxVelocity())
	steps = math.Max(-limit, math.Min(limit, steps))
	return int(math.Round(steps))
}

// FromServo converts a servo velocity in steps/s back to wheel rad/s.
func (c WheelCalibration) FromServo(steps int) float64 {
	rad := float64(steps) * 2 * math.Pi / StepsPerRevolution
	if c.DriveMode == 1 {
		rad = -rad
	}
	return rad
}

// ServoIDs returns the servo IDs for all wheels in the calibration.
func (c Calibration) ServoIDs() []int {
	ids := make([]int, 0, len(c))
	// Use AllWheels() to ensure consistent ordering
	for _, name := range AllWheels() {
		if wc, ok := c[name]; ok {
			ids = append(ids, wc.ID)
		}
	}
	return ids
}

// ByID returns wheel name and calibration for a given servo ID.
func (c Calibration) ByID(id int) (WheelName, WheelCalibration, bool) {
	for name, wc := range c {
		if wc.ID == id {
			return name, wc, true
		}
	}
	return "", WheelCalibration{}, false
}
