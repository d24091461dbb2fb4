package robot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/gwillem/jetauto/pkg/motion"
)

// velocityServo is the part of a feetech servo the drive loop needs.
type velocityServo interface {
	SetVelocity(ctx context.Context, velocity int) error
}

// Base drives a mecanum base through four feetech servos in velocity mode.
// It implements the sequencer's Channel.
type Base struct {
	bus         *feetech.Bus
	servos      map[WheelName]*feetech.Servo
	drives      map[WheelName]velocityServo
	calibration Calibration
	kinematics  *Mecanum
}

// NewBase opens the servo bus and creates the wheel servos.
func NewBase(cfg BaseConfig) (*Base, error) {
	cal := cfg.Calibration
	if !cfg.IsCalibrated() {
		cal = DefaultCalibration()
	}

	kin, err := NewMecanum(cfg.WheelRadius, cfg.HalfWheelbase, cfg.HalfTrack)
	if err != nil {
		return nil, err
	}

	// Open serial bus
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	servos := make(map[WheelName]*feetech.Servo, len(cal))
	drives := make(map[WheelName]velocityServo, len(cal))
	for name, wc := range cal {
		s := feetech.NewServo(bus, wc.ID, nil)
		servos[name] = s
		drives[name] = s
	}

	return &Base{
		bus:         bus,
		servos:      servos,
		drives:      drives,
		calibration: cal,
		kinematics:  kin,
	}, nil
}

// Enable switches every wheel servo to velocity mode and enables torque.
func (b *Base) Enable(ctx context.Context) error {
	for _, name := range AllWheels() {
		s, ok := b.servos[name]
		if !ok {
			continue
		}
		// Torque must be off to change mode
		if err := s.Disable(ctx); err != nil {
			return fmt.Errorf("disable %s: %w", name, err)
		}
		if err := s.SetOperatingMode(ctx, feetech.ModeVelocity); err != nil {
			return fmt.Errorf("velocity mode %s: %w", name, err)
		}
		if err := s.Enable(ctx); err != nil {
			return fmt.Errorf("enable %s: %w", name, err)
		}
	}
	return nil
}

// Publish converts a body velocity into wheel velocities and writes them.
// When a wheel would exceed its limit, all wheels slow down by the same
// factor so the base keeps the commanded direction and turn ratio.
func (b *Base) Publish(ctx context.Context, cmd motion.VelocityCommand) error {
	speeds := b.kinematics.WheelSpeeds(cmd)
	scale := b.saturationScale(speeds)
	for _, name := range AllWheels() {
		drive, ok := b.drives[name]
		if !ok {
			continue
		}
		v := b.calibration[name].ToServo(speeds[name] * scale)
		if err := drive.SetVelocity(ctx, v); err != nil {
			return fmt.Errorf("write %s velocity: %w", name, err)
		}
	}
	return nil
}

// saturationScale returns the factor that brings the fastest wheel within its
// limit, or 1 when every wheel already is.
func (b *Base) saturationScale(speeds map[WheelName]float64) float64 {
	scale := 1.0
	for name, rad := range speeds {
		wc, ok := b.calibration[name]
		if !ok {
			continue
		}
		steps := math.Abs(wc.steps(rad))
		if limit := float64(wc.maxVelocity()); steps > limit {
			scale = math.Min(scale, limit/steps)
		}
	}
	return scale
}

// Close stops the wheels, disables torque and closes the bus.
func (b *Base) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var errs []error
	if err := b.Publish(ctx, motion.Stop()); err != nil {
		errs = append(errs, err)
	}
	for name, s := range b.servos {
		if err := s.Disable(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disable %s: %w", name, err))
		}
	}
	if b.bus != nil {
		if err := b.bus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SpinWheel drives a single wheel at radPerSec, leaving the others alone.
func (b *Base) SpinWheel(ctx context.Context, name WheelName, radPerSec float64) error {
	drive, ok := b.drives[name]
	if !ok {
		return fmt.Errorf("no servo for wheel %s", name)
	}
	return drive.SetVelocity(ctx, b.calibration[name].ToServo(radPerSec))
}

// Calibration returns the wheel calibration in use.
func (b *Base) Calibration() Calibration {
	return b.calibration
}
