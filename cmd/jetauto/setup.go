package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/jetauto/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Wheel speed used while identifying a base and checking directions.
const setupSpinSpeed = 2.0 // rad/s

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("JetAuto Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := robot.LoadConfigFrom(opts.Config)
	if err != nil {
		cfg = robot.DefaultConfig()
	}

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How should velocity commands reach the robot?").
				Options(
					huh.NewOption("rosbridge (ROS cmd_vel over websocket)", robot.ChannelRosbridge),
					huh.NewOption("servo (feetech wheel servos on a serial port)", robot.ChannelServo),
					huh.NewOption("stdout (JSON lines, dry run)", robot.ChannelStdout),
				).
				Value(&cfg.Channel),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	switch cfg.Channel {
	case robot.ChannelRosbridge:
		err = setupRosbridge(&cfg.Rosbridge)
	case robot.ChannelServo:
		err = setupBase(&cfg.Base)
	}
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := cfg.SaveTo(opts.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Try the pattern offline with: " + headerStyle.Render("jetauto simulate"))
	fmt.Println("Drive the robot with:         " + headerStyle.Render("jetauto run"))

	return nil
}

func setupRosbridge(rb *robot.RosbridgeConfig) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Rosbridge URL").
				Value(&rb.URL).
				Validate(func(s string) error {
					if !strings.HasPrefix(s, "ws://") && !strings.HasPrefix(s, "wss://") {
						return fmt.Errorf("expected a ws:// or wss:// URL")
					}
					return nil
				}),
			huh.NewInput().
				Title("cmd_vel topic").
				Value(&rb.Topic).
				Validate(func(s string) error {
					if !strings.HasPrefix(s, "/") {
						return fmt.Errorf("topic must start with /")
					}
					return nil
				}),
		),
	).Run()
}

func setupBase(bc *robot.BaseConfig) error {
	fmt.Println("Scanning for mecanum bases...")
	fmt.Println()

	bases := findBases()
	if len(bases) == 0 {
		return fmt.Errorf("no base found: expected four servos with IDs 1-4, check power and cabling")
	}

	port, err := pickBase(bases, confirmBase)
	if err != nil {
		return err
	}
	if port == "" {
		return fmt.Errorf("no base selected")
	}
	bc.Port = port
	if !bc.IsCalibrated() {
		bc.Calibration = robot.DefaultCalibration()
	}

	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Checking Wheel Directions ━━━"))
	fmt.Println()
	fmt.Println(dimStyle.Render("Lift the robot so the wheels spin freely."))
	if err := waitForUser(""); err != nil {
		return err
	}

	base, err := robot.NewBase(*bc)
	if err != nil {
		return err
	}
	defer base.Close()

	ctx := context.Background()
	if err := base.Enable(ctx); err != nil {
		return fmt.Errorf("enable base: %w", err)
	}

	cal := base.Calibration()
	for _, name := range robot.AllWheels() {
		if err := spinBriefly(ctx, base, name); err != nil {
			return err
		}

		forward := true
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Did the %s wheel roll forward?", name)).
					Affirmative("Yes").
					Negative("No, backward").
					Value(&forward),
			),
		).Run()
		if err != nil {
			return err
		}
		if !forward {
			wc := cal[name]
			wc.DriveMode ^= 1
			cal[name] = wc
		}
	}
	bc.Calibration = cal

	fmt.Println()
	fmt.Println("Wheel directions recorded.")
	return nil
}

func spinBriefly(ctx context.Context, base *robot.Base, name robot.WheelName) error {
	if err := base.SpinWheel(ctx, name, setupSpinSpeed); err != nil {
		return err
	}
	time.Sleep(time.Second)
	return base.SpinWheel(ctx, name, 0)
}

type baseInfo struct {
	port   string
	servos []feetech.FoundServo
	bus    *feetech.Bus
	closer io.Closer
}

func findBases() []baseInfo {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var bases []baseInfo

	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)

		bus, err := feetech.NewBus(feetech.BusConfig{
			Port:     port,
			BaudRate: 1_000_000,
			Protocol: feetech.ProtocolSTS,
			Timeout:  100 * time.Millisecond,
		})
		if err != nil {
			cancel()
			continue
		}

		servos, err := bus.Scan(ctx, 1, 4)
		cancel()

		if err != nil || !isMecanumBase(servos) {
			bus.Close()
			continue
		}

		fmt.Printf("  Found base on %s\n", port)
		bases = append(bases, baseInfo{port: port, servos: servos, bus: bus, closer: bus})
	}

	return bases
}

// isMecanumBase reports whether exactly the wheel IDs 1-4 answered.
func isMecanumBase(servos []feetech.FoundServo) bool {
	if len(servos) != 4 {
		return false
	}

	ids := make(map[int]bool)
	for _, s := range servos {
		ids[s.ID] = true
	}

	for i := 1; i <= 4; i++ {
		if !ids[i] {
			return false
		}
	}

	return true
}

// pickBase asks which candidate to use and closes every scanned bus before
// returning. A single candidate is used without asking.
func pickBase(bases []baseInfo, confirm func(baseInfo) (bool, error)) (string, error) {
	defer closeBases(bases)

	if len(bases) == 1 {
		return bases[0].port, nil
	}

	for _, b := range bases {
		use, err := confirm(b)
		if err != nil {
			return "", err
		}
		if use {
			return b.port, nil
		}
	}
	return "", nil
}

func closeBases(bases []baseInfo) {
	for _, b := range bases {
		if b.closer != nil {
			b.closer.Close()
		}
	}
}

// confirmBase turns wheel 1 of the base and asks whether to use it.
func confirmBase(b baseInfo) (bool, error) {
	spinIdentify(b)

	var use bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Use the base on %s?", b.port)).
				Description("The base whose wheel just turned").
				Affirmative("Use").
				Negative("Skip").
				Value(&use),
		),
	).Run()
	return use, err
}

func spinIdentify(b baseInfo) {
	ctx := context.Background()

	var servo *feetech.Servo
	for _, s := range b.servos {
		if s.ID == 1 {
			servo = feetech.NewServo(b.bus, s.ID, s.Model)
			break
		}
	}
	if servo == nil {
		return
	}

	fmt.Printf("\n  Turning a wheel on %s...\n", b.port)

	servo.Disable(ctx)
	if err := servo.SetOperatingMode(ctx, feetech.ModeVelocity); err != nil {
		fmt.Printf("  Error setting velocity mode: %v\n", err)
		return
	}
	if err := servo.Enable(ctx); err != nil {
		fmt.Printf("  Error enabling servo: %v\n", err)
		return
	}

	servo.SetVelocity(ctx, robot.StepsPerRevolution/4)
	time.Sleep(time.Second)
	servo.SetVelocity(ctx, 0)
	servo.Disable(ctx)
}

func waitForUser(prompt string) error {
	if prompt != "" {
		fmt.Println(prompt)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("").
				Affirmative("Continue").
				Negative("").
				Value(new(bool)),
		),
	).Run()
}
