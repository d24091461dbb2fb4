package robot

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gwillem/jetauto/pkg/motion"
)

const DefaultConfigFile = "jetauto.json"

// Channel kinds.
const (
	ChannelRosbridge = "rosbridge"
	ChannelServo     = "servo"
	ChannelStdout    = "stdout"
)

// Defaults for a JetAuto base.
const (
	DefaultRosbridgeURL  = "ws://localhost:9090"
	DefaultTopic         = "/jetauto_controller/cmd_vel"
	DefaultWheelRadius   = 0.0485 // m
	DefaultHalfWheelbase = 0.0975 // m
	DefaultHalfTrack     = 0.1    // m
)

// Config holds the robot configuration
type Config struct {
	Channel   string          `json:"channel"`
	Rosbridge RosbridgeConfig `json:"rosbridge"`
	Base      BaseConfig      `json:"base"`
	Motion    MotionConfig    `json:"motion"`
}

// RosbridgeConfig holds the websocket bridge endpoint
type RosbridgeConfig struct {
	URL   string `json:"url"`
	Topic string `json:"topic"`
}

// BaseConfig holds configuration for the servo-driven base
type BaseConfig struct {
	Port          string      `json:"port"`
	WheelRadius   float64     `json:"wheel_radius"`
	HalfWheelbase float64     `json:"half_wheelbase"`
	HalfTrack     float64     `json:"half_track"`
	Calibration   Calibration `json:"calibration,omitempty"`
}

// MotionConfig holds the sequencer constants
type MotionConfig struct {
	LinearSpeed   float64 `json:"linear_speed"`
	AngularSpeed  float64 `json:"angular_speed"`
	Hz            int     `json:"hz"`
	SettleSeconds float64 `json:"settle_seconds"`
}

// IsCalibrated returns true if the base has calibration data
func (b *BaseConfig) IsCalibrated() bool {
	return len(b.Calibration) > 0
}

// Settle returns the pause after each stop.
func (m MotionConfig) Settle() time.Duration {
	return time.Duration(m.SettleSeconds * float64(time.Second))
}

// DefaultConfig returns a configuration publishing to a local rosbridge
func DefaultConfig() *Config {
	return &Config{
		Channel: ChannelRosbridge,
		Rosbridge: RosbridgeConfig{
			URL:   DefaultRosbridgeURL,
			Topic: DefaultTopic,
		},
		Base: BaseConfig{
			WheelRadius:   DefaultWheelRadius,
			HalfWheelbase: DefaultHalfWheelbase,
			HalfTrack:     DefaultHalfTrack,
		},
		Motion: MotionConfig{
			LinearSpeed:   motion.DefaultLinearSpeed,
			AngularSpeed:  motion.DefaultAngularSpeed,
			Hz:            50,
			SettleSeconds: 1.0,
		},
	}
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file. Fields missing
// from the file keep their defaults.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
