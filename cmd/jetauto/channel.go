package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gwillem/jetauto/pkg/motion"
	"github.com/gwillem/jetauto/pkg/robot"
	"github.com/gwillem/jetauto/pkg/ros"
	"github.com/gwillem/jetauto/pkg/sequencer"
)

// loadConfig reads the configuration file, falling back to defaults when it
// does not exist.
func loadConfig(path string, logger *slog.Logger) (*robot.Config, error) {
	cfg, err := robot.LoadConfigFrom(path)
	if err == nil {
		logger.Info("loaded configuration", slog.String("path", path))
		return cfg, nil
	}
	if os.IsNotExist(err) {
		logger.Info("no configuration file, using defaults", slog.String("path", path))
		return robot.DefaultConfig(), nil
	}
	return nil, fmt.Errorf("load %s: %w", path, err)
}

// loadSequence returns the plan's sequence, or the default square pattern
// when no plan is given.
func loadSequence(planPath string, cfg *robot.Config) (motion.Sequence, error) {
	if planPath == "" {
		seq := motion.DefaultSequence(cfg.Motion.LinearSpeed, cfg.Motion.AngularSpeed)
		return seq, seq.Validate()
	}
	plan, err := motion.LoadPlan(planPath)
	if err != nil {
		return nil, err
	}
	return plan.Sequence()
}

// openChannel connects the configured velocity command channel. The closer
// is nil for channels that hold no resources.
func openChannel(ctx context.Context, cfg *robot.Config, out io.Writer) (sequencer.Channel, io.Closer, error) {
	switch cfg.Channel {
	case robot.ChannelRosbridge, "":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rb, err := ros.DialRosbridge(dialCtx, cfg.Rosbridge.URL, cfg.Rosbridge.Topic)
		if err != nil {
			return nil, nil, err
		}
		return rb, rb, nil

	case robot.ChannelServo:
		if cfg.Base.Port == "" {
			return nil, nil, fmt.Errorf("servo base port not configured, run 'jetauto setup'")
		}
		base, err := robot.NewBase(cfg.Base)
		if err != nil {
			return nil, nil, err
		}
		if err := base.Enable(ctx); err != nil {
			base.Close()
			return nil, nil, fmt.Errorf("enable base: %w", err)
		}
		return base, base, nil

	case robot.ChannelStdout:
		return ros.NewStream(out, cfg.Rosbridge.Topic), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown channel %q", cfg.Channel)
	}
}
