package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/gwillem/jetauto/pkg/motion"
	"github.com/gwillem/jetauto/pkg/robot"
	"github.com/gwillem/jetauto/pkg/sequencer"
)

type RunCommand struct {
	Plan     string `long:"plan" description:"YAML plan file (default: built-in square pattern)"`
	Channel  string `long:"channel" choice:"rosbridge" choice:"servo" choice:"stdout" description:"Override the configured command channel"`
	Headless bool   `long:"headless" description:"Log to stderr instead of showing the dashboard"`
	Yes      bool   `short:"y" long:"yes" description:"Start without waiting for Enter"`
}

func (c *RunCommand) Execute(args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := loadConfig(opts.Config, logger)
	if err != nil {
		return err
	}
	if c.Channel != "" {
		cfg.Channel = c.Channel
	}

	seq, err := loadSequence(c.Plan, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ch, closer, err := openChannel(ctx, cfg, os.Stdout)
	if err != nil {
		return fmt.Errorf("open %s channel: %w", cfg.Channel, err)
	}
	logger.Info("channel open", slog.String("channel", cfg.Channel))
	if closer != nil {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("close channel", slog.String("error", err.Error()))
			}
		}()
	}

	fmt.Fprintf(os.Stderr, "Ready to start: %d steps, %.1f s of motion.\n", len(seq), seq.Duration())
	if !c.Yes {
		if err := waitForEnter(os.Stdin, "Press Enter to begin..."); err != nil {
			if errors.Is(err, errAborted) {
				return nil
			}
			return err
		}
	}

	s := sequencer.New(ch, sequencer.Config{
		Hz:     cfg.Motion.Hz,
		Settle: cfg.Motion.Settle(),
	})

	// The stdout channel owns standard output, so it cannot share it with
	// the dashboard.
	headless := c.Headless || cfg.Channel == robot.ChannelStdout || !isatty.IsTerminal(os.Stdout.Fd())
	if headless {
		err = runHeadless(ctx, s, seq, logger)
	} else {
		err = runDashboard(ctx, s, seq)
	}

	stats := s.Stats()
	logger.Info("run finished",
		slog.String("run", s.RunID()),
		slog.String("commands", humanize.Comma(int64(stats.Commands))),
		slog.Int("stops", stats.Stops),
		slog.Int("steps", stats.Steps),
	)

	// Interrupts end the process quietly.
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runHeadless runs the sequence and forwards sequencer logs to slog.
func runHeadless(ctx context.Context, s *sequencer.Sequencer, seq motion.Sequence, logger *slog.Logger) error {
	done := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case msg := <-s.Logs():
				logSequencerLine(logger, msg)
			case <-done:
				for len(s.Logs()) > 0 {
					logSequencerLine(logger, <-s.Logs())
				}
				return
			}
		}
	}()

	err := s.Run(ctx, seq)
	close(done)
	<-drained
	return err
}

// logSequencerLine strips the "[15:04:05] " prefix slog already provides.
func logSequencerLine(logger *slog.Logger, msg string) {
	if i := strings.Index(msg, "] "); strings.HasPrefix(msg, "[") && i > 0 {
		msg = msg[i+2:]
	}
	if strings.HasPrefix(msg, "Warning:") {
		logger.Warn(strings.TrimSpace(strings.TrimPrefix(msg, "Warning:")))
		return
	}
	logger.Info(msg)
}
