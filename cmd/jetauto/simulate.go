package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/gwillem/jetauto/pkg/motion"
	"github.com/gwillem/jetauto/pkg/sequencer"
	"github.com/gwillem/jetauto/pkg/sim"
)

type SimulateCommand struct {
	Plan string `long:"plan" description:"YAML plan file (default: built-in square pattern)"`
	Plot string `long:"plot" description:"Write the x/y path to an image file (.png, .svg, .pdf)"`
}

// simResult is one row of the simulation report.
type simResult struct {
	step     motion.Step
	duration float64
	pose     sim.Pose
}

// simulate runs seq against a kinematic integrator on a virtual clock.
func simulate(seq motion.Sequence, hz int, settle time.Duration) (*sim.Integrator, []simResult, sequencer.Stats, error) {
	if hz <= 0 {
		hz = sequencer.DefaultHz
	}
	integ := sim.NewIntegrator(hz, sim.Pose{})
	clock := sequencer.NewVirtualClock(time.Now())
	s := sequencer.New(integ, sequencer.Config{Hz: hz, Settle: settle, Clock: clock})

	if err := s.Run(context.Background(), seq); err != nil {
		return nil, nil, sequencer.Stats{}, err
	}

	waypoints := integ.Waypoints()
	results := make([]simResult, 0, len(seq))
	for i, step := range seq {
		results = append(results, simResult{step: step, duration: step.Segment.Duration(), pose: waypoints[i]})
	}
	return integ, results, s.Stats(), nil
}

func (c *SimulateCommand) Execute(args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := loadConfig(opts.Config, logger)
	if err != nil {
		return err
	}
	seq, err := loadSequence(c.Plan, cfg)
	if err != nil {
		return err
	}

	integ, results, stats, err := simulate(seq, cfg.Motion.Hz, cfg.Motion.Settle())
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("JetAuto Simulation"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━"))
	fmt.Println()
	fmt.Println(renderResults(results))
	fmt.Println()

	final := integ.Pose()
	fmt.Printf("Final pose: x=%.3f m  y=%.3f m  θ=%.1f°\n", final.X, final.Y, sim.NormalizeAngle(final.Theta)*180/math.Pi)
	fmt.Printf("Published %s commands (%d stops) over %.1f s of motion\n",
		humanize.Comma(int64(stats.Commands)), stats.Stops, seq.Duration())

	if c.Plot != "" {
		if err := sim.Plot(integ.Trace(), integ.Waypoints(), c.Plot); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Path written to " + c.Plot))
	}
	return nil
}

func renderResults(results []simResult) string {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)

	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", r.step.Loop),
			r.step.Name,
			fmt.Sprintf("%.2f s", r.duration),
			fmt.Sprintf("%.3f", r.pose.X),
			fmt.Sprintf("%.3f", r.pose.Y),
			fmt.Sprintf("%.1f°", sim.NormalizeAngle(r.pose.Theta)*180/math.Pi),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("#", "Loop", "Step", "Duration", "x (m)", "y (m)", "θ").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return cellStyle
		})

	return t.Render()
}
