package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Config   string          `short:"c" long:"config" default:"jetauto.json" description:"Configuration file"`
	Setup    SetupCommand    `command:"setup" description:"Detect the servo base or choose a bridge and save the configuration"`
	Run      RunCommand      `command:"run" description:"Drive the square-plus-rotation trajectory"`
	Simulate SimulateCommand `command:"simulate" alias:"sim" description:"Integrate the trajectory without a robot"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "JetAuto - open-loop trajectory runner for mecanum robot bases"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
