package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/roarm/pkg/program"
	"github.com/gwillem/roarm/pkg/robot"
)

type Options struct {
	Config   string `short:"c" long:"config" default:"roarm.json" description:"Configuration file"`
	Address  string `short:"a" long:"address" env:"ROARM_ADDRESS" description:"Arm address (IP[:port] for http, device path for serial)"`
	LogFile  string `long:"log-file" env:"ROARM_LOG_FILE" description:"Write a JSON debug log to this file"`
	LogLevel string `long:"log-level" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Debug log level"`

	Run    RunCommand    `command:"run" description:"Run a sequence of steps on the arm"`
	Steps  StepsCommand  `command:"steps" alias:"ls" description:"List the steps of a program"`
	Joints JointsCommand `command:"joints" description:"Watch joint positions and record poses"`
	Setup  SetupCommand  `command:"setup" description:"Configure the arm connection"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "roarm - Step sequencer for RoArm robot arms"

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

// loadConfig reads the config file if present and applies global flags on
// top of it.
func loadConfig() (*robot.Config, error) {
	cfg := &robot.Config{}
	if robot.ConfigExists(opts.Config) {
		loaded, err := robot.LoadConfigFrom(opts.Config)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", opts.Config, err)
		}
		cfg = loaded
	}

	if opts.Address != "" {
		cfg.Address = opts.Address
	}
	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	return cfg, nil
}

func loadProgram(path string) (*program.Program, error) {
	if path == "" {
		return program.Default()
	}
	return program.Load(path)
}
