package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/gwillem/roarm/pkg/logging"
	"github.com/gwillem/roarm/pkg/robot"
	"github.com/gwillem/roarm/pkg/sequence"
)

type RunCommand struct {
	Program   string `short:"p" long:"program" description:"Program file (default: built-in program)"`
	Timeout   int    `short:"t" long:"timeout" description:"Request timeout in milliseconds"`
	Transport string `long:"transport" choice:"http" choice:"serial" description:"How to reach the arm"`
	Baud      int    `long:"baud" description:"Serial baud rate"`

	Args struct {
		Steps []string `positional-arg-name:"step" description:"Steps to run (default: the program's sequence)"`
	} `positional-args:"yes"`
}

func (c *RunCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if c.Timeout > 0 {
		cfg.TimeoutMS = c.Timeout
	}
	if c.Transport != "" {
		cfg.Transport = c.Transport
	}
	if c.Baud > 0 {
		cfg.BaudRate = c.Baud
	}
	if c.Program != "" {
		cfg.Program = c.Program
	}
	cfg.ApplyDefaults()

	if cfg.Address == "" {
		return errors.New("no arm address: pass --address or run 'roarm setup' first")
	}

	prog, err := loadProgram(cfg.Program)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Close()
	logger = logger.WithRun(uuid.NewString()).With("transport", cfg.Transport)

	registry, err := prog.Registry(sequence.NewConsole(os.Stdin, os.Stdout))
	if err != nil {
		return err
	}

	names := c.Args.Steps
	if len(names) == 0 {
		names = prog.Sequence
	}
	seq, unknown := registry.Build(names)
	for _, name := range unknown {
		fmt.Println(warnStyle.Render(fmt.Sprintf("⚠ Unknown step '%s', skipping", name)))
		logger.Warn("unknown step skipped", "step", name)
	}

	transport, err := robot.NewTransport(cfg.Transport, cfg.BaudRate)
	if err != nil {
		return err
	}

	console := newConsoleObserver(os.Stdout)
	dispatcher := sequence.NewDispatcher(transport, cfg.Timeout(),
		sequence.WithDispatchObserver(console),
		sequence.WithDispatchLogger(logger),
	)
	defer dispatcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := sequence.NewRunner(sequence.RunnerConfig{
		Address:  cfg.Address,
		Sender:   dispatcher,
		Registry: registry,
		Branches: prog.Branches,
		Observer: console,
		Logger:   logger,
	})

	res := runner.Run(ctx, seq)
	if res.State == sequence.Failed {
		return fmt.Errorf("run failed at step %d (%s): %w", res.Index+1, res.Step, res.Err)
	}
	return nil
}
