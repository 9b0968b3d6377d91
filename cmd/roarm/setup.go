package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/gwillem/roarm/pkg/robot"
	"github.com/gwillem/roarm/pkg/sequence"
)

type SetupCommand struct {
	NoCheck bool `long:"no-check" description:"Save without contacting the arm"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("RoArm Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.ApplyDefaults()

	transport := cfg.Transport
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How is the arm connected?").
				Options(
					huh.NewOption("Wi-Fi (HTTP)", robot.TransportHTTP),
					huh.NewOption("USB serial", robot.TransportSerial),
				).
				Value(&transport),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	cfg.Transport = transport

	address := cfg.Address
	if transport == robot.TransportSerial {
		address, err = askPort(address)
	} else {
		address, err = askHost(address)
	}
	if err != nil {
		return err
	}
	cfg.Address = address

	timeout := strconv.Itoa(int(cfg.Timeout().Milliseconds()))
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Request timeout (ms)").
				Description("How long to wait for the arm to acknowledge a command").
				Value(&timeout).
				Validate(validateTimeout),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	cfg.TimeoutMS, _ = strconv.Atoi(strings.TrimSpace(timeout))

	if !c.NoCheck {
		checkArm(cfg)
	}

	if err := cfg.SaveTo(opts.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Run the default sequence with: " + headerStyle.Render("roarm run"))
	return nil
}

func askHost(current string) (string, error) {
	address := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Arm address").
				Description("IP address or host name, optionally with :port").
				Placeholder("192.168.4.1").
				Value(&address).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("address is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("setup cancelled: %w", err)
	}
	return strings.TrimSpace(address), nil
}

func askPort(current string) (string, error) {
	ports, err := robot.ListSerialPorts()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", errors.New("no serial ports found; is the arm plugged in?")
	}

	port := current
	options := make([]huh.Option[string], 0, len(ports))
	for _, p := range ports {
		options = append(options, huh.NewOption(p, p))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which port is the arm on?").
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("setup cancelled: %w", err)
	}
	return port, nil
}

func validateTimeout(s string) error {
	ms, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || ms <= 0 {
		return errors.New("enter a positive number of milliseconds")
	}
	return nil
}

// checkArm asks the arm for feedback and reports what came back. A failed
// check does not stop setup.
func checkArm(cfg *robot.Config) {
	fmt.Printf("Contacting arm at %s...\n", cfg.Address)

	transport, err := robot.NewTransport(cfg.Transport, cfg.BaudRate)
	if err != nil {
		fmt.Println(warnStyle.Render("⚠ " + err.Error()))
		return
	}
	dispatcher := sequence.NewDispatcher(transport, cfg.Timeout())
	defer dispatcher.Close()

	raw, err := dispatcher.Query(context.Background(), cfg.Address, robot.FeedbackPayload())
	if err != nil {
		fmt.Println(warnStyle.Render("⚠ Arm did not answer: " + err.Error()))
		return
	}
	fb, err := robot.ParseFeedback(raw)
	if err != nil {
		fmt.Println(warnStyle.Render("⚠ Unexpected answer: " + strings.TrimSpace(raw)))
		return
	}
	fmt.Println(successStyle.Render("✓ Arm answered"))
	fmt.Println(dimStyle.Render(fb.MoveLine(0)))
}
