// Package program loads step libraries from YAML: named poses, fixed
// command steps, operator steps, selection branches and a default
// sequence.
package program

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gwillem/roarm/pkg/robot"
	"github.com/gwillem/roarm/pkg/sequence"
)

//go:embed default.yaml
var defaultProgram []byte

// Step types.
const (
	TypeFixed  = "fixed"
	TypeWait   = "wait"
	TypeSelect = "select"
)

// Program is a step library as written in a program file.
type Program struct {
	Name     string               `yaml:"name"`
	Defaults Defaults             `yaml:"defaults"`
	Poses    map[string][]float64 `yaml:"poses"`
	Steps    map[string]StepSpec  `yaml:"steps"`
	Branches map[string]string    `yaml:"branches"` // selection key -> step name
	Sequence []string             `yaml:"sequence"`

	// compiled moves per fixed step, filled by Validate
	moves map[string][]sequence.Move
}

// Defaults apply to every move that does not set its own values.
type Defaults struct {
	Speed   *int    `yaml:"speed"`
	Acc     *int    `yaml:"acc"`
	Timeout float64 `yaml:"timeout"` // seconds
}

// StepSpec describes one step.
type StepSpec struct {
	Type    string            `yaml:"type"`
	Title   string            `yaml:"title"`
	Speed   *int              `yaml:"speed"`
	Acc     *int              `yaml:"acc"`
	Timeout float64           `yaml:"timeout"` // seconds
	Moves   []MoveSpec        `yaml:"moves"`
	Choices map[string]string `yaml:"choices"` // key -> label
}

// MoveSpec is one command of a fixed step. Exactly one of Pose, Joints or
// Command is set.
type MoveSpec struct {
	Pose    string    `yaml:"pose"`
	Joints  []float64 `yaml:"joints"`
	Command string    `yaml:"command"`
	Speed   *int      `yaml:"speed"`
	Acc     *int      `yaml:"acc"`
	Delay   float64   `yaml:"delay"` // seconds
}

// Default returns the built-in program.
func Default() (*Program, error) {
	p, err := Parse(defaultProgram)
	if err != nil {
		return nil, fmt.Errorf("built-in program: %w", err)
	}
	return p, nil
}

// Load reads and validates a program file.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a program.
func Parse(data []byte) (*Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse program YAML: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the program and compiles the moves of fixed steps into
// payloads. Sequence entries are not checked: unknown names are skipped at
// run time.
func (p *Program) Validate() error {
	var errs []error
	p.moves = make(map[string][]sequence.Move)

	for _, name := range sortedKeys(p.Steps) {
		spec := p.Steps[name]
		switch spec.Type {
		case "", TypeFixed:
			moves, err := p.compile(spec)
			if err != nil {
				errs = append(errs, fmt.Errorf("step %s: %w", name, err))
				continue
			}
			p.moves[name] = moves
		case TypeWait:
		case TypeSelect:
			if len(spec.Choices) == 0 {
				errs = append(errs, fmt.Errorf("step %s: select step has no choices", name))
			}
			for _, key := range sortedKeys(spec.Choices) {
				switch key {
				case "", sequence.SkipToken, sequence.AbortToken:
					errs = append(errs, fmt.Errorf("step %s: choice key %q is reserved", name, key))
					continue
				}
				if _, ok := p.Branches[key]; !ok {
					errs = append(errs, fmt.Errorf("step %s: choice %q has no branch", name, key))
				}
			}
		default:
			errs = append(errs, fmt.Errorf("step %s: unknown type %q", name, spec.Type))
		}
	}

	for _, key := range sortedKeys(p.Branches) {
		target := p.Branches[key]
		if _, ok := p.Steps[target]; !ok {
			errs = append(errs, fmt.Errorf("branch %q: unknown step %q", key, target))
		}
	}

	return errors.Join(errs...)
}

func (p *Program) compile(spec StepSpec) ([]sequence.Move, error) {
	if len(spec.Moves) == 0 {
		return nil, errors.New("fixed step has no moves")
	}

	moves := make([]sequence.Move, 0, len(spec.Moves))
	for i, m := range spec.Moves {
		payload, err := p.payload(spec, m)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		if m.Delay < 0 {
			return nil, fmt.Errorf("move %d: negative delay %v", i+1, m.Delay)
		}
		moves = append(moves, sequence.Move{Payload: payload, Delay: seconds(m.Delay)})
	}
	return moves, nil
}

func (p *Program) payload(spec StepSpec, m MoveSpec) (robot.Payload, error) {
	set := 0
	for _, ok := range []bool{m.Pose != "", m.Joints != nil, m.Command != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return "", errors.New("move needs exactly one of pose, joints or command")
	}

	if m.Command != "" {
		return robot.RawPayload(m.Command), nil
	}

	joints := m.Joints
	if m.Pose != "" {
		var ok bool
		if joints, ok = p.Poses[m.Pose]; !ok {
			return "", fmt.Errorf("unknown pose %q", m.Pose)
		}
	}

	speed := firstSet(robot.DefaultSpeed, m.Speed, spec.Speed, p.Defaults.Speed)
	acc := firstSet(robot.DefaultAcc, m.Acc, spec.Acc, p.Defaults.Acc)
	pose, err := robot.PoseFromJoints(joints, speed, acc)
	if err != nil {
		return "", err
	}
	return robot.JointsPayload(pose)
}

// Registry builds the step registry. Operator steps read answers from
// prompt.
func (p *Program) Registry(prompt sequence.Prompter) (*sequence.Registry, error) {
	if p.moves == nil {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	factories := make(map[string]sequence.Factory, len(p.Steps))
	for name, spec := range p.Steps {
		title := spec.Title
		if title == "" {
			title = name
		}

		switch spec.Type {
		case TypeWait:
			factories[name] = func() sequence.Step {
				return sequence.NewWaitStep(title, prompt)
			}
		case TypeSelect:
			choices := make([]sequence.Choice, 0, len(spec.Choices))
			for key, label := range spec.Choices {
				choices = append(choices, sequence.Choice{Key: key, Label: label})
			}
			factories[name] = func() sequence.Step {
				return sequence.NewSelectStep(title, choices, prompt)
			}
		default:
			moves := p.moves[name]
			timeout := seconds(firstPositive(spec.Timeout, p.Defaults.Timeout))
			factories[name] = func() sequence.Step {
				step := sequence.NewFixedStep(title, append([]sequence.Move(nil), moves...)...)
				step.Timeout = timeout
				return step
			}
		}
	}
	return sequence.NewRegistry(factories), nil
}

// StepInfo summarises one step for listings.
type StepInfo struct {
	Name  string
	Type  string
	Title string
	Moves int
}

// Describe lists the steps sorted by name.
func (p *Program) Describe() []StepInfo {
	infos := make([]StepInfo, 0, len(p.Steps))
	for _, name := range sortedKeys(p.Steps) {
		spec := p.Steps[name]
		kind := spec.Type
		if kind == "" {
			kind = TypeFixed
		}
		infos = append(infos, StepInfo{
			Name:  name,
			Type:  kind,
			Title: spec.Title,
			Moves: len(spec.Moves),
		})
	}
	return infos
}

func firstSet(fallback int, values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return fallback
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
