package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/roarm/pkg/monitor"
	"github.com/gwillem/roarm/pkg/robot"
	"github.com/gwillem/roarm/pkg/sequence"
)

type JointsCommand struct {
	Hz    float64 `long:"hz" default:"2" description:"Polling frequency"`
	Delay float64 `long:"delay" default:"1" description:"Delay in seconds written into recorded moves"`
	Once  bool    `long:"once" description:"Read the pose once and print it"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

var jointColors = map[robot.JointName]string{
	robot.Base:     "196", // red
	robot.Shoulder: "208", // orange
	robot.Elbow:    "226", // yellow
	robot.Wrist:    "46",  // green
	robot.Roll:     "51",  // cyan
	robot.Hand:     "201", // magenta
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type jointsModel struct {
	ctrl     *monitor.Controller
	chart    *streamlinechart.Model
	delay    float64
	width    int
	height   int
	logs     []string
	recorded []string // move lines captured with enter
	quitting bool
	last     *robot.Feedback
}

func (m *jointsModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

type stateMsg monitor.State
type logMsg string

func waitForState(ctrl *monitor.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *monitor.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

func (m *jointsModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20
	}
	width = max(m.width-borderSize-2, 40)
	height = max(m.height-headerHeight-legendHeight-footerHeight-borderSize, 10)
	return width, height
}

func newJointsModel(ctrl *monitor.Controller, delay float64) jointsModel {
	// radians; the gripper opens to a little over pi
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-3.5, 3.5),
	)
	for _, name := range robot.AllJoints() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[name]))
		chart.SetDataSetStyles(string(name), runes.ThinLineStyle, style)
	}

	return jointsModel{
		ctrl:  ctrl,
		chart: &chart,
		delay: delay,
	}
}

func (m jointsModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
	)
}

func (m jointsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "enter", " ":
			m.record()
		}

	case stateMsg:
		state := monitor.State(msg)
		if state.Error == nil {
			for name, v := range state.Feedback.Pose.Joints() {
				m.chart.PushDataSet(string(name), v)
			}
			m.chart.DrawAll()
			fb := state.Feedback
			m.last = &fb
		}
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m *jointsModel) record() {
	if m.last == nil {
		m.addLog("No pose yet, nothing recorded")
		return
	}
	line := m.last.MoveLine(m.delay)
	m.recorded = append(m.recorded, line)
	m.addLog(fmt.Sprintf("#%d %s", len(m.recorded), line))
}

func (m jointsModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("RoArm Joints"))
	sb.WriteString(fmt.Sprintf(" - every %s", m.ctrl.Interval()))
	sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%d recorded]", len(m.recorded))))
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(renderLegend(m.last))
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20))

	logLines := statusStyle.Render("Press enter to record the pose, 'q' to quit")
	if len(m.logs) > 0 {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend(fb *robot.Feedback) string {
	var joints map[robot.JointName]float64
	if fb != nil {
		joints = fb.Pose.Joints()
	}

	var items []string
	for _, name := range robot.AllJoints() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[name])).Bold(true)
		item := colorStyle.Render("━━") + " " + string(name)
		if joints != nil {
			item += fmt.Sprintf(" %.3f", joints[name])
		}
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func (c *JointsCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if cfg.Address == "" {
		return errors.New("no arm address: pass --address or run 'roarm setup' first")
	}

	transport, err := robot.NewTransport(cfg.Transport, cfg.BaudRate)
	if err != nil {
		return err
	}
	dispatcher := sequence.NewDispatcher(transport, cfg.Timeout())
	defer dispatcher.Close()

	ctrl, err := monitor.NewController(monitor.Config{
		Address: cfg.Address,
		Querier: dispatcher,
		Hz:      c.Hz,
	})
	if err != nil {
		return fmt.Errorf("create monitor: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if c.Once {
		state := ctrl.Poll(ctx)
		if state.Error != nil {
			return state.Error
		}
		printPose(state.Feedback, c.Delay)
		return nil
	}

	go func() {
		_ = ctrl.Start(ctx)
	}()

	final, err := tea.NewProgram(newJointsModel(ctrl, c.Delay), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("run joints view: %w", err)
	}

	if m, ok := final.(jointsModel); ok && len(m.recorded) > 0 {
		fmt.Println(headerStyle.Render("Recorded moves"))
		for _, line := range m.recorded {
			fmt.Println(line)
		}
	}
	return nil
}

func printPose(fb robot.Feedback, delay float64) {
	for _, name := range robot.AllJoints() {
		fmt.Printf("%-9s %8.4f\n", name, fb.Pose.Joints()[name])
	}
	fmt.Println()
	fmt.Println(fb.MoveLine(delay))
	if p, err := robot.CartesianPayload(fb.Cartesian); err == nil {
		fmt.Println(dimStyle.Render(p.String()))
	}
}
