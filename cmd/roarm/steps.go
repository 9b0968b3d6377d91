package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/roarm/pkg/program"
)

type StepsCommand struct {
	Program string `short:"p" long:"program" description:"Program file (default: built-in program)"`
}

func (c *StepsCommand) Execute(args []string) error {
	path := c.Program
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Program
	}

	prog, err := loadProgram(path)
	if err != nil {
		return err
	}

	name := prog.Name
	if name == "" {
		name = "program"
	}
	fmt.Println(headerStyle.Render(name))
	fmt.Println()
	fmt.Println(renderSteps(prog))
	fmt.Println()
	fmt.Println("Sequence: " + strings.Join(prog.Sequence, " → "))
	if len(prog.Branches) > 0 {
		fmt.Println("Branches:")
		keys := make([]string, 0, len(prog.Branches))
		for k := range prog.Branches {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Printf("  %s → %s\n", k, prog.Branches[k])
		}
	}
	return nil
}

func renderSteps(prog *program.Program) string {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableNameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableOperatorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)

	infos := prog.Describe()
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		moves := fmt.Sprintf("%d", info.Moves)
		if info.Type != program.TypeFixed {
			moves = "-"
		}
		rows = append(rows, []string{info.Name, info.Type, moves, info.Title})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Step", "Type", "Moves", "Title").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableNameStyle
			case 1:
				if row >= 0 && row < len(infos) && infos[row].Type != program.TypeFixed {
					return tableOperatorStyle
				}
				return tableCellStyle
			default:
				return tableCellStyle
			}
		})
	return t.Render()
}
