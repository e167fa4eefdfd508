package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/world-engine/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

// ConsoleUI is the BubbleTea model that runs the explorer.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config    *ConsoleConfig
	client    *http.Client
	gameState *state.GameState

	view    *LookResponse
	width   int
	height  int
	loading bool
	status  string
	err     error

	showQuitModal bool
}

type lookMsg struct {
	resp *LookResponse
	err  error
}

type moveMsg struct {
	direction string
	resp      *MoveResponse
	err       error
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	regionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

	descriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("86")) // green

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	exitKnownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	exitUnknownStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// moveKeys maps single keys to travel directions.
var moveKeys = map[string]string{
	"n": "north",
	"s": "south",
	"e": "east",
	"w": "west",
	"u": "up",
	"d": "down",
}

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, gs *state.GameState) ConsoleUI {
	return ConsoleUI{
		config:    cfg,
		client:    client,
		gameState: gs,
		loading:   true,
		status:    "Entering the world...",
	}
}

func (ui ConsoleUI) Init() tea.Cmd {
	return ui.lookCmd()
}

func (ui ConsoleUI) lookCmd() tea.Cmd {
	return func() tea.Msg {
		resp, err := look(ui.client, ui.config.APIBaseURL, ui.gameState)
		return lookMsg{resp: resp, err: err}
	}
}

func (ui ConsoleUI) moveCmd(direction string) tea.Cmd {
	return func() tea.Msg {
		resp, err := move(ui.client, ui.config.APIBaseURL, ui.gameState, direction)
		return moveMsg{direction: direction, resp: resp, err: err}
	}
}

func (ui ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		return ui, nil

	case lookMsg:
		ui.loading = false
		if msg.err != nil {
			ui.err = msg.err
			ui.status = ""
			return ui, nil
		}
		ui.err = nil
		ui.view = msg.resp
		ui.status = ""
		return ui, nil

	case moveMsg:
		if msg.err != nil {
			ui.loading = false
			ui.err = msg.err
			ui.status = ""
			return ui, nil
		}
		if !msg.resp.Success {
			ui.loading = false
			ui.err = nil
			ui.status = fmt.Sprintf("You cannot go %s right now.", msg.direction)
			return ui, nil
		}
		// refresh surroundings for the new position
		ui.status = ""
		return ui, ui.lookCmd()

	case tea.KeyMsg:
		return ui.handleKey(msg)
	}

	return ui, nil
}

func (ui ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if ui.showQuitModal {
		switch key {
		case "y", "enter":
			return ui, tea.Quit
		default:
			ui.showQuitModal = false
			return ui, nil
		}
	}

	switch key {
	case "ctrl+c", "q", "esc":
		ui.showQuitModal = true
		return ui, nil

	case "r":
		if ui.loading {
			return ui, nil
		}
		ui.loading = true
		ui.status = "Looking around..."
		return ui, ui.lookCmd()
	}

	if direction, ok := moveKeys[key]; ok {
		if ui.loading {
			return ui, nil
		}
		ui.loading = true
		ui.status = fmt.Sprintf("Heading %s...", direction)
		return ui, ui.moveCmd(direction)
	}

	return ui, nil
}

func (ui ConsoleUI) View() string {
	if ui.showQuitModal {
		return modalStyle.Render("Leave the world? (y/n)")
	}

	var b strings.Builder

	if ui.view != nil && ui.view.Area != nil {
		area := ui.view.Area

		b.WriteString(titleStyle.Render(area.Name))
		b.WriteString("  ")
		b.WriteString(regionStyle.Render(area.Region))
		b.WriteString("\n\n")

		width := ui.width - 4
		if width < 20 {
			width = 76
		}
		b.WriteString(descriptionStyle.Render(wordwrap.String(area.Description, width)))
		b.WriteString("\n\n")

		if len(area.Items) > 0 {
			b.WriteString(detailStyle.Render("Items: " + strings.Join(area.Items, ", ")))
			b.WriteString("\n")
		}
		if len(area.NPCs) > 0 {
			b.WriteString(detailStyle.Render("Figures: " + strings.Join(area.NPCs, ", ")))
			b.WriteString("\n")
		}
		b.WriteString(detailStyle.Render(fmt.Sprintf("Danger: %d/10", area.DangerLevel)))
		b.WriteString("\n\n")

		b.WriteString(ui.renderExits())
		b.WriteString("\n")
	}

	if ui.loading {
		b.WriteString(loadingStyle.Render(ui.status))
		b.WriteString("\n")
	} else if ui.status != "" {
		b.WriteString(loadingStyle.Render(ui.status))
		b.WriteString("\n")
	}
	if ui.err != nil {
		b.WriteString(errorStyle.Render("Error: " + ui.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("n/s/e/w/u/d move · r look · q quit"))

	return b.String()
}

func (ui ConsoleUI) renderExits() string {
	if ui.view == nil || len(ui.view.Exits) == 0 {
		return exitUnknownStyle.Render("No exits.")
	}

	directions := make([]string, 0, len(ui.view.Exits))
	for dir := range ui.view.Exits {
		directions = append(directions, dir)
	}
	sort.Strings(directions)

	var lines []string
	for _, dir := range directions {
		neighbor := ui.view.Exits[dir]
		if neighbor == nil {
			lines = append(lines, exitUnknownStyle.Render(fmt.Sprintf("  %-6s ???", dir)))
			continue
		}
		marker := ""
		if neighbor.Visited {
			marker = " (visited)"
		}
		lines = append(lines, exitKnownStyle.Render(fmt.Sprintf("  %-6s %s%s", dir, neighbor.Name, marker)))
	}

	return "Exits:\n" + strings.Join(lines, "\n")
}
