// Package tui plays one human seat against agents in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/table"
)

const (
	logPane = iota
	inputPane
)

// stateMsg carries the table state after the agents have moved
type stateMsg struct {
	state game.State
	err   error
}

// Model is the bubbletea model for a game against agents
type Model struct {
	ctx      context.Context
	table    *table.Table
	playerID string
	logger   *log.Logger

	logViewport viewport.Model
	actionInput textinput.Model
	focusedPane int

	transcript transcript
	gameLog    []string
	state      game.State
	valid      []game.Action
	status     string
	busy       bool // agents are deciding
	over       bool
	quitting   bool

	width       int
	height      int
	initialized bool
}

// New creates a model for playerID, a human seat at t
func New(ctx context.Context, t *table.Table, playerID string, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Enter your action (call, bet 20, raise to 60, fold, check, allin)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = promptStyle
	ti.TextStyle = inputTextStyle
	ti.Prompt = "> "

	return &Model{
		ctx:         ctx,
		table:       t,
		playerID:    playerID,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: inputPane,
		transcript:  transcript{playerID: playerID},
		state:       t.Snapshot(playerID),
	}
}

// Run plays until the user quits or only one player has chips left
func Run(ctx context.Context, t *table.Table, playerID string, logger *log.Logger) error {
	_, err := tea.NewProgram(New(ctx, t, playerID, logger), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init deals the first hand
func (m *Model) Init() tea.Cmd {
	m.busy = true
	return tea.Batch(textinput.Blink, m.deal)
}

// deal starts a hand and lets the agents act until the human is up
func (m *Model) deal() tea.Msg {
	if _, err := m.table.Start(); err != nil {
		return stateMsg{state: m.table.Snapshot(m.playerID), err: err}
	}
	return m.runBots()
}

func (m *Model) act(d game.Decision) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.table.Act(m.playerID, d.Action, d.Amount); err != nil {
			return stateMsg{state: m.table.Snapshot(m.playerID), err: err}
		}
		return m.runBots()
	}
}

func (m *Model) runBots() tea.Msg {
	_, _, err := m.table.RunBots(m.ctx)
	return stateMsg{state: m.table.Snapshot(m.playerID), err: err}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case stateMsg:
		m.apply(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == logPane {
				m.focusedPane = inputPane
				m.actionInput.Focus()
			} else {
				m.focusedPane = logPane
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == inputPane {
				input := m.actionInput.Value()
				m.actionInput.SetValue("")
				if cmd := m.submit(input); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == logPane {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == logPane {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == logPane {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == logPane {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == logPane {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == logPane {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == inputPane {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles one line of input
func (m *Model) submit(input string) tea.Cmd {
	if m.busy {
		m.status = "Waiting for the other players..."
		return nil
	}
	if m.over {
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	}

	cmd, err := parseCommand(input, m.state, m.state.Seat(m.playerID))
	if err != nil {
		m.status = err.Error()
		return nil
	}
	switch {
	case cmd.quit:
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	case cmd.next:
		m.status = ""
		m.busy = true
		return m.deal
	default:
		m.status = ""
		m.busy = true
		return m.act(cmd.decision)
	}
}

// apply records a new table state
func (m *Model) apply(msg stateMsg) {
	m.busy = false
	m.state = msg.state
	m.valid = m.table.ValidActions(m.playerID)
	for _, line := range m.transcript.update(msg.state) {
		m.addLogEntry(line)
	}

	switch {
	case errors.Is(msg.err, game.ErrPrecondition) && !msg.state.Phase.IsBetting():
		m.over = true
		m.status = "Game over: only one player has chips left. Press Enter to exit."
		m.addLogEntry(m.status)
	case errors.Is(msg.err, game.ErrIllegalAction):
		m.status = msg.err.Error()
	case msg.err != nil:
		m.logger.Error("table error", "error", msg.err)
		m.status = msg.err.Error()
	case msg.state.Phase.IsHandOver():
		m.status = "Press Enter to deal the next hand, 'quit' to exit"
	}
}

func (m *Model) addLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) yourTurn() bool {
	return m.state.Phase.IsBetting() && m.state.CurrentPlayer >= 0 && m.state.CurrentPlayer == m.state.Seat(m.playerID)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := pane(m.focusedPane == inputPane).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := pane(false).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight
	if !m.initialized && m.logViewport.Width > 1 && m.logViewport.Height > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logView := pane(m.focusedPane == logPane).
		Width(m.logViewport.Width).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logView, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the pot, the board and every seat
func (m *Model) renderSidebarPane() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render(fmt.Sprintf(" Hand #%d ", m.state.HandNumber)))
	content.WriteString("\n\n")
	content.WriteString(ChipsStyle.Render(fmt.Sprintf("Pot: $%d", m.state.Pot)))
	if m.state.CurrentBet > 0 {
		content.WriteString(" | ")
		content.WriteString(ChipsStyle.Render(fmt.Sprintf("Bet: $%d", m.state.CurrentBet)))
	}
	content.WriteString("\n")
	if len(m.state.CommunityCards) > 0 {
		content.WriteString("Board: " + formatCards(m.state.CommunityCards) + "\n")
	}
	content.WriteString("\n")

	content.WriteString(InfoStyle.Render("Players at table:"))
	content.WriteString("\n")
	for i, p := range m.state.Players {
		marker := "  "
		switch {
		case i == m.state.CurrentPlayer:
			marker = "> "
		case i == m.state.DealerPosition:
			marker = "D "
		}
		line := fmt.Sprintf("%s%s: $%d", marker, p.Name, p.Stack)
		if p.CurrentBet > 0 {
			line += fmt.Sprintf(" (bet $%d)", p.CurrentBet)
		}
		switch {
		case p.Folded:
			line = FoldedSeatStyle.Render(line + " folded")
		case p.AllIn:
			line = ChipsStyle.Render(line + " all-in")
		case p.ID == m.playerID:
			line = OwnSeatStyle.Render(line)
		}
		content.WriteString(line + "\n")
	}
	return content.String()
}

// renderActionPane renders the action input pane
func (m *Model) renderActionPane() string {
	var content strings.Builder

	if m.yourTurn() {
		seat := m.state.Seat(m.playerID)
		content.WriteString(HandInfoStyle.Render(fmt.Sprintf("Hand: %s  Pot: $%d  To call: $%d",
			formatCards(m.state.Players[seat].Cards), m.state.Pot, m.state.ToCall(seat))))
		content.WriteString("\n")
		content.WriteString(m.renderAvailableActions())
		content.WriteString("\n")
		m.actionInput.Placeholder = "Enter your action (call, bet 20, raise to 60, fold, check, allin)"
	} else {
		content.WriteString(HandInfoStyle.Render("Waiting..."))
		content.WriteString("\n")
		m.actionInput.Placeholder = "Enter to continue, 'quit' to exit"
	}

	if m.status != "" {
		content.WriteString(ErrorStyle.Render(m.status))
		content.WriteString("\n")
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Ctrl+C to quit"
	switch {
	case m.focusedPane == logPane:
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	case m.yourTurn():
		help = "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	}
	content.WriteString(InfoStyle.Render(help))
	return content.String()
}

// renderAvailableActions lists what the engine allows right now
func (m *Model) renderAvailableActions() string {
	seat := m.state.Seat(m.playerID)
	var actions []string
	for _, a := range m.valid {
		switch a {
		case game.Fold:
			actions = append(actions, ErrorStyle.Render("[fold]"))
		case game.Check:
			actions = append(actions, SuccessStyle.Render("[check]"))
		case game.Call:
			actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call $%d]", m.state.ToCall(seat))))
		case game.Bet:
			actions = append(actions, ChipsStyle.Render(fmt.Sprintf("[bet $%d+]", m.state.BigBlind)))
		case game.Raise:
			actions = append(actions, ChipsStyle.Render(fmt.Sprintf("[raise to $%d+]", m.state.MinRaiseTo())))
		case game.AllIn:
			actions = append(actions, ChipsStyle.Render(fmt.Sprintf("[allin $%d]", m.state.Players[seat].Stack)))
		}
	}
	if len(actions) == 0 {
		actions = append(actions, ErrorStyle.Render("[no actions available]"))
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}
