package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type viewState int

const (
	stateSchedule viewState = iota
	stateLeaderboard
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)
)

type model struct {
	client     *apiClient
	state      viewState
	challenges []challengeRow
	cursor     int
	board      []leaderboardRow
	errMsg     string
}

func initialModel(client *apiClient, challenges []challengeRow) model {
	return model{
		client:     client,
		state:      stateSchedule,
		challenges: challenges,
	}
}

type boardLoadedMsg struct {
	rows []leaderboardRow
}

type apiErrMsg struct {
	err error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) loadBoard(challengeUUID string) tea.Cmd {
	return func() tea.Msg {
		rows, err := m.client.leaderboard(challengeUUID)
		if err != nil {
			return apiErrMsg{err: err}
		}
		return boardLoadedMsg{rows: rows}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateLeaderboard {
				m.state = stateSchedule
				m.errMsg = ""
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.state == stateSchedule && m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.state == stateSchedule && m.cursor < len(m.challenges)-1 {
				m.cursor++
			}
		case "enter":
			if m.state == stateSchedule && len(m.challenges) > 0 {
				return m, m.loadBoard(m.challenges[m.cursor].UUID)
			}
		case "esc":
			if m.state == stateLeaderboard {
				m.state = stateSchedule
				m.errMsg = ""
			}
		}
	case boardLoadedMsg:
		m.state = stateLeaderboard
		m.board = msg.rows
		m.errMsg = ""
	case apiErrMsg:
		m.errMsg = msg.err.Error()
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	switch m.state {
	case stateSchedule:
		b.WriteString(titleStyle.Render("Challenge schedule"))
		b.WriteString("\n")
		if len(m.challenges) == 0 {
			b.WriteString(dimStyle.Render("no challenges scheduled"))
			b.WriteString("\n")
		}
		for i, ch := range m.challenges {
			line := fmt.Sprintf("%s  %-30s  %-8s  %s",
				ch.Date, truncate(ch.Title, 30), ch.Difficulty, ch.Category)
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("↑/↓ move · enter leaderboard · q quit"))
	case stateLeaderboard:
		ch := m.challenges[m.cursor]
		b.WriteString(titleStyle.Render(fmt.Sprintf("Leaderboard · %s (%s)", ch.Title, ch.Date)))
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-5s %-36s %-6s %-13s %s",
			"rank", "user", "score", "rating", "time")))
		b.WriteString("\n")
		if len(m.board) == 0 {
			b.WriteString(dimStyle.Render("no passing submissions yet"))
			b.WriteString("\n")
		}
		for _, row := range m.board {
			b.WriteString(fmt.Sprintf("%-5d %-36s %-6d %-13s %ds\n",
				row.Rank, row.UserUUID, row.ScoreTotal, row.Rating, row.CompletionTimeSeconds))
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("esc back · q back"))
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("error: " + m.errMsg))
	}
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
