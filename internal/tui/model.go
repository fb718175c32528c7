package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"semshapes/internal/domain"
)

const (
	defaultResults = 5
	requestTimeout = 30 * time.Second
)

// Port is the TUI-facing subset of the query API.
type Port interface {
	Arithmetic(ctx context.Context, expression string, n int) ([]domain.Neighbor, error)
	Similar(ctx context.Context, word string, n int) ([]domain.Neighbor, error)
}

// Local adapts an in-process QueryService to Port.
type Local struct {
	Service domain.QueryService
}

func (l Local) Arithmetic(_ context.Context, expression string, n int) ([]domain.Neighbor, error) {
	return l.Service.Evaluate(expression, n)
}

func (l Local) Similar(_ context.Context, word string, n int) ([]domain.Neighbor, error) {
	return l.Service.Similar(word, n)
}

type resultMsg struct {
	expression string
	neighbours bool
	results    []domain.Neighbor
	err        error
}

// Model is the Bubble Tea model for the analogy explorer.
type Model struct {
	service   Port
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.Neighbor
	summary   string
	status    string
	cursor    int
	n         int
	ready     bool
	loading   bool
	lastQuery string
}

// New creates a new TUI model instance. n is the number of results requested per expression.
func New(service Port, summary string, n int) Model {
	if n <= 0 {
		n = defaultResults
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "E.g., king - man + woman"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, summary: summary, n: n, status: "Type an expression and press Enter. Tab lists neighbours of the highlighted word."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResults())
		return m, nil
	case resultMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.results = nil
		} else {
			if msg.neighbours {
				m.status = fmt.Sprintf("Neighbours of %q", msg.expression)
			} else {
				m.status = fmt.Sprintf("Results for %q", msg.expression)
			}
			m.results = msg.results
			m.cursor = 0
			m.lastQuery = msg.expression
		}
		m.viewport.SetContent(m.renderResults())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.loading {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				m.status = "Please enter an expression"
				return m, nil
			}
			m.loading = true
			m.status = "Calculating..."
			return m, m.evaluate(q)
		case "tab":
			// explore around the highlighted word
			if m.loading || len(m.results) == 0 {
				return m, nil
			}
			m.loading = true
			m.status = "Calculating..."
			return m, m.neighbours(m.results[m.cursor].Word)
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) evaluate(expression string) tea.Cmd {
	service, n := m.service, m.n
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := service.Arithmetic(ctx, expression, n)
		return resultMsg{expression: expression, results: res, err: err}
	}
}

func (m Model) neighbours(word string) tea.Cmd {
	service, n := m.service, m.n
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := service.Similar(ctx, word, n)
		return resultMsg{expression: word, neighbours: true, results: res, err: err}
	}
}

// View renders the TUI layout and current results.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Semantic Shapes: Vector Arithmetic")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	width := len("word")
	for _, r := range m.results {
		width = max(width, len(r.Word))
	}
	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render(fmt.Sprintf("  %-*s  %s", width, "word", "similarity")))
	for i, r := range m.results {
		line := fmt.Sprintf("  %-*s  %.5f", width, r.Word, r.Similarity)
		if i == m.cursor {
			line = highlightStyle.Render("> " + line[2:])
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

var (
	resultBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	tableHeaderStyle = lipgloss.NewStyle().Underline(true)
)
