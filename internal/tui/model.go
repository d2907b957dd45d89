package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"ragchat/internal/domain"
	"ragchat/internal/session"
)

// ChainPort is the TUI-facing subset of the retrieval chain.
type ChainPort interface {
	Ask(ctx context.Context, question string) string
	Summarize(ctx context.Context, history []session.Message) string
	Stats(ctx context.Context) (domain.Stats, error)
}

type answerMsg struct {
	answer string
}

type summaryMsg struct {
	summary string
}

type statsMsg struct {
	stats domain.Stats
	err   error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	store    *session.Store
	chain    ChainPort
	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	userName string
	botName  string

	status    string
	statsText string
	summary   string
	thinking  bool
	ready     bool
}

// New creates a new TUI model instance.
func New(store *session.Store, chain ChainPort, userName, botName string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(0, 0)
	return Model{
		store:    store,
		chain:    chain,
		input:    ti,
		viewport: vp,
		spin:     sp,
		userName:  userName,
		botName:   botName,
		status:    "Ready.",
		statsText: statsStyle.Render("Checking the index..."),
	}
}

// Init starts the cursor blink and the one-off index stats fetch. Stats
// may hit a remote store, so they never run on the render path.
func (m Model) Init() tea.Cmd { return tea.Batch(textinput.Blink, m.fetchStats()) }

func (m Model) fetchStats() tea.Cmd {
	chain := m.chain
	return func() tea.Msg {
		stats, err := chain.Stats(context.Background())
		return statsMsg{stats: stats, err: err}
	}
}

// Update handles key, window and completion events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // title + stats
		totalFooterLines := 2 // status + help
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, vh-rh)
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(max(40, m.viewport.Width-4)),
		)
		m.refreshTranscript()
		return m, nil

	case answerMsg:
		m.thinking = false
		if err := m.store.Append(session.RoleAssistant, msg.answer); err != nil {
			m.status = "Could not save answer: " + err.Error()
		} else {
			m.status = fmt.Sprintf("%s answered.", m.botName)
		}
		m.refreshTranscript()
		return m, nil

	case summaryMsg:
		m.thinking = false
		m.summary = msg.summary
		m.status = "Summary ready."
		m.refreshTranscript()
		return m, nil

	case statsMsg:
		m.statsText = formatStats(msg.stats, msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.thinking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if m.thinking {
			// One question at a time; bookkeeping stays strictly ordered.
			return m, nil
		}
		switch msg.String() {
		case "enter":
			return m.submitQuestion()
		case "ctrl+n":
			if _, err := m.store.Create(""); err != nil {
				m.status = "Could not create conversation: " + err.Error()
			} else {
				m.summary = ""
				m.status = "Created " + m.store.Current().Name
			}
			m.refreshTranscript()
			return m, nil
		case "tab":
			return m.cycleSession()
		case "ctrl+p":
			if err := m.store.PinLastAnswer(); err != nil {
				m.status = "Could not pin: " + err.Error()
			} else {
				m.status = "Pinned the last answer."
			}
			m.refreshTranscript()
			return m, nil
		case "ctrl+x":
			if err := m.store.DeleteLastExchange(); err != nil {
				m.status = "Could not delete exchange: " + err.Error()
			} else {
				m.status = "Deleted the last exchange."
			}
			m.refreshTranscript()
			return m, nil
		case "ctrl+l":
			if err := m.store.ClearHistory(); err != nil {
				m.status = "Could not clear history: " + err.Error()
			} else {
				m.status = "History cleared."
			}
			m.refreshTranscript()
			return m, nil
		case "ctrl+g":
			if err := m.store.DeleteCurrent(); err != nil {
				m.status = warnStyle.Render(err.Error())
			} else {
				m.summary = ""
				m.status = "Conversation deleted. Now on " + m.store.Current().Name
			}
			m.refreshTranscript()
			return m, nil
		case "ctrl+s":
			m.thinking = true
			m.status = "Summarizing..."
			history := m.store.Current().History
			chain := m.chain
			return m, tea.Batch(m.spin.Tick, func() tea.Msg {
				return summaryMsg{summary: chain.Summarize(context.Background(), history)}
			})
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitQuestion() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == "" {
		m.status = "Type a question first."
		return m, nil
	}
	if err := m.store.Append(session.RoleUser, q); err != nil {
		m.status = "Could not save question: " + err.Error()
		return m, nil
	}
	m.input.Reset()
	m.thinking = true
	m.summary = ""
	m.status = fmt.Sprintf("%s is thinking...", m.botName)
	m.refreshTranscript()
	chain := m.chain
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		return answerMsg{answer: chain.Ask(context.Background(), q)}
	})
}

func (m Model) cycleSession() (tea.Model, tea.Cmd) {
	sessions := m.store.Sessions()
	if len(sessions) < 2 {
		m.status = "Only one conversation exists."
		return m, nil
	}
	cur := m.store.Current().ID
	for i, s := range sessions {
		if s.ID == cur {
			next := sessions[(i+1)%len(sessions)]
			if err := m.store.Switch(next.ID); err != nil {
				m.status = "Could not switch: " + err.Error()
			} else {
				m.summary = ""
				m.status = "Switched to " + next.Name
			}
			break
		}
	}
	m.refreshTranscript()
	return m, nil
}

func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	sess := m.store.Current()
	if len(sess.History) == 0 && m.summary == "" {
		return emptyStyle.Render("No messages yet. Ask something about your documents.")
	}
	var b strings.Builder
	for _, msg := range sess.History {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	if m.summary != "" {
		b.WriteString(summaryHeaderStyle.Render("Conversation summary"))
		b.WriteString("\n")
		b.WriteString(m.renderMarkdown(m.summary))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMessage(msg session.Message) string {
	meta := fmt.Sprintf("%s, %s", msg.Time, msg.Date)
	if msg.Role == session.RoleUser {
		header := userHeaderStyle.Render(fmt.Sprintf("%s (%s)", m.userName, meta))
		return header + "\n" + msg.Content + "\n"
	}
	name := m.botName
	if msg.Pinned {
		name = "* " + name
	}
	header := botHeaderStyle.Render(fmt.Sprintf("%s (%s)", name, meta))
	return header + "\n" + m.renderMarkdown(msg.Content) + "\n"
}

func (m Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	sess := m.store.Current()
	title := titleStyle.Render("ragchat") + "  " + sessionStyle.Render(sess.Name)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := m.status
	if m.thinking {
		status = m.spin.View() + " " + status
	}
	help := helpStyle.Render("enter ask · tab switch · ctrl+n new · ctrl+g delete · ctrl+p pin · ctrl+x undo exchange · ctrl+l clear · ctrl+s summary · ctrl+c quit")
	return title + "\n" + m.statsText + "\n" + transcript + "\n" + input + "\n" + statusStyle.Render(status) + "\n" + help
}

func formatStats(stats domain.Stats, err error) string {
	if err != nil {
		return warnStyle.Render("Index statistics unavailable.")
	}
	if stats.Chunks == 0 {
		return warnStyle.Render("No index found. Add files to the data directory and run: ragchat index")
	}
	return statsStyle.Render(fmt.Sprintf("%d collections, %d chunks indexed", stats.Collections, stats.Chunks))
}

var (
	titleStyle         = lipgloss.NewStyle().Bold(true)
	sessionStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	statsStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	emptyStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	userHeaderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	botHeaderStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	summaryHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
