package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/atelier/cli/render"
	"github.com/pithecene-io/atelier/metrics"
	"github.com/pithecene-io/atelier/stage"
)

// message is one transcript entry.
type message struct {
	author  string
	text    string
	isError bool
	isHint  bool
}

// actionDoneMsg reports the completion of one orchestrator action.
type actionDoneMsg struct {
	err error
}

// keyMap defines key bindings.
type keyMap struct {
	Quit   key.Binding
	Submit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
}

// ChatModel is the Bubble Tea model for the pipeline chat.
type ChatModel struct {
	orchestrator *stage.Orchestrator
	collector    *metrics.Collector

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	messages []message
	inFlight bool
	width    int
	height   int
	ready    bool
	quitting bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewChatModel creates the chat model. collector may be nil.
func NewChatModel(orchestrator *stage.Orchestrator, collector *metrics.Collector) ChatModel {
	ta := textarea.New()
	ta.Placeholder = "Describe your product idea..."
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())

	return ChatModel{
		orchestrator: orchestrator,
		collector:    collector,
		textarea:     ta,
		spinner:      sp,
		ctx:          ctx,
		cancel:       cancel,
		messages: []message{{
			author: "atelier",
			text:   "Tell me about the product you want to build and I'll run it through the studio pipeline.",
			isHint: true,
		}},
	}
}

// Init implements tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewportHeight := msg.Height - m.textarea.Height() - 4
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.textarea.SetWidth(msg.Width - 2)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			// Cancellation stops further stream reads; the in-flight
			// request unwinds without mutating pipeline state.
			m.cancel()
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Submit):
			if m.inFlight {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.submit(input)
		}

	case spinner.TickMsg:
		if m.inFlight {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case actionDoneMsg:
		m.inFlight = false
		m.appendOutcome(msg.err)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		m.textarea.Focus()
		return m, nil
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

// submit maps the input to an orchestrator action and launches it.
func (m ChatModel) submit(input string) (tea.Model, tea.Cmd) {
	if cmd := m.slashCommand(input); cmd != nil {
		return m, cmd
	}

	m.messages = append(m.messages, message{author: "you", text: input})

	action := m.chooseAction(input)
	if action == nil {
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	}

	m.inFlight = true
	m.textarea.Blur()
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()

	ctx := m.ctx
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return actionDoneMsg{err: action(ctx)} },
	)
}

// slashCommand handles /stats and /quit; returns nil for chat input.
func (m *ChatModel) slashCommand(input string) tea.Cmd {
	switch input {
	case "/quit":
		m.cancel()
		m.quitting = true
		return tea.Quit
	case "/stats":
		var b strings.Builder
		renderer := render.New(render.FormatText, &b)
		_ = renderer.Stats(m.collector.Snapshot())
		m.messages = append(m.messages, message{author: "atelier", text: b.String(), isHint: true})
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return func() tea.Msg { return nil }
	default:
		return nil
	}
}

// chooseAction selects the orchestrator call for the input given the
// current gate state. Returns nil when the input only warranted a hint.
func (m *ChatModel) chooseAction(input string) func(context.Context) error {
	o := m.orchestrator
	st := o.State()

	switch {
	case st.Stage == stage.Intake:
		return func(ctx context.Context) error { return o.SubmitIdea(ctx, input) }

	case st.AwaitingSelection:
		option, ok := stage.ParseVisualOption(input)
		if !ok {
			m.hint(`Pick a direction first, e.g. "option 2".`)
			return nil
		}
		return func(ctx context.Context) error { return o.SelectVisual(ctx, option) }

	case st.AwaitingApproval:
		if stage.Interpret(input) == stage.SignalApprove {
			return func(ctx context.Context) error { return o.Approve(ctx) }
		}
		// Anything else is revision feedback: reject, then revise.
		feedback := input
		return func(ctx context.Context) error {
			if err := o.Reject(); err != nil {
				return err
			}
			return o.SubmitRevision(ctx, feedback)
		}

	case st.AwaitingRevision:
		if st.Stage == stage.Visuals {
			if option, ok := stage.ParseVisualOption(input); ok {
				return func(ctx context.Context) error { return o.SelectVisual(ctx, option) }
			}
		}
		return func(ctx context.Context) error { return o.SubmitRevision(ctx, input) }

	case st.Stage == stage.Final:
		m.hint("The pipeline is complete. Start a new conversation for another idea.")
		return nil

	default:
		m.hint("Waiting on the pipeline; no action matches that input here.")
		return nil
	}
}

func (m *ChatModel) hint(text string) {
	m.messages = append(m.messages, message{author: "atelier", text: text, isHint: true})
}

// appendOutcome records the result of a finished action in the transcript.
func (m *ChatModel) appendOutcome(err error) {
	st := m.orchestrator.State()

	if err != nil {
		m.messages = append(m.messages, message{
			author:  "atelier",
			text:    err.Error(),
			isError: true,
		})
		return
	}

	m.messages = append(m.messages, message{
		author: fmt.Sprintf("%s stage", st.Stage),
		text:   st.Output(st.Stage),
	})

	switch {
	case st.AwaitingSelection:
		m.hint(`Pick one of the directions above, e.g. "option 2".`)
	case st.AwaitingApproval:
		m.hint(`Approve to continue ("sounds good") or reply with feedback to revise.`)
	case st.Stage == stage.Final:
		m.hint("That's the full recap. The pipeline is complete.")
	}
}

// View implements tea.Model.
func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	st := m.orchestrator.State()
	header := TitleStyle.Render("atelier") + "  " +
		StageStyle.Render(fmt.Sprintf("stage: %s", st.Stage)) + m.gateSuffix(st)

	status := HintStyle.Render("enter to send · ctrl+c to quit")
	if m.inFlight {
		status = m.spinner.View() + HintStyle.Render(" waiting on the team...")
	}

	return header + "\n" + m.viewport.View() + "\n" + m.textarea.View() + "\n" + status
}

func (m ChatModel) gateSuffix(st stage.State) string {
	switch {
	case st.AwaitingSelection:
		return StageStyle.Render(" · pick an option")
	case st.AwaitingApproval:
		return StageStyle.Render(" · awaiting approval")
	case st.AwaitingRevision:
		return StageStyle.Render(" · awaiting revision")
	default:
		return ""
	}
}

func (m ChatModel) renderTranscript() string {
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := AgentStyle
		switch {
		case msg.author == "you":
			label = UserStyle
		case msg.isError:
			label = ErrorStyle
		case msg.isHint:
			label = HintStyle
		}
		b.WriteString(label.Render(msg.author + ":"))
		b.WriteString("\n")
		if msg.isError {
			b.WriteString(ErrorStyle.Render(msg.text))
		} else {
			b.WriteString(msg.text)
		}
	}
	return b.String()
}

// RunChat runs the chat TUI to completion.
func RunChat(orchestrator *stage.Orchestrator, collector *metrics.Collector) error {
	model := NewChatModel(orchestrator, collector)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
