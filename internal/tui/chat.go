package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/diogo/stormchat/internal/chat"
	apierrors "github.com/diogo/stormchat/internal/errors"
	"github.com/diogo/stormchat/internal/history"
	"github.com/diogo/stormchat/internal/models"
	"github.com/diogo/stormchat/internal/render"
)

// renderInterval is the minimum gap between transcript re-renders while streaming
const renderInterval = 50 * time.Millisecond

const (
	welcomeText = "Your conversation will appear here."
	typingText  = "Assistant is typing..."
)

// ChatModel is the chat screen: transcript, input box and the active stream
type ChatModel struct {
	completer Completer
	log       zerolog.Logger
	modelName string

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	state      chat.State
	renderOpts render.Options
	rendered   map[int]renderedMessage
	limiter    *rate.Limiter
	pending    bool // a render tick is scheduled

	stream   <-chan tea.Msg
	cancel   context.CancelFunc
	streamID int

	err    error
	notice string
	copyFn func(string) error
	now    func() time.Time

	focused bool
	ready   bool
	width   int
	height  int
}

// renderedMessage caches glamour output for one transcript entry
type renderedMessage struct {
	text  string
	width int
	out   string
}

// ChatOption configures the chat screen
type ChatOption func(*ChatModel)

// WithRenderOptions sets the markdown options for assistant replies
func WithRenderOptions(opts render.Options) ChatOption {
	return func(m *ChatModel) {
		m.renderOpts = opts
	}
}

// WithChatLogger sets the logger for stream events
func WithChatLogger(log zerolog.Logger) ChatOption {
	return func(m *ChatModel) {
		m.log = log
	}
}

// WithClipboard replaces the clipboard writer
func WithClipboard(write func(string) error) ChatOption {
	return func(m *ChatModel) {
		m.copyFn = write
	}
}

// NewChatModel creates the chat screen
func NewChatModel(completer Completer, modelName string, opts ...ChatOption) ChatModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message... (Enter to send, Alt+Enter for a new line)"
	ta.CharLimit = 8000
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = typingStyle

	m := ChatModel{
		completer:  completer,
		log:        zerolog.Nop(),
		modelName:  modelName,
		textarea:   ta,
		spinner:    s,
		state:      chat.NewState(),
		renderOpts: render.DefaultOptions(),
		rendered:   make(map[int]renderedMessage),
		limiter:    rate.NewLimiter(rate.Every(renderInterval), 1),
		copyFn:     clipboard.WriteAll,
		now:        time.Now,
		focused:    true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the cursor blink
func (m ChatModel) Init() tea.Cmd {
	return textarea.Blink
}

// State returns the transcript
func (m ChatModel) State() chat.State {
	return m.state
}

// Focus gives the input box keyboard focus
func (m *ChatModel) Focus() tea.Cmd {
	m.focused = true
	return m.textarea.Focus()
}

// Blur removes keyboard focus from the input box
func (m *ChatModel) Blur() {
	m.focused = false
	m.textarea.Blur()
}

// Stop cancels the active stream, if any
func (m *ChatModel) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Update handles messages for the chat screen
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if handled, next, cmd := m.handleKey(msg); handled {
			return next, cmd
		}

	case streamFragmentMsg:
		if msg.id != m.streamID {
			return m, nil
		}
		m.applyEvent(chat.Fragment{Text: msg.text})
		if m.limiter.Allow() {
			m.updateViewport()
		} else if !m.pending {
			m.pending = true
			id := m.streamID
			cmds = append(cmds, tea.Tick(renderInterval, func(time.Time) tea.Msg {
				return renderTickMsg{id: id}
			}))
		}
		cmds = append(cmds, listen(m.stream))
		return m, tea.Batch(cmds...)

	case renderTickMsg:
		m.pending = false
		if msg.id == m.streamID {
			m.updateViewport()
		}
		return m, nil

	case streamDoneMsg:
		if msg.id != m.streamID {
			return m, nil
		}
		m.finishStream(msg.err)
		return m, nil

	case spinner.TickMsg:
		if m.state.Streaming {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.focused {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		return m, tea.Batch(cmds...)
	}

	// keys belong to the input box; only mouse wheel and the like scroll
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes chat shortcuts. Unhandled keys go to the textarea.
func (m ChatModel) handleKey(msg tea.KeyMsg) (bool, ChatModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.state.Streaming && m.cancel != nil {
			m.cancel()
			m.notice = "Generation stopped"
		}
		return true, m, nil

	case "ctrl+y":
		m.copyLastCodeBlock()
		return true, m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return true, m, cmd

	case "enter":
		next, cmd := m.submit()
		return true, next, cmd
	}
	return false, m, nil
}

// submit sends the textarea content. Blank input and input while a reply is
// streaming are ignored; the text stays in the box in the latter case.
func (m ChatModel) submit() (ChatModel, tea.Cmd) {
	raw := m.textarea.Value()
	input := strings.TrimSpace(raw)

	switch input {
	case "":
		return m, nil
	case "/quit", "/exit":
		m.Stop()
		return m, tea.Quit
	case "/clear":
		state, err := m.state.Clear()
		if err != nil {
			m.notice = "Wait for the reply to finish before clearing"
			return m, nil
		}
		m.state = state
		m.rendered = make(map[int]renderedMessage)
		m.err = nil
		m.notice = ""
		m.textarea.Reset()
		m.updateViewport()
		return m, nil
	}

	if input == "/save" || strings.HasPrefix(input, "/save ") {
		m.save(strings.TrimSpace(strings.TrimPrefix(input, "/save")))
		return m, nil
	}

	state, err := chat.Apply(m.state, chat.Submit{Prompt: raw})
	if err != nil {
		if !errors.Is(err, apierrors.ErrStreamInProgress) {
			m.log.Warn().Err(err).Msg("submit rejected")
		}
		return m, nil
	}

	m.state = state
	m.err = nil
	m.notice = ""
	m.textarea.Reset()
	m.updateViewport()
	m.viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.streamID++
	m.cancel = cancel
	m.stream = runStream(ctx, m.completer, m.streamID, raw)

	return m, tea.Batch(listen(m.stream), m.spinner.Tick)
}

// finishStream settles the transcript once the stream goroutine returns
func (m *ChatModel) finishStream(err error) {
	switch {
	case err == nil, apierrors.IsCanceled(err):
		m.applyEvent(chat.Finish{})
	default:
		m.log.Error().Err(err).Msg("completion failed")
		m.applyEvent(chat.Fail{Err: err})
		m.err = err
	}

	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = nil
	m.stream = nil
	m.pending = false
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m *ChatModel) applyEvent(ev chat.Event) {
	state, err := chat.Apply(m.state, ev)
	if err != nil {
		m.log.Warn().Err(err).Str("event", fmt.Sprintf("%T", ev)).Msg("transcript event dropped")
		return
	}
	m.state = state
}

// save exports the idle transcript; an empty path picks a timestamped name
func (m *ChatModel) save(path string) {
	switch {
	case m.state.Streaming:
		m.notice = "Wait for the reply to finish before saving"
		return
	case len(m.state.Messages) == 0:
		m.notice = "Nothing to save yet"
		return
	}

	now := m.now()
	if path == "" {
		path = history.DefaultFileName(now)
	}
	meta := history.Meta{Model: m.modelName, ExportedAt: now}
	if err := history.WriteFile(path, m.state.Messages, meta); err != nil {
		m.log.Warn().Err(err).Str("path", path).Msg("transcript export failed")
		m.notice = "Could not save: " + err.Error()
		return
	}
	m.log.Info().Str("path", path).Int("messages", len(m.state.Messages)).Msg("transcript exported")
	m.textarea.Reset()
	m.notice = "Saved conversation to " + path
}

func (m *ChatModel) copyLastCodeBlock() {
	msg, ok := m.state.LastAssistant()
	if !ok {
		m.notice = "Nothing to copy yet"
		return
	}
	block, ok := render.LastCodeBlock(msg.Text)
	if !ok {
		m.notice = "The last reply has no code block"
		return
	}
	if err := m.copyFn(block.Code); err != nil {
		m.log.Warn().Err(err).Msg("clipboard write failed")
		m.notice = "Could not copy: " + err.Error()
		return
	}
	m.notice = fmt.Sprintf("Copied %s block to clipboard", block.Label())
}

func (m *ChatModel) resize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := m.textarea.Height() + 3 // label + border
	statusHeight := 2                       // typing/notice line + shortcuts
	vpHeight := height - inputHeight - statusHeight - 2
	if vpHeight < 3 {
		vpHeight = 3
	}
	contentWidth := width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 2)
	m.updateViewport()
}

// updateViewport re-renders the transcript, keeping the view pinned to the
// bottom when it already was
func (m *ChatModel) updateViewport() {
	if !m.ready {
		return
	}
	follow := m.viewport.AtBottom()

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.state.Messages {
		if i > 0 {
			content.WriteString("\n")
		}
		if msg.Sender == models.SenderUser {
			content.WriteString(userLabelStyle.Render("You"))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Text))
		} else {
			content.WriteString(assistantLabelStyle.Render("Assistant"))
			content.WriteString("\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(m.renderAssistant(i, msg.Text, bubbleWidth-4)))
			if blocks := render.ExtractCodeBlocks(msg.Text); len(blocks) > 0 && i == len(m.state.Messages)-1 {
				last := blocks[len(blocks)-1]
				content.WriteString("\n")
				content.WriteString(codeHintStyle.Render(fmt.Sprintf("%s · ctrl+y to copy", last.Label())))
			}
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m *ChatModel) renderAssistant(index int, text string, width int) string {
	if cached, ok := m.rendered[index]; ok && cached.text == text && cached.width == width {
		return cached.out
	}
	out := strings.TrimRight(render.MarkdownOrPlain(text, m.renderOpts.WithWidth(width)), "\n")
	m.rendered[index] = renderedMessage{text: text, width: width, out: out}
	return out
}

// View renders the chat screen
func (m ChatModel) View() string {
	if !m.ready {
		return typingStyle.Render("  Initializing...")
	}

	contentWidth := m.viewport.Width

	var transcript string
	if len(m.state.Messages) == 0 {
		transcript = welcomeStyle.
			Width(contentWidth).
			Height(m.viewport.Height).
			AlignVertical(lipgloss.Center).
			Render(welcomeText)
	} else {
		transcript = m.viewport.View()
	}
	messages := messagesAreaStyle.Width(contentWidth + 2).Render(transcript)

	input := inputPanelStyle.Width(contentWidth + 2).Render(lipgloss.JoinVertical(
		lipgloss.Left,
		inputLabelStyle.Render("You"),
		m.textarea.View(),
	))

	return lipgloss.JoinVertical(lipgloss.Left,
		messages,
		m.statusLine(),
		input,
		renderShortcuts(contentWidth+4, m.shortcuts()),
	)
}

func (m ChatModel) statusLine() string {
	switch {
	case m.state.Streaming:
		return m.spinner.View() + typingStyle.Render(" "+typingText)
	case m.err != nil:
		return errorStyle.Render("✗ " + firstLine(m.err.Error()))
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	}
	return ""
}

func (m ChatModel) shortcuts() []shortcut {
	if m.state.Streaming {
		return []shortcut{{"Esc", "Stop"}, {"PgUp/PgDn", "Scroll"}, {"Ctrl+C", "Quit"}}
	}
	return []shortcut{{"Enter", "Send"}, {"Alt+Enter", "Newline"}, {"Ctrl+Y", "Copy code"}, {"/save", "Export"}, {"Ctrl+C", "Quit"}}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
