package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/neilberkman/ragchat/internal/core/models"
	"github.com/neilberkman/ragchat/internal/core/session"
	"go.uber.org/zap"
)

type viewMode int

const (
	landingView viewMode = iota
	openView
	chatView
	attachView
	filesView
	helpView
)

// Options wires the TUI to the rest of the program
type Options struct {
	Asker              session.Asker
	Store              session.FileStore
	Logger             *zap.Logger
	BackendURL         string
	TranscriptTemplate string
	Start              *models.Session // Open this session directly instead of the landing view
}

type Model struct {
	opts     Options
	mode     viewMode
	prevMode viewMode
	width    int
	height   int
	err      error

	chat        *session.Chat
	viewport    viewport.Model
	input       textinput.Model
	attachInput textinput.Model
	openInput   textinput.Model
	files       list.Model
	spinner     spinner.Model

	status  string // One-line feedback under the input box
	warning string // Alert raised by the last attach attempt
}

func New(opts Options) Model {
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	input := textinput.New()
	input.Prompt = "› "
	input.CharLimit = 4000

	attachInput := textinput.New()
	attachInput.Prompt = "Attach: "
	attachInput.Placeholder = "~/docs/report.pdf ~/docs/*.pdf"

	openInput := textinput.New()
	openInput.Prompt = "Session: "
	openInput.Placeholder = "482913 [report.pdf]"

	m := Model{
		opts:        opts,
		mode:        landingView,
		viewport:    viewport.New(80, 20),
		input:       input,
		attachInput: attachInput,
		openInput:   openInput,
		files:       createFileList(nil, 80, 10),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(hintStyle)),
	}

	if opts.Start != nil {
		m = m.openSession(*opts.Start)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Chat returns the active chat, or nil on the landing view
func (m Model) Chat() *session.Chat {
	return m.chat
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.files.SetSize(msg.Width, msg.Height-4)
		return m.layout(), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.mode {
		case landingView:
			return m.updateLanding(msg)
		case openView:
			return m.updateOpen(msg)
		case chatView:
			return m.updateChat(msg)
		case attachView:
			return m.updateAttach(msg)
		case filesView:
			return m.updateFiles(msg)
		case helpView:
			return m.updateHelp(msg)
		}

	case tea.MouseMsg:
		if m.mode == chatView {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		return m.handleAnswer(msg)

	case filesResolvedMsg:
		return m.handleFilesResolved(msg)

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case spinner.TickMsg:
		if m.chat == nil || !m.chat.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m = m.refreshConversation()
		return m, cmd

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress ctrl+c to quit"
	}

	switch m.mode {
	case landingView, openView:
		return m.viewLanding()
	case chatView, attachView:
		return m.viewChat()
	case filesView:
		return m.viewFiles()
	case helpView:
		return m.viewHelp()
	}

	return ""
}
