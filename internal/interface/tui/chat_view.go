package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"
	"github.com/neilberkman/ragchat/internal/core/models"
	"github.com/neilberkman/ragchat/internal/core/session"
)

const (
	placeholderBlocked = "Upload at least one PDF to start..."
	placeholderReady   = "Ask something about your PDFs..."
	maxListedFiles     = 4
)

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Leaving the session drops its conversation; its files stay in the store
		m.chat = nil
		m.mode = landingView
		m.input.Blur()
		m.status = ""
		m.warning = ""
		return m, nil

	case "enter":
		return m.send()

	case "ctrl+o":
		if !m.canAttach() {
			return m, nil
		}
		m.mode = attachView
		m.input.Blur()
		return m.layout(), m.attachInput.Focus()

	case "ctrl+f":
		if len(m.chat.Files()) == 0 {
			return m, nil
		}
		m.files = createFileList(m.chat.Files(), m.width, m.height)
		m.mode = filesView
		m.input.Blur()
		return m, nil

	case "ctrl+x":
		m.chat.RemoveAllFiles()
		m.attachInput.SetValue("")
		m.warning = ""
		return m.syncInput().layout(), nil

	case "ctrl+y":
		return m, copyLastAnswer(m.chat)

	case "ctrl+s":
		return m, exportTranscript(m.chat, m.opts.TranscriptTemplate)

	case "f1":
		m.prevMode = chatView
		m.mode = helpView
		return m, nil

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if !m.chat.InputEnabled() {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.chat.SetInput(m.input.Value())
	return m, cmd
}

func (m Model) send() (tea.Model, tea.Cmd) {
	ex, err := m.chat.BeginSend()
	if err != nil {
		m.status = describeRejection(err)
		return m.syncInput().layout(), nil
	}

	m.status = ""
	m = m.syncInput().layout()
	return m, tea.Batch(askBackend(m.opts.Asker, m.chat, ex), m.spinner.Tick)
}

func (m Model) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	msg.chat.Finish(msg.answer, msg.err)

	if msg.chat != m.chat {
		// The user left this session while the answer was outstanding
		return m, nil
	}

	m.input.SetValue("")
	m = m.syncInput().layout()
	if m.mode == chatView && m.chat.InputEnabled() {
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) updateAttach(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.attachInput.Blur()
		m.mode = chatView
		return m.syncInput().layout(), nil

	case "enter":
		line := m.attachInput.Value()
		if strings.TrimSpace(line) == "" {
			return m, nil
		}
		return m, resolveFiles(m.chat, line)
	}

	var cmd tea.Cmd
	m.attachInput, cmd = m.attachInput.Update(msg)
	return m, cmd
}

// canAttach reports whether the attach prompt may open
func (m Model) canAttach() bool {
	return m.chat != nil && !m.chat.Loading()
}

func (m Model) handleFilesResolved(msg filesResolvedMsg) (tea.Model, tea.Cmd) {
	if m.chat == nil || msg.chat != m.chat {
		return m, nil
	}

	if err := m.chat.AddFiles(msg.files); err != nil {
		// No state change; keep the typed paths so they can be corrected
		m.warning = session.NoPDFWarning
		if len(msg.errs) > 0 {
			m.warning += " (" + joinErrors(msg.errs) + ")"
		}
		return m.layout(), nil
	}

	m.warning = ""
	m.status = ""
	if len(msg.errs) > 0 {
		m.status = "Skipped: " + joinErrors(msg.errs)
	}
	m.attachInput.SetValue("")
	m.attachInput.Blur()
	m.mode = chatView
	m = m.syncInput().layout()
	return m, m.input.Focus()
}

// syncInput applies the gate and loading state to the text input
func (m Model) syncInput() Model {
	if m.chat == nil {
		return m
	}

	if m.chat.Gate() == session.Blocked {
		m.input.Placeholder = placeholderBlocked
	} else {
		m.input.Placeholder = placeholderReady
	}

	if m.chat.InputEnabled() && m.mode == chatView {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	return m
}

// layout sizes the conversation viewport to the space the chrome leaves
func (m Model) layout() Model {
	if m.chat == nil {
		return m
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height
	if height <= 0 {
		height = 24
	}

	chrome := lipgloss.Height(m.renderHeader(width)) +
		lipgloss.Height(m.renderInputBox(width)) + 1
	if banner := m.renderBanner(width); banner != "" {
		chrome += lipgloss.Height(banner)
	}
	if panel := m.renderFilesPanel(width); panel != "" {
		chrome += lipgloss.Height(panel)
	}

	vpHeight := height - chrome
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight

	return m.refreshConversation()
}

func (m Model) refreshConversation() Model {
	if m.chat == nil {
		return m
	}
	spin := ""
	if m.chat.Loading() {
		spin = m.spinner.View()
	}
	m.viewport.SetContent(renderConversation(m.chat.Messages(), m.chat.Loading(), spin, m.viewport.Width))
	m.viewport.GotoBottom()
	return m
}

func renderConversation(messages []models.Message, loading bool, spin string, width int) string {
	if width <= 0 {
		width = 80
	}
	wrapWidth := width * 3 / 4
	if wrapWidth < 40 {
		wrapWidth = 40
	}

	var b strings.Builder

	if len(messages) == 0 && !loading {
		b.WriteString("\n")
		b.WriteString(botStyle.Render("How can I help you today?"))
		b.WriteString("\n")
		b.WriteString(emptyStyle.Render("Upload at least one PDF to get started"))
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
	}

	for _, msg := range messages {
		var block strings.Builder
		if msg.Role == models.RoleUser {
			block.WriteString(timestampStyle.Render(msg.Clock()) + " " + userStyle.Render("You ◂"))
		} else {
			block.WriteString(botStyle.Render("▸ Assistant") + " " + timestampStyle.Render(msg.Clock()))
		}
		block.WriteString("\n")
		block.WriteString(wordwrap.String(msg.Content, wrapWidth))

		align := lipgloss.Left
		if msg.Role == models.RoleUser {
			align = lipgloss.Right
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Align(align).Render(block.String()))
		b.WriteString("\n\n")
	}

	if loading {
		b.WriteString(botStyle.Render("▸ Assistant"))
		b.WriteString("\n")
		b.WriteString(spin + " Thinking...")
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderHeader(width int) string {
	s := m.chat.Session()
	id := chatIDStyle.Render("Chat ID: " + s.ShortID())
	title := headerStyle.Render("ragchat")
	gap := width - lipgloss.Width(title) - lipgloss.Width(id)
	if gap < 1 {
		gap = 1
	}
	filler := lipgloss.NewStyle().Background(accent).Render(strings.Repeat(" ", gap))
	return title + filler + id
}

func (m Model) renderBanner(width int) string {
	if m.chat.Gate() != session.Blocked {
		return ""
	}
	body := warningStyle.Render("! You need to upload at least one PDF file") + "\n" +
		"Please upload at least one PDF document before you can start chatting with the assistant.\n" +
		hintStyle.Render("ctrl+o Upload Files")
	return bannerStyle.Width(width - 2).Render(body)
}

func (m Model) renderFilesPanel(width int) string {
	files := m.chat.Files()
	hint := m.chat.Session().FileHint
	if len(files) == 0 && hint == "" {
		return ""
	}

	var b strings.Builder
	if len(files) == 0 {
		b.WriteString(hintStyle.Render("▤ " + hint))
		return filesStyle.Width(width - 2).Render(b.String())
	}

	b.WriteString(hintStyle.Render(fmt.Sprintf("▤ %d %s uploaded", len(files), plural(len(files), "file"))))
	b.WriteString("  ")
	b.WriteString(metaStyle.Render("ctrl+o add more • ctrl+f manage • ctrl+x remove all"))
	for i, f := range files {
		if i == maxListedFiles {
			b.WriteString("\n" + metaStyle.Render(fmt.Sprintf("  +%d more", len(files)-maxListedFiles)))
			break
		}
		b.WriteString("\n  " + f.Name + " " + metaStyle.Render(humanize.Bytes(uint64(f.Size))))
	}
	return filesStyle.Width(width - 2).Render(b.String())
}

func (m Model) renderInputBox(width int) string {
	var b strings.Builder

	files := m.chat.Files()
	switch len(files) {
	case 0:
	case 1:
		b.WriteString(hintStyle.Render("▤ "+files[0].Name) + "\n")
	default:
		b.WriteString(hintStyle.Render(fmt.Sprintf("▤ %d PDF files uploaded", len(files))) + "\n")
	}

	if m.mode == attachView {
		b.WriteString(m.attachInput.View())
		b.WriteString("\n")
		b.WriteString(metaStyle.Render("enter attach • esc cancel • quote paths with spaces"))
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(m.renderFooter(width - 4))
	}

	return inputBoxStyle.Width(width - 2).Render(b.String())
}

func (m Model) renderFooter(width int) string {
	left := metaStyle.Render("Supported format: PDF files only")

	right := ""
	if !m.chat.Loading() {
		switch {
		case m.chat.Gate() == session.Blocked:
			right = "Please upload at least one PDF file"
		case m.chat.Input() != "":
			right = fmt.Sprintf("%d characters", utf8.RuneCountInString(m.chat.Input()))
		default:
			n := len(m.chat.Files())
			right = fmt.Sprintf("%d %s ready", n, plural(n, "file"))
		}
	}
	right = hintStyle.Render(right)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) viewChat() string {
	if m.chat == nil {
		return ""
	}
	width := m.viewport.Width

	parts := []string{m.renderHeader(width)}
	if banner := m.renderBanner(width); banner != "" {
		parts = append(parts, banner)
	}
	if panel := m.renderFilesPanel(width); panel != "" {
		parts = append(parts, panel)
	}
	parts = append(parts, m.viewport.View(), m.renderInputBox(width))

	switch {
	case m.warning != "":
		parts = append(parts, warningStyle.Render(m.warning))
	case m.status != "":
		parts = append(parts, metaStyle.Render(m.status))
	default:
		parts = append(parts, helpStyle.Render("enter send • ctrl+o attach • ctrl+y copy answer • ctrl+s save • f1 help • esc leave"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
