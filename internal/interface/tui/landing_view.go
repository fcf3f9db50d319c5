package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/neilberkman/ragchat/internal/core/models"
	"github.com/neilberkman/ragchat/internal/core/session"
)

var features = []struct {
	title string
	body  string
}{
	{"Upload Documents", "Share your PDFs. The service processes and indexes your content for quick retrieval."},
	{"Semantic Search", "The RAG engine understands the meaning behind your questions and finds the most relevant passages."},
	{"AI Generation", "Answers are generated from your document content, grounded in what you uploaded."},
}

func (m Model) updateLanding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "g":
		// Get Started: fresh session id, straight to the chat view
		id := session.NewSessionID(m.opts.Store)
		m = m.openSession(models.Session{ID: id})
		return m, textinput.Blink

	case "o":
		m.mode = openView
		m.openInput.SetValue("")
		return m, m.openInput.Focus()

	case "?":
		m.prevMode = landingView
		m.mode = helpView
		return m, nil

	case "q", "esc":
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) updateOpen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.openInput.Blur()
		m.mode = landingView
		return m, nil

	case "enter":
		// "<session id> [file hint]"
		fields := strings.Fields(m.openInput.Value())
		if len(fields) == 0 {
			return m, nil
		}
		s := models.Session{ID: fields[0]}
		if len(fields) > 1 {
			s.FileHint = strings.Join(fields[1:], " ")
		}
		if err := s.Validate(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.openInput.Blur()
		m = m.openSession(s)
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.openInput, cmd = m.openInput.Update(msg)
	return m, cmd
}

// openSession replaces the current chat with one for s and shows it
func (m Model) openSession(s models.Session) Model {
	chat, err := session.NewChat(s, m.opts.Store, m.opts.Logger)
	if err != nil {
		m.status = err.Error()
		return m
	}

	m.chat = chat
	m.mode = chatView
	m.status = ""
	m.warning = ""
	m.input.SetValue("")
	m.attachInput.SetValue("")
	m.opts.Logger.Info("session opened")
	return m.syncInput().layout()
}

func (m Model) viewLanding() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	textWidth := width - 4
	if textWidth > 76 {
		textWidth = 76
	}

	var b strings.Builder

	b.WriteString(headerStyle.Width(width).Render("ragchat"))
	b.WriteString("\n\n")
	b.WriteString(badgeStyle.Render("AI-Powered Document Assistant"))
	b.WriteString("\n\n")
	b.WriteString(heroStyle.Render("Retrieve and ") + heroAccentStyle.Render("Generate") + "\n")
	b.WriteString(heroStyle.Render("Knowledge Instantly"))
	b.WriteString("\n\n")
	b.WriteString(bodyStyle.Width(textWidth).Render(
		"Upload your documents and get intelligent answers based on your content. " +
			"Retrieval combined with generative AI gives accurate, context-aware responses."))
	b.WriteString("\n\n")

	b.WriteString(heroStyle.Render("How It Works"))
	b.WriteString("\n\n")
	for _, f := range features {
		b.WriteString(featureTitleStyle.Render("• "+f.title) + "\n")
		b.WriteString(bodyStyle.Width(textWidth).PaddingLeft(2).Render(f.body) + "\n")
	}
	b.WriteString("\n")

	if m.mode == openView {
		b.WriteString(m.openInput.View())
		b.WriteString("\n")
		b.WriteString(metaStyle.Render("enter open • esc cancel"))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
			buttonStyle.Render("Get Started ›"), "  ",
			metaStyle.Render("enter start • o open session • ? help • q quit")))
	}

	if m.status != "" {
		b.WriteString("\n" + warningStyle.Render(m.status))
	}

	b.WriteString("\n\n")
	b.WriteString(metaStyle.Render("Backend: " + m.opts.BackendURL))
	b.WriteString("\n")
	b.WriteString(metaStyle.Render("Your documents are processed securely and not stored permanently"))

	return b.String()
}
