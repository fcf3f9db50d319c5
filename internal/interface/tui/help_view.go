package tui

import tea "github.com/charmbracelet/bubbletea"

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = m.prevMode
	if m.mode == chatView {
		return m.syncInput().layout(), nil
	}
	return m, nil
}

func (m Model) viewHelp() string {
	help := `
ragchat - Help
══════════════

LANDING
───────
  Enter, g     Get started in a new chat session
  o            Open a session by id, optionally with a file name hint
  ?            Show this help
  q            Quit

CHAT
────
  Type         Write a question (needs at least one PDF)
  Enter        Send the question with all attached PDFs
  ctrl+o       Attach PDFs (paths or globs, quote paths with spaces)
  ctrl+f       Manage attached files
  ctrl+x       Remove all files
  ctrl+y       Copy the last answer to the clipboard
  ctrl+s       Save the conversation as markdown
  PgUp/PgDn    Scroll the conversation
  f1           Show this help
  esc          Leave the session

FILES
─────
  j/k          Navigate files
  x            Remove selected file
  X            Remove all files
  a            Attach more
  esc          Back to chat

Press any key to return
`

	return helpStyle.Render(help)
}
