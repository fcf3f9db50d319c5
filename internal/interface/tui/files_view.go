package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/neilberkman/ragchat/internal/core/models"
)

type fileListItem struct {
	file models.Attachment
}

func (i fileListItem) FilterValue() string {
	return i.file.Name
}

func (i fileListItem) Title() string {
	return i.file.Name
}

func (i fileListItem) Description() string {
	return fmt.Sprintf("%s | %s", humanize.Bytes(uint64(i.file.Size)), i.file.Path)
}

type fileDelegate struct {
	list.DefaultDelegate
}

func (d fileDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	f, ok := item.(fileListItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := f.Title()
	desc := f.Description()
	if index == m.Index() {
		title = selectedItemStyle.Render("✕ " + title)
		desc = selectedItemStyle.Faint(true).Render("  " + desc)
	} else {
		title = itemStyle.Render("  " + title)
		desc = itemStyle.Render("  " + desc)
	}

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func createFileList(files []models.Attachment, width, height int) list.Model {
	items := make([]list.Item, len(files))
	for i, f := range files {
		items[i] = fileListItem{file: f}
	}

	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	delegate := fileDelegate{DefaultDelegate: list.NewDefaultDelegate()}

	l := list.New(items, delegate, width, height-4) // Title and help lines
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return l
}

func (m Model) updateFiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = chatView
		return m.syncInput().layout(), nil

	case "x", "delete", "backspace":
		if err := m.chat.RemoveFile(m.files.Index()); err != nil {
			m.status = err.Error()
			return m, nil
		}
		remaining := m.chat.Files()
		if len(remaining) == 0 {
			m.mode = chatView
			return m.syncInput().layout(), nil
		}
		idx := m.files.Index()
		m.files = createFileList(remaining, m.width, m.height)
		if idx >= len(remaining) {
			idx = len(remaining) - 1
		}
		m.files.Select(idx)
		return m, nil

	case "X":
		m.chat.RemoveAllFiles()
		m.attachInput.SetValue("")
		m.mode = chatView
		return m.syncInput().layout(), nil

	case "a":
		if !m.canAttach() {
			return m, nil
		}
		m.mode = attachView
		return m.layout(), m.attachInput.Focus()
	}

	var cmd tea.Cmd
	m.files, cmd = m.files.Update(msg)
	return m, cmd
}

func (m Model) viewFiles() string {
	files := m.chat.Files()
	header := headerStyle.Render(fmt.Sprintf("Files in chat %s (%d)", m.chat.Session().ShortID(), len(files)))
	help := helpStyle.Render("↑/k up • ↓/j down • x remove • X remove all • a add • esc back")
	return header + "\n\n" + m.files.View() + "\n" + help
}
