package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/neilberkman/ragchat/internal/core/attach"
	"github.com/neilberkman/ragchat/internal/core/models"
	"github.com/neilberkman/ragchat/internal/core/session"
)

type errMsg struct {
	err error
}

// answerMsg completes the exchange started on chat
type answerMsg struct {
	chat   *session.Chat
	answer string
	err    error
}

// filesResolvedMsg carries files resolved for chat
type filesResolvedMsg struct {
	chat  *session.Chat
	files []models.Attachment
	errs  []error
}

type statusMsg string

func askBackend(asker session.Asker, chat *session.Chat, ex *session.Exchange) tea.Cmd {
	return func() tea.Msg {
		answer, err := asker.Ask(context.Background(), ex)
		return answerMsg{chat: chat, answer: answer, err: err}
	}
}

func resolveFiles(chat *session.Chat, line string) tea.Cmd {
	return func() tea.Msg {
		files, errs := attach.Resolve(attach.SplitPaths(line))
		return filesResolvedMsg{chat: chat, files: files, errs: errs}
	}
}

func copyLastAnswer(chat *session.Chat) tea.Cmd {
	return func() tea.Msg {
		answer, ok := chat.LastAnswer()
		if !ok {
			return statusMsg("Nothing to copy yet")
		}
		if err := clipboard.WriteAll(answer); err != nil {
			return statusMsg("Copy failed: " + err.Error())
		}
		return statusMsg("Copied last answer to clipboard")
	}
}

func exportTranscript(chat *session.Chat, tmpl string) tea.Cmd {
	return func() tea.Msg {
		path := fmt.Sprintf("chat-%s.md", chat.Session().ID)
		if err := session.ExportTranscript(chat, tmpl, path); err != nil {
			return statusMsg(err.Error())
		}
		return statusMsg("Saved transcript to " + path)
	}
}

// describeRejection turns a send rejection into footer text
func describeRejection(err error) string {
	switch {
	case errors.Is(err, session.ErrUploadRequired):
		return "Please upload at least one PDF file"
	case errors.Is(err, session.ErrExchangeInFlight):
		return "Still waiting for the previous answer"
	case errors.Is(err, session.ErrNothingToSend):
		return ""
	}
	return err.Error()
}

func joinErrors(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}
