package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neilberkman/ragchat/internal/core/models"
	"github.com/neilberkman/ragchat/internal/core/session"
	"github.com/neilberkman/ragchat/internal/interface/tui"
	"github.com/spf13/cobra"
)

var openFileHint string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long:  "Launch the terminal UI on the landing view",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, nil)
	},
}

var openCmd = &cobra.Command{
	Use:   "open <session-id>",
	Short: "Open a chat session in the terminal UI",
	Long: `Open the chat view for a session id directly.

--file gives a file name hint: it lets you chat without attaching a file,
for sessions whose documents the backend already holds.

Examples:
  ragchat open 482913
  ragchat open 482913 --file report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &models.Session{ID: args[0], FileHint: openFileHint}
		if err := s.Validate(); err != nil {
			return err
		}
		return runTUI(cmd, s)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().StringVar(&openFileHint, "file", "", "File name hint shown when no files are attached")
}

func runTUI(cmd *cobra.Command, start *models.Session) error {
	// Never log to the terminal while the TUI owns it
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.close()

	model := tui.New(tui.Options{
		Asker:              e.client,
		Store:              session.NewMemoryStore(),
		Logger:             e.logger,
		BackendURL:         e.cfg.BackendURL,
		TranscriptTemplate: e.cfg.TranscriptTemplate,
		Start:              start,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
