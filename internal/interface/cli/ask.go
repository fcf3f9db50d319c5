package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/neilberkman/ragchat/internal/core/attach"
	"github.com/neilberkman/ragchat/internal/core/models"
	"github.com/neilberkman/ragchat/internal/core/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	askAttach     []string
	askQuestion   string
	askFileHint   string
	askTranscript string
)

var askCmd = &cobra.Command{
	Use:   "ask [session-id]",
	Short: "Ask one question without the TUI",
	Long: `Attach PDFs and ask a single question, printing the answer.

Without a session id a new one is generated and printed to stderr.
At least one PDF (or a --file hint) is required before asking. With no
--question the attached file names are sent as the message.

Examples:
  ragchat ask --attach report.pdf -q "Summarize the findings"
  ragchat ask 482913 --attach "docs/*.pdf" -q "Which year had the highest revenue?"
  ragchat ask 482913 --file report.pdf -q "And the lowest?" --transcript chat.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringArrayVarP(&askAttach, "attach", "a", nil, "PDF file or glob to attach (repeatable)")
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "Question to ask")
	askCmd.Flags().StringVar(&askFileHint, "file", "", "File name hint; satisfies the upload requirement without attaching")
	askCmd.Flags().StringVar(&askTranscript, "transcript", "", "Write the conversation as markdown to this path")
}

// recordingAsker keeps the transport error the chat turns into a message
type recordingAsker struct {
	session.Asker
	err error
}

func (r *recordingAsker) Ask(ctx context.Context, ex *session.Exchange) (string, error) {
	answer, err := r.Asker.Ask(ctx, ex)
	r.err = err
	return answer, err
}

func runAsk(cmd *cobra.Command, args []string) error {
	e, err := setup(consoleFor(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer e.close()

	s := models.Session{FileHint: askFileHint}
	if len(args) == 1 {
		s.ID = args[0]
	} else {
		s.ID = session.NewSessionID(nil)
		fmt.Fprintf(cmd.ErrOrStderr(), "session %s\n", s.ID)
	}

	chat, err := session.NewChat(s, nil, e.logger)
	if err != nil {
		return err
	}

	if len(askAttach) > 0 {
		files, errs := attach.Resolve(askAttach)
		for _, err := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping: %v\n", err)
		}
		if err := chat.AddFiles(files); err != nil {
			if errors.Is(err, session.ErrNoPDF) {
				return errors.New(session.NoPDFWarning)
			}
			return err
		}
	}

	chat.SetInput(askQuestion)

	var spinner *session.Spinner
	if isTerminal(os.Stderr) && !verbose {
		spinner = session.NewSpinner(os.Stderr, "Thinking...")
		spinner.Start()
	}

	asker := &recordingAsker{Asker: e.client}
	sendErr := chat.Send(cmd.Context(), asker)

	if spinner != nil {
		spinner.Stop()
	}
	if sendErr != nil {
		return sendErr
	}

	answer, _ := chat.LastAnswer()
	fmt.Fprintln(cmd.OutOrStdout(), answer)

	if askTranscript != "" {
		if err := session.ExportTranscript(chat, e.cfg.TranscriptTemplate, askTranscript); err != nil {
			return err
		}
	}

	if asker.err != nil {
		e.logger.Debug("ask failed", zap.Error(asker.err))
		return fmt.Errorf("backend request failed: %w", asker.err)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
