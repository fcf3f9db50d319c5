package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/neilberkman/ragchat/internal/core/backend"
	"github.com/neilberkman/ragchat/internal/core/config"
	"github.com/neilberkman/ragchat/internal/core/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	backendURL  string
	logFile     string
	verbose     bool
	debug       bool
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with your PDFs through a RAG backend",
	Long: `ragchat - ask questions about your PDF documents

Attach PDFs to a chat session and ask questions; each question is sent with
the attached files to the retrieval-augmented generation backend.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to the TUI landing view if no subcommand specified
		return runTUI(cmd, nil)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "Backend base URL (overrides config and "+config.BackendURLEnv+")")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: ~/.config/ragchat/ragchat.log)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also log to stderr (headless commands only)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level")
}

// env bundles what every command needs
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	client *backend.Client
}

func setup(console io.Writer) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	logger, err := logging.New(logging.Options{
		FilePath: cfg.LogFile,
		Console:  console,
		Debug:    debug,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	return &env{
		cfg:    cfg,
		logger: logger,
		client: backend.NewClient(cfg.BackendURL, cfg.RequestTimeout, logger),
	}, nil
}

func (e *env) close() {
	_ = e.logger.Sync()
}

func consoleFor(w io.Writer) io.Writer {
	if verbose {
		return w
	}
	return nil
}
