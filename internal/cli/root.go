package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/harun/termai/internal/config"
	"github.com/harun/termai/internal/logger"
	"github.com/harun/termai/internal/metrics"
	"github.com/harun/termai/internal/render"
	"github.com/harun/termai/internal/repl"
	"github.com/harun/termai/internal/tracing"
	"github.com/harun/termai/pkg/agent"
	"github.com/harun/termai/pkg/session"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit statuses returned by Execute.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInterrupted = 130
)

var (
	cfgFile  string
	logLevel string
	model    string
)

// newLineReader builds the chat input source. Tests swap it for a script.
var newLineReader = func() repl.LineReader {
	return repl.NewPromptReader(nil, nil)
}

// rootCmd runs the chat when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "termai",
	Short: "termai - chat with an LLM from your terminal",
	Long: `termai is an interactive terminal assistant. It keeps the conversation
in memory for the length of a run and renders replies as markdown.
Type 'exit' or 'quit' (or press Ctrl-C at the prompt) to leave.`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

// Execute runs the root command under ctx and returns the process exit
// status. A missing credential prints its message to stdout and yields 1; an
// interrupt during a remote call yields 130.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	return exitCode(err, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.termai/termai.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model identifier, overrides the configured model")

	// Version template
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// missingKeyError carries the user-facing text for an absent credential.
type missingKeyError struct {
	message string
}

func (e *missingKeyError) Error() string { return e.message }

func exitCode(err error, stdout, stderr io.Writer) int {
	var mk *missingKeyError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &mk):
		fmt.Fprintln(stdout, mk.message)
		return ExitError
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
}

// app is what a command needs once configuration has been loaded.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Metrics
	provider agent.LLMProvider
	renderer *render.Renderer
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if model != "" {
		cfg.Model = model
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// setup loads and validates the configuration, then builds the logger and
// the provider. The caller closes app.log.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			return nil, &missingKeyError{message: config.MissingKeyMessage(cfg.Provider)}
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   cfg.Logging.Console,
		Pretty:    true,
		Redaction: cfg.Logging.Redaction,
		MaxSize:   cfg.Logging.MaxSize,
		MaxAge:    cfg.Logging.MaxAge,
		Compress:  cfg.Logging.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	factory := &agent.ProviderFactory{}
	provider, err := factory.NewProvider(cmd.Context(), agent.AuthProfile{
		ID:       "default",
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	renderer, err := render.New(render.Config{
		Style:    cfg.Render.Style,
		WordWrap: cfg.Render.WordWrap,
		Out:      cmd.OutOrStdout(),
	})
	if err != nil {
		log.Close()
		return nil, err
	}

	ctx := tracing.NewRunContext(cmd.Context())
	cmd.SetContext(ctx)

	runLog := tracing.Logger(ctx, log.GetZerolog())
	runLog.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Str("version", version).
		Msg("termai starting")

	return &app{
		cfg:      cfg,
		log:      log,
		metrics:  metrics.NewMetrics(),
		provider: provider,
		renderer: renderer,
	}, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Close()

	exec, err := agent.NewExecutor(agent.Config{
		Provider: a.provider,
		Agent: agent.AgentConfig{
			Model:        a.cfg.Model,
			Temperature:  a.cfg.Temperature,
			MaxTokens:    a.cfg.MaxOutputTokens,
			SystemPrompt: a.cfg.SystemPrompt,
		},
		Metrics: a.metrics,
		Logger:  a.log.Component("executor"),
	})
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	loop, err := repl.New(repl.Config{
		Reader:   newLineReader(),
		Sender:   exec,
		Renderer: a.renderer,
		Session:  session.Start(session.WithMaxTurns(a.cfg.History.MaxTurns)),
		Metrics:  a.metrics,
		Logger:   a.log.Component("repl"),
	})
	if err != nil {
		return err
	}

	return loop.Run(cmd.Context())
}
