package cli

import (
	"fmt"
	"os"

	"github.com/harun/termai/internal/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective configuration",
	Long: `Show the configuration termai would run with after the config file,
.env file, environment and flags are applied. The API key is masked.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	configPath := config.NewLoader(cfgFile).GetConfigPath()
	source := "defaults"
	if _, err := os.Stat(configPath); err == nil {
		source = configPath
	}

	key := "missing (" + config.CredentialEnv(cfg.Provider) + ")"
	switch {
	case cfg.KeyFromEnv():
		key = "set (environment)"
	case cfg.APIKey != "":
		key = "set (config file)"
	}

	history := "unbounded"
	if cfg.History.MaxTurns > 0 {
		history = fmt.Sprintf("%d turns", cfg.History.MaxTurns)
	}

	fmt.Fprintf(out, "Config: %s\n", source)
	fmt.Fprintf(out, "Provider: %s\n", cfg.Provider)
	fmt.Fprintf(out, "Model: %s\n", cfg.Model)
	fmt.Fprintf(out, "API key: %s\n", key)
	fmt.Fprintf(out, "Max output tokens: %d\n", cfg.MaxOutputTokens)
	fmt.Fprintf(out, "History: %s\n", history)
	fmt.Fprintf(out, "Log file: %s\n", cfg.Logging.File)

	return nil
}
