package cli

import (
	"fmt"

	"github.com/harun/termai/internal/render"
	"github.com/harun/termai/pkg/agent"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models that support content generation",
	Long: `List the models the configured provider can use for chat, with their
display names and supported methods. Useful for picking a --model value.`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Close()

	lister, ok := a.provider.(agent.ModelLister)
	if !ok {
		return fmt.Errorf("provider %s cannot list models", a.provider.Provider())
	}

	models, err := lister.ListModels(cmd.Context())
	if err != nil {
		text, reason := agent.Describe(a.provider.Label(), err)
		a.log.Warn().Err(err).Str("reason", string(reason)).Msg("Model listing failed")
		return fmt.Errorf("%s", text)
	}

	if err := a.renderer.Notice("Listing available models:"); err != nil {
		return err
	}

	entries := make([]render.Model, 0, len(models))
	for _, m := range models {
		entries = append(entries, render.Model{
			Name:             m.Name,
			DisplayName:      m.DisplayName,
			SupportedMethods: m.SupportedMethods,
		})
	}

	a.log.Info().Int("count", len(entries)).Msg("Listed models")
	return a.renderer.Models(entries)
}
