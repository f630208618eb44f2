// Command jsonformer fills a JSON schema with values generated by a language
// model backend.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/lemon-mint/jsonformer/provider/ollama"
	_ "github.com/lemon-mint/jsonformer/provider/openai"
)

type app struct {
	configPath string
	debug      bool

	config *fileConfig
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "jsonformer",
		Short: "Generate JSON that follows a schema with a language model",
		Long: `jsonformer writes the structure of a JSON document itself and asks the
model only for the values: strings, numbers, booleans and whether an array
gets another element.

Environment variables are read from .env when present. OPENAI_API_KEY and
OPENAI_BASE_URL configure the openai backend, OLLAMA_HOST the ollama backend.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}

			var err error
			if a.config, err = loadConfig(a.configPath); err != nil {
				return err
			}

			if a.debug {
				a.logger, err = zap.NewDevelopment()
			} else {
				a.logger, err = zap.NewProduction()
			}
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file with backend and generation settings")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "print every prompt and generated value")

	root.AddCommand(
		newGenerateCmd(a),
		newPromptCmd(a),
		newBackendsCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
