package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer"
	"github.com/lemon-mint/jsonformer/format"
	"github.com/lemon-mint/jsonformer/former"
	"github.com/lemon-mint/jsonformer/lm"
	"github.com/lemon-mint/jsonformer/pconf"
)

type generateFlags struct {
	schemaPath  string
	instruction string
	backend     string
	model       string
	baseURL     string
	pretty      bool

	maxArrayLength       int
	maxNumberTokens      int
	maxStringTokenLength int
	temperature          float32
	seed                 int
}

func newGenerateCmd(a *app) *cobra.Command {
	f := &generateFlags{}
	defaults := former.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a JSON document for a schema",
		Example: `  jsonformer generate --schema person.yaml --prompt "Generate a person"
  jsonformer generate --backend openai --model gpt-3.5-turbo-instruct --schema person.json --prompt "..." --pretty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.schemaPath, "schema", "", "schema file (.json, .yaml)")
	flags.StringVar(&f.instruction, "prompt", "", "instruction placed before the schema")
	flags.StringVar(&f.backend, "backend", "", "model backend (see 'jsonformer backends')")
	flags.StringVar(&f.model, "model", "", "model name")
	flags.StringVar(&f.baseURL, "base-url", "", "backend server URL")
	flags.BoolVar(&f.pretty, "pretty", false, "print a highlighted tree instead of JSON")
	flags.IntVar(&f.maxArrayLength, "max-array-length", defaults.MaxArrayLength, "maximum number of array elements")
	flags.IntVar(&f.maxNumberTokens, "max-number-tokens", defaults.MaxNumberTokens, "tokens per number")
	flags.IntVar(&f.maxStringTokenLength, "max-string-token-length", defaults.MaxStringTokenLength, "tokens per string")
	flags.Float32Var(&f.temperature, "temperature", defaults.Temperature, "sampling temperature")
	flags.IntVar(&f.seed, "seed", 0, "sampling seed")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

// settings merges the config file with the flags the user set explicitly.
func (f *generateFlags) settings(cmd *cobra.Command, c *fileConfig) (backend, model, baseURL string, gen former.Config) {
	backend, model, baseURL, gen = c.Backend, c.Model, c.BaseURL, c.Generation

	flags := cmd.Flags()
	if flags.Changed("backend") {
		backend = f.backend
	}
	if flags.Changed("model") {
		model = f.model
	}
	if flags.Changed("base-url") {
		baseURL = f.baseURL
	}
	if flags.Changed("max-array-length") {
		gen.MaxArrayLength = f.maxArrayLength
	}
	if flags.Changed("max-number-tokens") {
		gen.MaxNumberTokens = f.maxNumberTokens
	}
	if flags.Changed("max-string-token-length") {
		gen.MaxStringTokenLength = f.maxStringTokenLength
	}
	if flags.Changed("temperature") {
		gen.Temperature = f.temperature
	}
	if flags.Changed("seed") {
		seed := f.seed
		gen.Seed = &seed
	}
	return backend, model, baseURL, gen
}

func runGenerate(cmd *cobra.Command, a *app, f *generateFlags) error {
	s, err := loadSchema(f.schemaPath)
	if err != nil {
		return err
	}

	backend, modelName, baseURL, gen := f.settings(cmd, a.config)
	if a.debug {
		gen.Debug = true
	}

	configs := []pconf.Config{
		pconf.WithLogger(a.logger),
		pconf.WithEncoding(a.config.Encoding),
		pconf.WithTopLogprobs(a.config.TopLogprobs),
	}
	if baseURL == "" && backend == "openai" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if baseURL != "" {
		configs = append(configs, pconf.WithBaseURL(baseURL))
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && backend == "openai" {
		configs = append(configs, pconf.WithAPIKey(key))
	}

	ctx := cmd.Context()
	client, err := jsonformer.NewClient(ctx, backend, configs...)
	if err != nil {
		return err
	}
	defer client.Close()

	model, err := client.NewModel(modelName)
	if err != nil {
		return err
	}
	defer model.Close()

	a.logger.Info("generating",
		zap.String("backend", backend),
		zap.String("model", modelName),
		zap.String("schema", f.schemaPath),
	)

	jf, err := former.New(lm.Serialize(model), client.Tokenizer(), s, f.instruction,
		former.WithConfig(gen),
		former.WithLogger(a.logger),
		former.WithDebugWriter(cmd.ErrOrStderr()),
	)
	if err != nil {
		return err
	}

	out, err := jf.Call(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if f.pretty {
		return format.Highlight(w, out)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
