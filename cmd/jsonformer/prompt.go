package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lemon-mint/jsonformer/prompt"
	"github.com/lemon-mint/jsonformer/value"
)

func newPromptCmd(a *app) *cobra.Command {
	var schemaPath, instruction string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt for the first schema property without calling a model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}

			p, err := prompt.New(instruction, s, a.config.Generation.Template)
			if err != nil {
				return err
			}

			first := value.Path{value.Key(s.Properties[0].Name)}
			text, err := p.Assemble(value.NewObject(), value.SlotAt(first))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema file (.json, .yaml)")
	cmd.Flags().StringVar(&instruction, "prompt", "", "instruction placed before the schema")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}
