package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/simone-trubian/medscribe/internal/core"
)

func newInterpretCmd(_ *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "interpret [FILE|-]",
		Short: "Interpret a saved completion without calling the model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}

			text, err := io.ReadAll(src)
			if err != nil {
				return err
			}

			outcome := core.Interpret(string(text))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"kind":    outcome.Kind(),
					"outcome": outcome,
				})
			}
			return renderOutcome(cmd.OutOrStdout(), outcome)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the outcome as JSON")
	return cmd
}
