package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newPromptCmd(a *app) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt that would be sent for a note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("note") {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				note = string(b)
			}

			prompts, err := a.promptBuilder()
			if err != nil {
				return err
			}
			p, err := prompts.BuildPrompt(note)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# model: %s  template: %s\n", p.Model, p.TemplateVersion)
			fmt.Fprintf(out, "# system\n%s\n\n# user\n%s", p.System, p.User)
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "note text (default: read stdin)")
	return cmd
}
