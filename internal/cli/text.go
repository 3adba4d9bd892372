package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTextCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "text <subject>",
		Short: "Wait for a mail, print its decoded content and delete it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, closeFn, err := openResolver(cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			text, err := resolver.Text(cmd.Context(), args[0], opts.poll())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	return cmd
}
