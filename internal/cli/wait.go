package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWaitCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait <subject>",
		Short: "Wait for a mail whose subject contains the given text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, closeFn, err := openResolver(cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			ref, err := resolver.Wait(cmd.Context(), args[0], opts.poll())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ref.Seq)
			return nil
		},
	}
	return cmd
}
