package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the messages currently in the test mailbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, closeFn, err := openResolver(cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			mbox, err := resolver.Session.Get(true)
			if err != nil {
				return err
			}
			entries, err := mbox.List()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d messages\n", len(entries))
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	return cmd
}
