package cli

import (
	"github.com/spf13/cobra"

	"mailprobe/internal/mailcheck"
)

func newPurgeCmd(opts *rootOptions) *cobra.Command {
	var decoded bool

	cmd := &cobra.Command{
		Use:   "purge <subject>",
		Short: "Delete every mail whose subject contains the given text",
		Long: "Subjects are compared in their raw header form, so encoded-word subjects\n" +
			"only match their encoded spelling. Use --decoded to compare decoded subjects.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, closeFn, err := openResolver(cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			var refs []mailcheck.Ref
			if decoded {
				refs, err = resolver.DeleteAllMatchingDecoded(args[0])
			} else {
				refs, err = resolver.DeleteAllMatching(args[0])
			}
			if err != nil {
				return err
			}

			printDeleted(cmd.OutOrStdout(), refs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&decoded, "decoded", false, "Compare MIME-decoded subjects")

	return cmd
}
