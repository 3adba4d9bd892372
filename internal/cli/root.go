package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	timeout  time.Duration
	interval time.Duration
	logLevel string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "mailprobe",
		Short:        "mailprobe checks an IMAP test mailbox for mail sent by the system under test",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "How long to wait for a matching mail (default from poll.timeout)")
	cmd.PersistentFlags().DurationVar(&opts.interval, "interval", 0, "Pause between mailbox scans (default from poll.interval)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from log.level)")

	cmd.AddCommand(newWaitCmd(opts))
	cmd.AddCommand(newTextCmd(opts))
	cmd.AddCommand(newHTMLCmd(opts))
	cmd.AddCommand(newPurgeCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newConfigCmd())

	cmd.SetErr(os.Stderr)
	cmd.SetOut(os.Stdout)

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
