package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mailprobe/internal/config"
	"mailprobe/internal/secrets"
)

var (
	setPassword = secrets.SetPassword
	isTerminal  = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	readSecret  = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Mailbox credentials and config setup",
	}
	cmd.AddCommand(newAuthLoginCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		host          string
		port          int
		user          string
		password      string
		ssl           bool
		insecure      bool
		mailbox       string
		storePassword bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store test mailbox parameters and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load()
			if err != nil {
				return err
			}
			email := &cfg.Testing.Email

			if cmd.Flags().Changed("host") {
				email.Host = host
			}
			if cmd.Flags().Changed("port") {
				email.Port = port
			}
			if cmd.Flags().Changed("user") {
				email.User = user
			}
			if cmd.Flags().Changed("ssl") {
				email.SSL = ssl
			}
			if cmd.Flags().Changed("insecure") {
				email.InsecureSkipVerify = insecure
			}
			if cmd.Flags().Changed("mailbox") {
				email.Mailbox = mailbox
			}
			if cmd.Flags().Changed("password") {
				email.Password = password
			} else if storePassword && isTerminal() {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				secret, err := readSecret()
				fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				email.Password = strings.TrimSpace(string(secret))
			}

			if email.Host == "" {
				return fmt.Errorf("missing mailbox host; pass --host")
			}

			if storePassword {
				if email.User == "" {
					return fmt.Errorf("--store-password needs a user; pass --user")
				}
				if err := setPassword(email.User, email.Password); err != nil {
					return err
				}
				email.Password = ""
				fmt.Fprintf(cmd.OutOrStdout(), "Password for %s stored in keyring\n", email.User)
			}

			path, err := config.Save(cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "IMAP host")
	cmd.Flags().IntVar(&port, "port", 0, "IMAP port (default 993 with --ssl, else 143)")
	cmd.Flags().StringVar(&user, "user", "", "Mailbox user")
	cmd.Flags().StringVar(&password, "password", "", "Mailbox password")
	cmd.Flags().BoolVar(&ssl, "ssl", false, "Connect with implicit TLS")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")
	cmd.Flags().StringVar(&mailbox, "mailbox", "", "Mailbox to select (default INBOX)")
	cmd.Flags().BoolVar(&storePassword, "store-password", false, "Keep the password in the system keyring instead of the config file")

	return cmd
}
