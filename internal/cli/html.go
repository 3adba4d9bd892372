package cli

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
)

func newHTMLCmd(opts *rootOptions) *cobra.Command {
	var selector string
	var attr string

	cmd := &cobra.Command{
		Use:   "html <subject>",
		Short: "Wait for an HTML mail, query its body and delete it",
		Long: "Without --select the body HTML is printed. With --select every matching\n" +
			"element is printed on its own line, as text or as the value of --attr.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, closeFn, err := openResolver(cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			doc, err := resolver.HTML(cmd.Context(), args[0], opts.poll())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if selector == "" {
				body, err := doc.HTML()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, body)
				return nil
			}

			matches := doc.Find(selector)
			if matches.Length() == 0 {
				return fmt.Errorf("no element matches %q", selector)
			}
			matches.Each(func(_ int, s *goquery.Selection) {
				if attr == "" {
					fmt.Fprintln(out, strings.TrimSpace(s.Text()))
					return
				}
				value, _ := s.Attr(attr)
				fmt.Fprintln(out, value)
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&selector, "select", "", "CSS selector to query in the mail body")
	cmd.Flags().StringVar(&attr, "attr", "", "Print this attribute of matched elements instead of their text")

	return cmd
}
