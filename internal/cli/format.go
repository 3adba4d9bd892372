package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"mailprobe/internal/email"
	"mailprobe/internal/imap"
	"mailprobe/internal/mailcheck"
)

func printEntries(out io.Writer, entries []imap.Entry) {
	if len(entries) == 0 {
		return
	}
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tSUBJECT")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%d\t%s\n", entry.Seq, email.DecodeSubject(entry.RawSubject))
	}
	_ = tw.Flush()
}

func printDeleted(out io.Writer, refs []mailcheck.Ref) {
	fmt.Fprintf(out, "Deleted %d.\n", len(refs))
	for _, ref := range refs {
		fmt.Fprintln(out, ref.Seq)
	}
}
