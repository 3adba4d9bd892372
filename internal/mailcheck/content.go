package mailcheck

import (
	"context"
	"fmt"

	"mailprobe/internal/email"
)

// Content is the decoded body of a consumed message. Document is set only
// for structured extraction.
type Content struct {
	Text     string
	Document *email.Document
}

// Content waits for a message matching subject, decodes its quoted-printable
// body, deletes it, and optionally parses the <body> fragment as HTML.
//
// Empty content is reported and returned as ErrEmptyContent; the message is
// kept in that case. A missing <body> fragment yields
// email.ErrMalformedContent after the message has been deleted.
func (r *Resolver) Content(ctx context.Context, subject string, structured bool, opts PollOptions) (Content, error) {
	ref, err := r.Wait(ctx, subject, opts)
	if err != nil {
		return Content{}, err
	}

	msg, err := r.Fetch(ref)
	if err != nil {
		return Content{}, err
	}
	text, err := email.DecodeQuotedPrintable(msg.Body)
	if err != nil {
		return Content{}, err
	}
	if text == "" {
		report(r.Session.Reporter, fmt.Sprintf("Mail with subject '%s' has empty content", subject))
		return Content{}, fmt.Errorf("%w: subject %q", ErrEmptyContent, subject)
	}

	if err := r.Remove(ref); err != nil {
		return Content{}, err
	}
	r.logger().Debug("mail consumed", "subject", subject, "seq", ref.Seq, "bytes", len(text))

	content := Content{Text: text}
	if !structured {
		return content, nil
	}
	doc, err := email.ParseDocument(text)
	if err != nil {
		return Content{}, fmt.Errorf("mail with subject %q: %w", subject, err)
	}
	content.Document = doc
	return content, nil
}

// Text returns the decoded plain content.
func (r *Resolver) Text(ctx context.Context, subject string, opts PollOptions) (string, error) {
	content, err := r.Content(ctx, subject, false, opts)
	return content.Text, err
}

// HTML returns the content as a queryable document.
func (r *Resolver) HTML(ctx context.Context, subject string, opts PollOptions) (*email.Document, error) {
	content, err := r.Content(ctx, subject, true, opts)
	return content.Document, err
}
