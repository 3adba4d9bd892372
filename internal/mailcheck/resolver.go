package mailcheck

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mailprobe/internal/email"
	"mailprobe/internal/imap"
)

var (
	ErrTimeout      = errors.New("timed out waiting for mail")
	ErrEmptyContent = errors.New("mail content is empty")
	ErrStaleRef     = errors.New("message reference belongs to a previous mailbox state")
)

// Ref points at a message by sequence number within one session generation.
type Ref struct {
	gen uint64
	Seq uint32
}

func (r Ref) Generation() uint64 {
	return r.gen
}

func (r Ref) String() string {
	return fmt.Sprintf("%d@%d", r.Seq, r.gen)
}

// Resolver finds messages by subject in the session's mailbox.
type Resolver struct {
	Session *Session
	Poll    PollOptions
	Logger  *slog.Logger
}

func NewResolver(s *Session) *Resolver {
	return &Resolver{Session: s, Poll: DefaultPollOptions(), Logger: s.Logger}
}

// Search opens a fresh connection and returns the first message whose
// MIME-decoded subject contains subject. found is false when none does.
func (r *Resolver) Search(subject string) (ref Ref, found bool, err error) {
	mbox, err := r.Session.Get(true)
	if err != nil {
		return Ref{}, false, err
	}
	entries, err := mbox.List()
	if err != nil {
		return Ref{}, false, err
	}
	for _, entry := range entries {
		if strings.Contains(email.DecodeSubject(entry.RawSubject), subject) {
			return r.ref(entry.Seq), true, nil
		}
	}
	return Ref{}, false, nil
}

// Fetch reads the referenced message on the current connection.
func (r *Resolver) Fetch(ref Ref) (imap.Message, error) {
	mbox, err := r.current(ref)
	if err != nil {
		return imap.Message{}, err
	}
	return mbox.Fetch(ref.Seq)
}

// Remove flags the referenced message deleted and expunges it. All Refs of
// the current generation, including ref, are stale afterwards.
func (r *Resolver) Remove(ref Ref) error {
	mbox, err := r.current(ref)
	if err != nil {
		return err
	}
	if err := mbox.Remove(ref.Seq); err != nil {
		return err
	}
	return r.Session.expunge()
}

func (r *Resolver) current(ref Ref) (Mailbox, error) {
	if ref.gen == 0 || ref.gen != r.Session.Generation() {
		return nil, fmt.Errorf("%w: %s", ErrStaleRef, ref)
	}
	return r.Session.Get(false)
}

func (r *Resolver) ref(seq uint32) Ref {
	return Ref{gen: r.Session.Generation(), Seq: seq}
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return r.Session.logger()
}
