// Package mailcheck waits for, reads and removes test mail in an IMAP mailbox.
package mailcheck

import (
	"log/slog"

	"mailprobe/internal/config"
	"mailprobe/internal/imap"
)

// Mailbox is one open connection to the mailbox under test. Sequence
// numbers are valid until Expunge or Close.
type Mailbox interface {
	List() ([]imap.Entry, error)
	Fetch(seq uint32) (imap.Message, error)
	Remove(seq uint32) error
	Expunge() error
	Close() error
}

type Opener func(config.Params) (Mailbox, error)

// OpenIMAP opens a real IMAP connection.
func OpenIMAP(p config.Params) (Mailbox, error) {
	mbox, err := imap.Open(p)
	if err != nil {
		return nil, err
	}
	return mbox, nil
}

// Session owns at most one open Mailbox. Every new connection, and every
// expunge, starts a new generation; Refs from older generations are stale.
type Session struct {
	Config   config.Provider
	Open     Opener
	Reporter Reporter
	Logger   *slog.Logger

	mbox Mailbox
	gen  uint64
}

func NewSession(cfg config.Provider, reporter Reporter) *Session {
	return &Session{Config: cfg, Open: OpenIMAP, Reporter: reporter}
}

// Get returns the open mailbox, opening one when none is open or forceNew
// is set. A forced open closes the previous connection first.
func (s *Session) Get(forceNew bool) (Mailbox, error) {
	if s.mbox != nil && !forceNew {
		return s.mbox, nil
	}

	params, err := config.ParamsFrom(s.Config)
	if err != nil {
		report(s.Reporter, err.Error())
		return nil, err
	}

	s.release()

	open := s.Open
	if open == nil {
		open = OpenIMAP
	}
	mbox, err := open(params)
	if err != nil {
		return nil, err
	}
	s.mbox = mbox
	s.gen++
	s.logger().Debug("mailbox opened", "params", params.String(), "generation", s.gen)
	return mbox, nil
}

// Generation identifies the current connection state.
func (s *Session) Generation() uint64 {
	return s.gen
}

// Close releases the open mailbox, expunging pending removals.
func (s *Session) Close() error {
	if s.mbox == nil {
		return nil
	}
	err := s.mbox.Close()
	s.mbox = nil
	s.gen++
	return err
}

func (s *Session) expunge() error {
	if s.mbox == nil {
		return nil
	}
	if err := s.mbox.Expunge(); err != nil {
		return err
	}
	s.gen++
	return nil
}

func (s *Session) release() {
	if s.mbox == nil {
		return
	}
	if err := s.Close(); err != nil {
		s.logger().Warn("closing previous mailbox connection", "error", err)
	}
}

func (s *Session) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
