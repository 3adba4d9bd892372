package mailcheck

import (
	"testing"

	"github.com/spf13/viper"

	"mailprobe/internal/config"
	"mailprobe/internal/imap"
)

type fakeMessage struct {
	subject string
	body    string
	deleted bool
}

// fakeServer hands out connections that snapshot the mailbox at open time,
// like a SELECT on a real server.
type fakeServer struct {
	messages []*fakeMessage
	conns    []*fakeConn
	openErr  error
	onOpen   func(n int)
}

func (s *fakeServer) deliver(subject, body string) {
	s.messages = append(s.messages, &fakeMessage{subject: subject, body: body})
}

func (s *fakeServer) subjects() []string {
	out := []string{}
	for _, m := range s.messages {
		out = append(out, m.subject)
	}
	return out
}

func (s *fakeServer) open(config.Params) (Mailbox, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	if s.onOpen != nil {
		s.onOpen(len(s.conns) + 1)
	}
	conn := &fakeConn{srv: s, msgs: append([]*fakeMessage(nil), s.messages...)}
	s.conns = append(s.conns, conn)
	return conn, nil
}

type fakeConn struct {
	srv     *fakeServer
	msgs    []*fakeMessage
	fetches int
	closed  bool
}

func (c *fakeConn) List() ([]imap.Entry, error) {
	var entries []imap.Entry
	for i, m := range c.msgs {
		entries = append(entries, imap.Entry{Seq: uint32(i + 1), RawSubject: m.subject})
	}
	return entries, nil
}

func (c *fakeConn) Fetch(seq uint32) (imap.Message, error) {
	c.fetches++
	if seq == 0 || int(seq) > len(c.msgs) {
		return imap.Message{}, errNoSuchMessage
	}
	m := c.msgs[seq-1]
	return imap.Message{Seq: seq, Subject: m.subject, Body: []byte(m.body)}, nil
}

func (c *fakeConn) Remove(seq uint32) error {
	if seq == 0 || int(seq) > len(c.msgs) {
		return errNoSuchMessage
	}
	c.msgs[seq-1].deleted = true
	return nil
}

func (c *fakeConn) Expunge() error {
	c.msgs = keep(c.msgs)
	c.srv.messages = keep(c.srv.messages)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return c.Expunge()
}

func keep(msgs []*fakeMessage) []*fakeMessage {
	out := msgs[:0:0]
	for _, m := range msgs {
		if !m.deleted {
			out = append(out, m)
		}
	}
	return out
}

type fakeError string

func (e fakeError) Error() string { return string(e) }

const errNoSuchMessage = fakeError("no such message")

type failures struct {
	msgs []string
}

func (f *failures) Fail(msg string) {
	f.msgs = append(f.msgs, msg)
}

func mailboxConfig() *viper.Viper {
	v := viper.New()
	v.Set(config.KeyHost, "imap.test")
	v.Set(config.KeyUser, "qa@example.com")
	return v
}

func newTestResolver(t *testing.T, srv *fakeServer) (*Resolver, *failures) {
	t.Helper()
	rep := &failures{}
	session := NewSession(mailboxConfig(), rep)
	session.Open = srv.open
	t.Cleanup(func() { _ = session.Close() })
	return NewResolver(session), rep
}
