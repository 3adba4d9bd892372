package imap

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"mailprobe/internal/config"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message/textproto"
)

// Entry is one message of a scan, in the order the server reported it.
type Entry struct {
	Seq        uint32
	RawSubject string
}

// Message is a fetched message. Body is the raw content after the header,
// without any transfer decoding.
type Message struct {
	Seq     uint32
	Subject string
	Header  textproto.Header
	Body    []byte
}

// Mailbox is one selected mailbox on one connection. Sequence numbers it
// hands out are only meaningful on this connection.
type Mailbox struct {
	client  Client
	name    string
	count   uint32
	removed bool
}

// Open connects with p and selects p.Mailbox read-write.
func Open(p config.Params) (*Mailbox, error) {
	c, err := Connect(p)
	if err != nil {
		return nil, err
	}
	mbox, err := NewMailbox(c, p.Mailbox)
	if err != nil {
		_ = c.Logout()
		return nil, err
	}
	return mbox, nil
}

// NewMailbox selects name on an already authenticated client.
func NewMailbox(c Client, name string) (*Mailbox, error) {
	if name == "" {
		name = config.DefaultMailbox
	}
	status, err := c.Select(name, false)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", name, err)
	}
	return &Mailbox{client: c, name: name, count: status.Messages}, nil
}

func (m *Mailbox) Name() string {
	return m.name
}

// Count is the number of messages reported when the mailbox was selected.
func (m *Mailbox) Count() uint32 {
	return m.count
}

// List returns sequence number and undecoded Subject header of every message.
func (m *Mailbox) List() ([]Entry, error) {
	if m.count == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddRange(1, m.count)
	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.HeaderSpecifier},
		Peek:         true,
	}
	items := []imap.FetchItem{section.FetchItem()}

	ch := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- m.client.Fetch(seqset, items, ch)
	}()

	entries := make([]Entry, 0, m.count)
	var parseErr error
	for msg := range ch {
		if msg == nil || parseErr != nil {
			continue
		}
		lit := firstLiteral(msg)
		if lit == nil {
			entries = append(entries, Entry{Seq: msg.SeqNum})
			continue
		}
		header, err := textproto.ReadHeader(bufio.NewReader(lit))
		if err != nil {
			parseErr = fmt.Errorf("parse header of message %d: %w", msg.SeqNum, err)
			continue
		}
		entries = append(entries, Entry{Seq: msg.SeqNum, RawSubject: headerValue(header, "Subject")})
	}
	if err := <-done; err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return entries, nil
}

// Fetch reads the whole message without setting \Seen.
func (m *Mailbox) Fetch(seq uint32) (Message, error) {
	if seq == 0 || seq > m.count {
		return Message{}, fmt.Errorf("message %d not found", seq)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(seq)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem()}

	ch := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- m.client.Fetch(seqset, items, ch)
	}()

	var lit imap.Literal
	for msg := range ch {
		if msg != nil && lit == nil {
			lit = firstLiteral(msg)
		}
	}
	if err := <-done; err != nil {
		return Message{}, err
	}
	if lit == nil {
		return Message{}, fmt.Errorf("message %d body not available", seq)
	}

	br := bufio.NewReader(lit)
	header, err := textproto.ReadHeader(br)
	if err != nil {
		return Message{}, fmt.Errorf("parse header of message %d: %w", seq, err)
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Seq:     seq,
		Subject: headerValue(header, "Subject"),
		Header:  header,
		Body:    body,
	}, nil
}

// Remove flags the message \Deleted. Sequence numbers stay stable until
// Expunge or Close.
func (m *Mailbox) Remove(seq uint32) error {
	if seq == 0 || seq > m.count {
		return fmt.Errorf("message %d not found", seq)
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(seq)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := m.client.Store(seqset, item, []interface{}{imap.DeletedFlag}, nil); err != nil {
		return err
	}
	m.removed = true
	return nil
}

// Expunge permanently removes flagged messages. Sequence numbers handed out
// before the call are no longer valid afterwards.
func (m *Mailbox) Expunge() error {
	expunge := make(chan uint32)
	done := make(chan error, 1)
	go func() {
		done <- m.client.Expunge(expunge)
	}()
	var n uint32
	for range expunge {
		n++
	}
	if err := <-done; err != nil {
		return err
	}
	if n > m.count {
		n = m.count
	}
	m.count -= n
	m.removed = false
	return nil
}

// Close expunges pending removals and logs out.
func (m *Mailbox) Close() error {
	var err error
	if m.removed {
		err = m.Expunge()
	}
	if logoutErr := m.client.Logout(); err == nil {
		err = logoutErr
	}
	return err
}

func firstLiteral(msg *imap.Message) imap.Literal {
	for _, lit := range msg.Body {
		if lit != nil {
			return lit
		}
	}
	return nil
}

var unfolder = strings.NewReplacer("\r\n", "", "\n", "")

func headerValue(h textproto.Header, key string) string {
	return strings.TrimSpace(unfolder.Replace(h.Get(key)))
}
