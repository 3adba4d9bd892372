package imap

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/emersion/go-imap"
)

type mockClient struct {
	messages   []string
	deleted    map[uint32]bool
	selectErr  error
	fetchCalls int
	expunged   int
	loggedOut  bool
}

func (m *mockClient) Login(username, password string) error { return nil }
func (m *mockClient) Logout() error {
	m.loggedOut = true
	return nil
}
func (m *mockClient) Select(name string, readOnly bool) (*imap.MailboxStatus, error) {
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	return &imap.MailboxStatus{Name: name, ReadOnly: readOnly, Messages: uint32(len(m.messages))}, nil
}
func (m *mockClient) Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error {
	defer close(ch)
	m.fetchCalls++
	headerOnly := strings.Contains(string(items[0]), "HEADER")
	for i, raw := range m.messages {
		seq := uint32(i + 1)
		if !seqset.Contains(seq) {
			continue
		}
		body := raw
		if headerOnly {
			header, _, _ := strings.Cut(raw, "\r\n\r\n")
			body = header + "\r\n\r\n"
		}
		msg := imap.NewMessage(seq, items)
		msg.Body = map[*imap.BodySectionName]imap.Literal{
			&imap.BodySectionName{}: bytes.NewBufferString(body),
		}
		ch <- msg
	}
	return nil
}
func (m *mockClient) Store(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error {
	if ch != nil {
		close(ch)
	}
	if m.deleted == nil {
		m.deleted = map[uint32]bool{}
	}
	for i := range m.messages {
		if seqset.Contains(uint32(i + 1)) {
			m.deleted[uint32(i+1)] = true
		}
	}
	return nil
}
func (m *mockClient) Expunge(ch chan uint32) error {
	if ch != nil {
		defer close(ch)
	}
	kept := m.messages[:0]
	for i, raw := range m.messages {
		if m.deleted[uint32(i+1)] {
			m.expunged++
			if ch != nil {
				ch <- uint32(len(kept) + 1)
			}
			continue
		}
		kept = append(kept, raw)
	}
	m.messages = kept
	m.deleted = nil
	return nil
}

func rawMessage(subject, body string) string {
	return "From: shop@example.com\r\nSubject: " + subject + "\r\n\r\n" + body
}

func TestListReturnsRawSubjects(t *testing.T) {
	mock := &mockClient{messages: []string{
		rawMessage("Welcome", "hi"),
		rawMessage("=?UTF-8?Q?Invoice_42?=", "due"),
		"Subject: Folded\r\n subject line\r\n\r\nbody",
	}}
	mbox, err := NewMailbox(mock, "INBOX")
	if err != nil {
		t.Fatalf("new mailbox: %v", err)
	}

	entries, err := mbox.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Seq != 1 || entries[0].RawSubject != "Welcome" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].RawSubject != "=?UTF-8?Q?Invoice_42?=" {
		t.Fatalf("subject should stay encoded, got %q", entries[1].RawSubject)
	}
	if entries[2].RawSubject != "Folded subject line" {
		t.Fatalf("expected unfolded subject, got %q", entries[2].RawSubject)
	}
}

func TestListEmptyMailboxSkipsFetch(t *testing.T) {
	mock := &mockClient{}
	mbox, err := NewMailbox(mock, "")
	if err != nil {
		t.Fatalf("new mailbox: %v", err)
	}
	if mbox.Name() != "INBOX" {
		t.Fatalf("expected default mailbox, got %q", mbox.Name())
	}

	entries, err := mbox.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %v", entries)
	}
	if mock.fetchCalls != 0 {
		t.Fatalf("expected no FETCH on empty mailbox")
	}
}

func TestFetchSplitsHeaderAndBody(t *testing.T) {
	mock := &mockClient{messages: []string{rawMessage("Code", "Your code=20is 7")}}
	mbox, err := NewMailbox(mock, "INBOX")
	if err != nil {
		t.Fatalf("new mailbox: %v", err)
	}

	msg, err := mbox.Fetch(1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if msg.Subject != "Code" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if string(msg.Body) != "Your code=20is 7" {
		t.Fatalf("body should be raw, got %q", msg.Body)
	}
	if msg.Header.Get("From") != "shop@example.com" {
		t.Fatalf("from = %q", msg.Header.Get("From"))
	}

	if _, err := mbox.Fetch(2); err == nil {
		t.Fatalf("expected error for out of range sequence number")
	}
}

func TestRemoveExpungesOnClose(t *testing.T) {
	mock := &mockClient{messages: []string{rawMessage("a", "1"), rawMessage("b", "2"), rawMessage("c", "3")}}
	mbox, err := NewMailbox(mock, "INBOX")
	if err != nil {
		t.Fatalf("new mailbox: %v", err)
	}

	if err := mbox.Remove(1); err != nil {
		t.Fatalf("remove 1: %v", err)
	}
	if err := mbox.Remove(3); err != nil {
		t.Fatalf("remove 3: %v", err)
	}
	if mock.expunged != 0 {
		t.Fatalf("expunge must wait for close")
	}

	msg, err := mbox.Fetch(3)
	if err != nil {
		t.Fatalf("sequence numbers should be stable before close: %v", err)
	}
	if msg.Subject != "c" {
		t.Fatalf("subject = %q", msg.Subject)
	}

	if err := mbox.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if mock.expunged != 2 || len(mock.messages) != 1 {
		t.Fatalf("expected 2 expunged and 1 left, got %d and %d", mock.expunged, len(mock.messages))
	}
	if !mock.loggedOut {
		t.Fatalf("expected logout to be called")
	}
}

func TestExpungeShrinksCount(t *testing.T) {
	mock := &mockClient{messages: []string{rawMessage("a", "1"), rawMessage("b", "2")}}
	mbox, err := NewMailbox(mock, "INBOX")
	if err != nil {
		t.Fatalf("new mailbox: %v", err)
	}
	if err := mbox.Remove(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := mbox.Expunge(); err != nil {
		t.Fatalf("expunge: %v", err)
	}
	if mbox.Count() != 1 {
		t.Fatalf("count = %d", mbox.Count())
	}
	msg, err := mbox.Fetch(1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if msg.Subject != "b" {
		t.Fatalf("expected remaining message to move to 1, got %q", msg.Subject)
	}
	if _, err := mbox.Fetch(2); err == nil {
		t.Fatalf("expected sequence 2 to be gone")
	}

	if err := mbox.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if mock.expunged != 1 {
		t.Fatalf("close should not expunge again, expunged %d", mock.expunged)
	}
}

func TestCloseWithoutRemovalDoesNotExpunge(t *testing.T) {
	mock := &mockClient{messages: []string{rawMessage("a", "1")}}
	mbox, err := NewMailbox(mock, "INBOX")
	if err != nil {
		t.Fatalf("new mailbox: %v", err)
	}
	if err := mbox.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(mock.messages) != 1 || !mock.loggedOut {
		t.Fatalf("unexpected state: %d messages, logged out %t", len(mock.messages), mock.loggedOut)
	}
}

func TestNewMailboxSelectError(t *testing.T) {
	mock := &mockClient{selectErr: errors.New("no such mailbox")}
	if _, err := NewMailbox(mock, "Missing"); err == nil || !strings.Contains(err.Error(), "select Missing") {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}
