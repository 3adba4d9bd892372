package imap

import (
	"crypto/tls"

	"mailprobe/internal/config"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"
)

// Client is the subset of the go-imap client used by Mailbox.
type Client interface {
	Login(username, password string) error
	Logout() error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Store(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	Expunge(ch chan uint32) error
}

// Connect dials and authenticates. Dial and login errors are returned as-is.
func Connect(p config.Params) (Client, error) {
	var c *imapclient.Client
	var err error

	if p.SSL {
		tlsConfig := &tls.Config{
			ServerName:         p.Host,
			InsecureSkipVerify: p.InsecureSkipVerify, //nolint:gosec // opt-in for test mail servers
		}
		c, err = imapclient.DialTLS(p.Addr(), tlsConfig)
	} else {
		c, err = imapclient.Dial(p.Addr())
	}
	if err != nil {
		return nil, err
	}

	if p.User != "" || p.Password != "" {
		if err := c.Login(p.User, p.Password); err != nil {
			_ = c.Logout()
			return nil, err
		}
	}

	return c, nil
}
