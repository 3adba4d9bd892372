// Package imaptest runs an in-memory IMAP server for tests.
package imaptest

import (
	"bytes"
	"net"
	"strconv"
	"testing"
	"time"

	imapv2 "github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapserver"
	"github.com/emersion/go-imap/v2/imapserver/imapmemserver"
	"github.com/spf13/viper"

	"mailprobe/internal/config"
)

const (
	Username = "qa@example.com"
	Password = "secret"
	Mailbox  = "INBOX"
)

type Server struct {
	tb   testing.TB
	user *imapmemserver.User
	addr *net.TCPAddr
}

// NewServer starts a plaintext server on 127.0.0.1 with one user and an
// INBOX holding messages. It is shut down by tb.Cleanup.
func NewServer(tb testing.TB, messages ...[]byte) *Server {
	tb.Helper()

	mem := imapmemserver.New()
	user := imapmemserver.NewUser(Username, Password)
	if err := user.Create(Mailbox, nil); err != nil {
		tb.Fatalf("create mailbox: %v", err)
	}
	mem.AddUser(user)

	server := imapserver.New(&imapserver.Options{
		NewSession: func(*imapserver.Conn) (imapserver.Session, *imapserver.GreetingData, error) {
			return mem.NewSession(), nil, nil
		},
		InsecureAuth: true,
		Caps:         imapv2.CapSet{imapv2.CapIMAP4rev1: {}},
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("listen: %v", err)
	}
	go func() {
		_ = server.Serve(ln)
	}()
	tb.Cleanup(func() {
		_ = server.Close()
	})

	s := &Server{tb: tb, user: user, addr: ln.Addr().(*net.TCPAddr)}
	for _, raw := range messages {
		s.Append(raw)
	}
	return s
}

// Append delivers a raw message to the INBOX.
func (s *Server) Append(raw []byte) {
	s.tb.Helper()
	_, err := s.user.Append(Mailbox, bytes.NewReader(raw), &imapv2.AppendOptions{Time: time.Now()})
	if err != nil {
		s.tb.Fatalf("append: %v", err)
	}
}

// Provider returns configuration pointing at the server under the
// testing.email.* keys.
func (s *Server) Provider() config.Provider {
	v := viper.New()
	v.Set(config.KeyHost, s.addr.IP.String())
	v.Set(config.KeyPort, strconv.Itoa(s.addr.Port))
	v.Set(config.KeyUser, Username)
	v.Set(config.KeyPassword, Password)
	v.Set(config.KeySSL, false)
	return v
}

func (s *Server) Params() config.Params {
	p, err := config.ParamsFrom(s.Provider())
	if err != nil {
		s.tb.Fatalf("params: %v", err)
	}
	return p
}
