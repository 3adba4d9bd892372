package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	KeyHost     = "testing.email.host"
	KeyPort     = "testing.email.port"
	KeyUser     = "testing.email.user"
	KeyPassword = "testing.email.password"
	KeySSL      = "testing.email.ssl"

	keyMailbox  = "testing.email.mailbox"
	keyInsecure = "testing.email.insecure_skip_verify"
)

// EmailKeys are the five optional mailbox settings.
var EmailKeys = []string{KeyHost, KeyPort, KeyUser, KeyPassword, KeySSL}

var ErrNoParams = errors.New("no mailbox parameters found in testing.email")

// Provider is the key/value configuration source. *viper.Viper satisfies it.
type Provider interface {
	IsSet(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
}

// Params are the resolved connection settings for one mailbox.
type Params struct {
	Host               string
	Port               int
	User               string
	Password           string
	SSL                bool
	Mailbox            string
	InsecureSkipVerify bool

	set []string
}

// Set lists the keys that were present in the provider, in EmailKeys order.
func (p Params) Set() []string {
	return p.set
}

func (p Params) Empty() bool {
	return len(p.set) == 0
}

// Addr is host:port. The port falls back to 993 with SSL and 143 without.
func (p Params) Addr() string {
	port := p.Port
	if port == 0 {
		port = 143
		if p.SSL {
			port = 993
		}
	}
	return fmt.Sprintf("%s:%d", p.Host, port)
}

func (p Params) String() string {
	return fmt.Sprintf("%s user=%s ssl=%t mailbox=%s", p.Addr(), p.User, p.SSL, p.Mailbox)
}

// ParamsFrom reads the optional mailbox keys. If none of them is set it
// returns ErrNoParams along with the empty Params.
func ParamsFrom(v Provider) (Params, error) {
	p := Params{Mailbox: DefaultMailbox}
	if v == nil {
		return p, ErrNoParams
	}

	if v.IsSet(KeyHost) {
		p.Host = strings.TrimSpace(v.GetString(KeyHost))
		p.set = append(p.set, KeyHost)
	}
	if v.IsSet(KeyPort) {
		p.Port = v.GetInt(KeyPort)
		p.set = append(p.set, KeyPort)
	}
	if v.IsSet(KeyUser) {
		p.User = v.GetString(KeyUser)
		p.set = append(p.set, KeyUser)
	}
	if v.IsSet(KeyPassword) {
		p.Password = v.GetString(KeyPassword)
		p.set = append(p.set, KeyPassword)
	}
	if v.IsSet(KeySSL) {
		p.SSL = v.GetBool(KeySSL)
		p.set = append(p.set, KeySSL)
	}

	if p.Empty() {
		return p, ErrNoParams
	}

	if v.IsSet(keyMailbox) {
		if name := strings.TrimSpace(v.GetString(keyMailbox)); name != "" {
			p.Mailbox = name
		}
	}
	if v.IsSet(keyInsecure) {
		p.InsecureSkipVerify = v.GetBool(keyInsecure)
	}

	return p, nil
}
