package secrets

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"mailprobe/internal/config"
)

const (
	keyringPasswordEnv = "MAILPROBE_KEYRING_PASSWORD" //nolint:gosec // env var name, not a credential
	keyringBackendEnv  = "MAILPROBE_KEYRING_BACKEND"  //nolint:gosec // env var name, not a credential

	backendAuto = "auto"
)

var (
	ErrSecretNotFound        = errors.New("secret not found")
	errMissingUsername       = errors.New("missing username")
	errMissingPassword       = errors.New("missing password")
	errNoTTY                 = errors.New("no TTY available for keyring file backend password prompt")
	errInvalidKeyringBackend = errors.New("invalid keyring backend")
	errKeyringTimeout        = errors.New("keyring connection timed out")

	openKeyringFunc = openKeyring
	keyringOpenFunc = keyring.Open
)

// keyringOpenTimeout bounds keyring.Open on Linux, where D-Bus SecretService
// can hang when gnome-keyring is installed but not running.
const keyringOpenTimeout = 5 * time.Second

// resolveBackend picks the keyring backend from the environment, then the
// keyring_backend key of the config file, then "auto".
func resolveBackend() (string, error) {
	if v := normalize(os.Getenv(keyringBackendEnv)); v != "" {
		return v, nil
	}

	path, err := config.ConfigPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path) //nolint:gosec // config path is trusted
	if err != nil {
		if os.IsNotExist(err) {
			return backendAuto, nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}

	var fileCfg struct {
		KeyringBackend string `yaml:"keyring_backend"`
	}
	if err := yaml.Unmarshal(b, &fileCfg); err != nil {
		return "", fmt.Errorf("parse config %s: %w", path, err)
	}
	if v := normalize(fileCfg.KeyringBackend); v != "" {
		return v, nil
	}
	return backendAuto, nil
}

func allowedBackends(backend string) ([]keyring.BackendType, error) {
	switch backend {
	case "", backendAuto:
		return nil, nil
	case "keychain":
		return []keyring.BackendType{keyring.KeychainBackend}, nil
	case "file":
		return []keyring.BackendType{keyring.FileBackend}, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected %s, keychain, or file)", errInvalidKeyringBackend, backend, backendAuto)
	}
}

func filePasswordFunc(password string, passwordSet, isTTY bool) keyring.PromptFunc {
	// An empty passphrase set explicitly is valid.
	if passwordSet {
		return keyring.FixedStringPrompt(password)
	}
	if isTTY {
		return keyring.TerminalPrompt
	}
	return func(_ string) (string, error) {
		return "", fmt.Errorf("%w; set %s", errNoTTY, keyringPasswordEnv)
	}
}

func openKeyring() (keyring.Keyring, error) {
	dir, err := config.KeyringDir()
	if err != nil {
		return nil, err
	}

	backend, err := resolveBackend()
	if err != nil {
		return nil, fmt.Errorf("resolve keyring backend: %w", err)
	}
	backends, err := allowedBackends(backend)
	if err != nil {
		return nil, err
	}

	linuxAuto := runtime.GOOS == "linux" && backend == backendAuto
	dbusAddr := os.Getenv("DBUS_SESSION_BUS_ADDRESS")
	if linuxAuto && dbusAddr == "" {
		backends = []keyring.BackendType{keyring.FileBackend}
	}

	password, passwordSet := os.LookupEnv(keyringPasswordEnv)
	cfg := keyring.Config{
		ServiceName:              config.AppName,
		KeychainTrustApplication: false,
		AllowedBackends:          backends,
		FileDir:                  dir,
		FilePasswordFunc:         filePasswordFunc(password, passwordSet, term.IsTerminal(int(os.Stdin.Fd()))),
	}

	if linuxAuto && dbusAddr != "" {
		return openWithTimeout(cfg, keyringOpenTimeout)
	}

	ring, err := keyringOpenFunc(cfg)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ring, nil
}

func openWithTimeout(cfg keyring.Config, timeout time.Duration) (keyring.Keyring, error) {
	type result struct {
		ring keyring.Keyring
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		ring, err := keyringOpenFunc(cfg)
		ch <- result{ring, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("open keyring: %w", res.err)
		}
		return res.ring, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %v; set %s=file and %s=<password> to use encrypted file storage",
			errKeyringTimeout, timeout, keyringBackendEnv, keyringPasswordEnv)
	}
}

// SetPassword stores the mailbox password for user.
func SetPassword(user, password string) error {
	user = normalize(user)
	if user == "" {
		return errMissingUsername
	}
	if password == "" {
		return errMissingPassword
	}

	ring, err := openKeyringFunc()
	if err != nil {
		return err
	}
	item := keyring.Item{
		Key:   passwordKey(user),
		Data:  []byte(password),
		Label: config.AppName,
	}
	if err := ring.Set(item); err != nil {
		return fmt.Errorf("store secret: %w", err)
	}
	return nil
}

// GetPassword returns ErrSecretNotFound when nothing is stored for user.
func GetPassword(user string) (string, error) {
	user = normalize(user)
	if user == "" {
		return "", errMissingUsername
	}

	ring, err := openKeyringFunc()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(passwordKey(user))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrSecretNotFound
		}
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(item.Data), nil
}

func passwordKey(user string) string {
	return "mailbox:password:" + user
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
