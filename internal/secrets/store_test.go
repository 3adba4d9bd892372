package secrets

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

func withArrayKeyring(t *testing.T) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	prev := openKeyringFunc
	openKeyringFunc = func() (keyring.Keyring, error) { return ring, nil }
	t.Cleanup(func() { openKeyringFunc = prev })
}

func TestPasswordRoundTripNormalizesUser(t *testing.T) {
	withArrayKeyring(t)

	if err := SetPassword(" QA@Example.com ", "secret"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	got, err := GetPassword("qa@example.com")
	if err != nil {
		t.Fatalf("get password: %v", err)
	}
	if got != "secret" {
		t.Fatalf("got %q", got)
	}
}

func TestGetPasswordNotFound(t *testing.T) {
	withArrayKeyring(t)

	if _, err := GetPassword("nobody@example.com"); !errors.Is(err, ErrSecretNotFound) {
		t.Fatalf("expected ErrSecretNotFound, got %v", err)
	}
}

func TestSetPasswordValidation(t *testing.T) {
	withArrayKeyring(t)

	if err := SetPassword("", "x"); !errors.Is(err, errMissingUsername) {
		t.Fatalf("expected errMissingUsername, got %v", err)
	}
	if err := SetPassword("qa", ""); !errors.Is(err, errMissingPassword) {
		t.Fatalf("expected errMissingPassword, got %v", err)
	}
}

func TestAllowedBackends(t *testing.T) {
	if b, err := allowedBackends("auto"); err != nil || b != nil {
		t.Fatalf("auto: %v %v", b, err)
	}
	if b, err := allowedBackends("file"); err != nil || len(b) != 1 || b[0] != keyring.FileBackend {
		t.Fatalf("file: %v %v", b, err)
	}
	if _, err := allowedBackends("vault"); !errors.Is(err, errInvalidKeyringBackend) {
		t.Fatalf("expected errInvalidKeyringBackend, got %v", err)
	}
}

func TestResolveBackendPrefersEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(keyringBackendEnv, " FILE ")

	got, err := resolveBackend()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "file" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveBackendDefaultsToAuto(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(keyringBackendEnv, "")

	got, err := resolveBackend()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != backendAuto {
		t.Fatalf("got %q", got)
	}
}
