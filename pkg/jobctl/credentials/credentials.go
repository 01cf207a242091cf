// Package credentials keeps jobctl session tokens in the OS keyring, keyed by
// server URL.
package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const DefaultService = "jobctl"

// ErrNotFound is returned when no token is stored for a server.
var ErrNotFound = errors.New("no stored session")

type Store interface {
	Get(server string) (string, error)
	Set(server, token string) error
	Delete(server string) error
}

// Keyring stores tokens through the platform secret service.
type Keyring struct {
	Service string
}

func NewKeyring() *Keyring {
	return &Keyring{Service: DefaultService}
}

func (k *Keyring) service() string {
	if k.Service == "" {
		return DefaultService
	}
	return k.Service
}

func (k *Keyring) Get(server string) (string, error) {
	token, err := keyring.Get(k.service(), server)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read keyring: %w", err)
	}
	return token, nil
}

// Set stores token for server. An empty token deletes the entry.
func (k *Keyring) Set(server, token string) error {
	if token == "" {
		return k.Delete(server)
	}
	if err := keyring.Set(k.service(), server, token); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

// Delete removes the token for server. Deleting a missing entry is not an error.
func (k *Keyring) Delete(server string) error {
	err := keyring.Delete(k.service(), server)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keyring entry: %w", err)
	}
	return nil
}
