package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName    = "lull"
	healthTokenKey = "health-export-token"
)

// ErrNotFound is returned when no credential has been stored yet.
var ErrNotFound = errors.New("credential not found")

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/lull/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("lull-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// HealthToken retrieves the health-export API token from the system keyring.
func HealthToken() (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(healthTokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("getting health token: %w", err)
	}

	return string(item.Data), nil
}

// SetHealthToken stores the health-export API token in the system keyring.
func SetHealthToken(token string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  healthTokenKey,
		Data: []byte(token),
	})
	if err != nil {
		return fmt.Errorf("setting health token: %w", err)
	}

	return nil
}

// DeleteHealthToken removes the health-export API token from the system keyring.
func DeleteHealthToken() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(healthTokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting health token: %w", err)
	}

	return nil
}
