package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// MinSigningKeyBytes is the minimum HMAC key size (256 bits).
const MinSigningKeyBytes = 32

var ErrSigningKeyTooShort = fmt.Errorf("signing key must be at least %d bytes", MinSigningKeyBytes)

// DecodeSigningKey decodes a base64 signing secret and rejects keys shorter than 256 bits.
func DecodeSigningKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, errors.New("signing key is empty")
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing key: %w", err)
	}

	if len(key) < MinSigningKeyBytes {
		return nil, ErrSigningKeyTooShort
	}

	return key, nil
}
