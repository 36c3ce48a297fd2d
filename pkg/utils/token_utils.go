package utils

import (
	"crypto/rand"
	"fmt"
)

// confirmationAlphabet is the character set of delivery confirmation
// codes. Codes must match ^[A-Z0-9]{6}$.
const confirmationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ConfirmationCodeLength is the fixed length of a confirmation code.
const ConfirmationCodeLength = 6

// GenerateConfirmationCode creates a random 6-character uppercase
// alphanumeric delivery confirmation code.
func GenerateConfirmationCode() (string, error) {
	b := make([]byte, ConfirmationCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	for i := range b {
		b[i] = confirmationAlphabet[int(b[i])%len(confirmationAlphabet)]
	}
	return string(b), nil
}
