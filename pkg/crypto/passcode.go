package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/lborres/evently/core"
)

// PasscodeBytes is the entropy of a recovery passcode. Hex encoding doubles
// it into a 12 character string.
const PasscodeBytes = 6

// GeneratePasscode returns a fresh hex-encoded one-time passcode
func GeneratePasscode() (string, error) {
	buf := make([]byte, PasscodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrPasscodeGeneration, err)
	}
	return hex.EncodeToString(buf), nil
}

// VerifyPasscode compares a submitted passcode against the stored one in
// constant time. An empty stored passcode never matches.
func VerifyPasscode(submitted, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) == 1
}
