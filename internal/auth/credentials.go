package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier hashes submitted passwords and checks them against
// stored bcrypt digests.
type CredentialVerifier struct {
	cost int
}

// NewCredentialVerifier constructs a verifier using the default bcrypt cost.
func NewCredentialVerifier() *CredentialVerifier {
	return &CredentialVerifier{cost: bcrypt.DefaultCost}
}

// Hash derives a storable digest from a plaintext password.
func (v *CredentialVerifier) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), v.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Compare reports whether the plaintext password matches the stored digest.
func (v *CredentialVerifier) Compare(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
