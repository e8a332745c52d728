package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const saltBytes = 16

// PasswordHasher derives bcrypt hashes from a password and a per-user salt.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordHasher{cost: cost}, nil
}

// GenerateSalt returns a fresh random salt encoded as text.
func (h *PasswordHasher) GenerateSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random salt: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hash keys an HMAC-SHA256 of the password with the salt and runs the result
// through bcrypt. The bcrypt input is always 44 bytes, under its 72 byte limit.
func (h *PasswordHasher) Hash(password, salt string) (string, error) {
	if salt == "" {
		return "", errors.New("salt must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword(preHash(password, salt), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password and salt produce hash.
func (h *PasswordHasher) Verify(password, salt, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), preHash(password, salt)) == nil
}

func preHash(password, salt string) []byte {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(password))
	sum := mac.Sum(nil)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum)
	return out
}
