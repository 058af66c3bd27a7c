package security

import "golang.org/x/crypto/bcrypt"

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), 12)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// HashLinkPassword hashes the shared secret gating a protected link.
// Cheaper cost than account passwords: these secrets are low-value and
// checked on the hot public path.
func HashLinkPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), 8)
	return string(b), err
}
