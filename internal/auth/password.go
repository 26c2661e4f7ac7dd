package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt only reads the first 72 bytes of a password and x/crypto rejects
// longer input, so longer passwords are cut to that prefix first. Hashes
// written by other bcrypt implementations, which truncate the same way,
// still verify.
const bcryptMaxBytes = 72

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}
