package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of s at the default cost.
func HashPassword(s string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
}

// ComparePassword reports a nil error when normal matches the stored hash.
func ComparePassword(hashed string, normal string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normal))
}
