package helpers

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt digest of password for storage.
// DefaultCost keeps the login path under interactive latency.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CompareHashAndPassword reports whether password matches the stored
// bcrypt digest.
func CompareHashAndPassword(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
