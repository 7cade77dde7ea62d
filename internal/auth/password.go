package auth

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor. The hash output self-describes it,
// so verification never needs the constant.
const PasswordCost = 12

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash. Malformed
// hashes and empty input count as a failed verification, never an error.
func CheckPassword(stored, password string) bool {
	if stored == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
