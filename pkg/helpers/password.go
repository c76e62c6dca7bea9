package helpers

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// decoyHash is verified against when no account exists, so an unknown email
// costs the same bcrypt work as a wrong password.
var decoyHash = sync.OnceValue(func() []byte {
	b, _ := bcrypt.GenerateFromPassword([]byte("evcharge-decoy"), bcrypt.DefaultCost)
	return b
})

// HashPassword returns the bcrypt hash of plain at the default cost.
func HashPassword(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword reports whether plain matches hash. An empty hash
// is checked against a decoy and always fails.
func CompareHashAndPassword(hash string, plain string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(decoyHash(), []byte(plain))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
