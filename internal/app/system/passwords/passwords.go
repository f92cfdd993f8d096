// Package passwords hashes and verifies local sign-in passwords with bcrypt.
package passwords

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor.
const Cost = 10

// MaxLength is the longest password bcrypt accepts, in bytes.
const MaxLength = 72

// Hash returns a salted bcrypt hash of plain. Every call uses a fresh salt,
// so hashing the same password twice yields different strings.
func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A mismatch is (false, nil);
// an error is returned only when hash is not a bcrypt hash.
func Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
