package mocks

import (
	"strings"

	"github.com/phrazzld/bankcards-api/internal/service/auth"
)

// MockPasswordHasher implements auth.PasswordHasher without bcrypt's cost.
// By default Hash prefixes the plaintext with "hashed:" and Compare checks that form.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

const fakeHashPrefix = "hashed:"

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return fakeHashPrefix + password, nil
}

// Compare implements auth.PasswordHasher.
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if !strings.HasPrefix(hashedPassword, fakeHashPrefix) || hashedPassword[len(fakeHashPrefix):] != password {
		return auth.ErrPasswordMismatch
	}
	return nil
}
