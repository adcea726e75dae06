package testutil

import (
	"testing"
	"time"

	"devconnector/auth"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret-0123456789abcdef"

// Tokens returns a token service for tests.
func Tokens(t testing.TB) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(TestSecret, time.Hour)
	require.NoError(t, err)
	return ts
}

// Hasher returns a bcrypt hasher at the cheapest cost.
func Hasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(4)
}

// Person is a generated registrant.
type Person struct {
	Name     string
	Email    string
	Password string
}

func FakePerson() Person {
	return Person{
		Name:     gofakeit.Name(),
		Email:    gofakeit.Email(),
		Password: gofakeit.Password(true, true, true, false, false, 12),
	}
}
