package server

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	ts := NewTokenService("test-secret")
	sessionID := uuid.New()

	token, err := ts.Generate(sessionID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

func TestTokenService_RejectsEmptyToken(t *testing.T) {
	ts := NewTokenService("test-secret")

	_, err := ts.Validate("")
	assert.Error(t, err)
}

func TestTokenService_RejectsTamperedToken(t *testing.T) {
	ts := NewTokenService("test-secret")

	token, err := ts.Generate(uuid.New())
	require.NoError(t, err)

	_, err = ts.Validate(token + "x")
	assert.Error(t, err)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	signer := NewTokenService("secret-a")
	verifier := NewTokenService("secret-b")

	token, err := signer.Generate(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}
