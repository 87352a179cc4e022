package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("res-1", "block-9/file.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	resourceID, fileRef, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "res-1", resourceID)
	require.Equal(t, "block-9/file.pdf", fileRef)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("res-1", "block-9/file.pdf")
	require.NoError(t, err)

	other, _, err := signer.Generate("res-2", "block-9/other.pdf")
	require.NoError(t, err)

	// Splice the signature of one token onto another.
	tampered := token[:len(token)-10] + other[len(other)-10:]
	_, _, _, err = signer.Parse(tampered, false)
	require.Error(t, err)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("res-1", "block-9/file.pdf")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	resourceID, fileRef, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "res-1", resourceID)
	require.Equal(t, "block-9/file.pdf", fileRef)
}
