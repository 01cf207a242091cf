package credentials

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringRoundTrip(t *testing.T) {
	keyring.MockInit()
	k := NewKeyring()
	const server = "http://localhost:3000"

	_, err := k.Get(server)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, k.Set(server, "token-1"))
	got, err := k.Get(server)
	require.NoError(t, err)
	require.Equal(t, "token-1", got)

	_, err = k.Get("https://other.example.com")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, k.Set(server, ""))
	_, err = k.Get(server)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, k.Delete(server))
}

func TestKeyringServiceIsolation(t *testing.T) {
	keyring.MockInit()
	a := &Keyring{Service: "jobctl-a"}
	b := &Keyring{}

	require.NoError(t, a.Set("srv", "a-token"))
	_, err := b.Get("srv")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, DefaultService, b.service())
}
