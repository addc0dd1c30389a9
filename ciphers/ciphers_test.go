package ciphers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAESSelfTest(t *testing.T) {
	require.NoError(t, AES.Test())
}

func TestDESSelfTest(t *testing.T) {
	require.NoError(t, DES.Test())
	require.NoError(t, TripleDES.Test())
}

func TestAESKeySizeClamp(t *testing.T) {
	ks, err := AES.KeySize(20)
	require.NoError(t, err)
	require.Equal(t, 16, ks)

	_, err = AES.KeySize(8)
	require.Error(t, err)
}

func TestAESEncryptDecryptRoundTrip(t *testing.T) {
	key := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
	}
	k, err := AES.Setup(key, 0)
	require.NoError(t, err)
	defer k.Destroy()

	pt := []byte("0123456789abcdef")
	ct := make([]byte, 16)
	k.EncryptBlock(ct, pt)
	back := make([]byte, 16)
	k.DecryptBlock(back, ct)
	require.Equal(t, pt, back)
}
