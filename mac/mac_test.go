package mac

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libtom/tomcrypt/ciphers"
)

func setupAESKey(t *testing.T) registryKey {
	t.Helper()
	key := make([]byte, 16)
	_, err := rand.Read(key)
	require.NoError(t, err)
	k, err := ciphers.AES.Setup(key, 0)
	require.NoError(t, err)
	return k
}

type registryKey = interface {
	EncryptBlock(dst, src []byte)
	DecryptBlock(dst, src []byte)
	Destroy()
}

func TestOMACDeterministicAndVerifies(t *testing.T) {
	key := setupAESKey(t)
	defer key.Destroy()
	o, err := NewOMAC(key, ciphers.AES.BlockSize())
	require.NoError(t, err)

	msg := []byte("the quick brown fox jumps over the lazy dog")
	tag1, err := o.Sum(msg, 16)
	require.NoError(t, err)
	tag2, err := o.Sum(msg, 16)
	require.NoError(t, err)
	require.Equal(t, tag1, tag2)

	ok, err := o.Verify(msg, tag1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = o.Verify(append(append([]byte(nil), msg...), 'x'), tag1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOMACHandlesPartialFinalBlock(t *testing.T) {
	key := setupAESKey(t)
	defer key.Destroy()
	o, err := NewOMAC(key, ciphers.AES.BlockSize())
	require.NoError(t, err)

	full, err := o.Sum(make([]byte, 16), 16)
	require.NoError(t, err)
	partial, err := o.Sum(make([]byte, 10), 16)
	require.NoError(t, err)
	require.NotEqual(t, full, partial)
}

func TestPMACDeterministicAndVerifies(t *testing.T) {
	key := setupAESKey(t)
	defer key.Destroy()
	p, err := NewPMAC(key, ciphers.AES.BlockSize())
	require.NoError(t, err)

	msg := make([]byte, 16*5+3)
	_, err = rand.Read(msg)
	require.NoError(t, err)

	tag1, err := p.Sum(msg, 16)
	require.NoError(t, err)
	tag2, err := p.Sum(msg, 16)
	require.NoError(t, err)
	require.Equal(t, tag1, tag2)

	ok, err := p.Verify(msg, tag1)
	require.NoError(t, err)
	require.True(t, ok)

	msg[0] ^= 0xff
	ok, err = p.Verify(msg, tag1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMACRejectsUnsupportedBlockSize(t *testing.T) {
	key := setupAESKey(t)
	defer key.Destroy()
	_, err := NewOMAC(key, 12)
	require.Error(t, err)
}
