package aead

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

func TestEAXRoundTripAndTamperDetection(t *testing.T) {
	key := setupAESKey(t)
	defer key.Destroy()
	e := NewEAX(key, ciphers.AES.BlockSize())

	nonce := make([]byte, 16)
	_, err := rand.Read(nonce)
	require.NoError(t, err)
	header := []byte("associated data")
	pt := []byte("the EAX quick brown fox message, thirty-two bytes")

	sealed, err := e.Seal(nonce, header, pt)
	require.NoError(t, err)

	got, err := e.Open(nonce, header, sealed)
	require.NoError(t, err)
	require.Equal(t, pt, got)

	tampered := append([]byte(nil), sealed...)
	tampered[0] ^= 0x01
	_, err = e.Open(nonce, header, tampered)
	require.Error(t, err)

	_, err = e.Open(nonce, []byte("wrong header"), sealed)
	require.Error(t, err)
}

func TestEAXEmptyPlaintext(t *testing.T) {
	key := setupAESKey(t)
	defer key.Destroy()
	e := NewEAX(key, ciphers.AES.BlockSize())
	nonce := make([]byte, 16)

	sealed, err := e.Seal(nonce, nil, nil)
	require.NoError(t, err)
	pt, err := e.Open(nonce, nil, sealed)
	require.NoError(t, err)
	require.Empty(t, pt)
}

func TestOCBRoundTripOneByte(t *testing.T) {
	key := setupAESKey(t)
	defer key.Destroy()
	o, err := NewOCB(key, ciphers.AES.BlockSize(), 0)
	require.NoError(t, err)

	nonce := make([]byte, 16)
	pt := []byte{0x42}

	sealed, err := o.Seal(nonce, pt)
	require.NoError(t, err)
	got, err := o.Open(nonce, sealed)
	require.NoError(t, err)
	require.Equal(t, pt, got)
}

func TestOCBRoundTripMultiBlock(t *testing.T) {
	key := setupAESKey(t)
	defer key.Destroy()
	o, err := NewOCB(key, ciphers.AES.BlockSize(), 0)
	require.NoError(t, err)

	nonce := make([]byte, 16)
	pt := make([]byte, 16*3+7)
	_, err = rand.Read(pt)
	require.NoError(t, err)

	sealed, err := o.Seal(nonce, pt)
	require.NoError(t, err)
	got, err := o.Open(nonce, sealed)
	require.NoError(t, err)
	require.Equal(t, pt, got)
}

func TestOCBTamperDetection(t *testing.T) {
	key := setupAESKey(t)
	defer key.Destroy()
	o, err := NewOCB(key, ciphers.AES.BlockSize(), 0)
	require.NoError(t, err)

	nonce := make([]byte, 16)
	pt := []byte("ocb authenticated encryption message")
	sealed, err := o.Seal(nonce, pt)
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0x01
	_, err = o.Open(nonce, tampered)
	require.Error(t, err)
}
