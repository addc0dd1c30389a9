package blockmode

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libtom/tomcrypt/ciphers"
)

func setupKey(t *testing.T) (registryKey, int) {
	t.Helper()
	key := make([]byte, 16)
	_, err := rand.Read(key)
	require.NoError(t, err)
	k, err := ciphers.AES.Setup(key, 0)
	require.NoError(t, err)
	return k, ciphers.AES.BlockSize()
}

// registryKey avoids importing package registry directly in the test just
// for the type name; ciphers.AES.Setup already returns registry.CipherKey.
type registryKey = interface {
	EncryptBlock(dst, src []byte)
	DecryptBlock(dst, src []byte)
	Destroy()
}

func TestECBRoundTrip(t *testing.T) {
	key, bs := setupKey(t)
	defer key.Destroy()
	m := NewECB(key, bs)

	pt := bytes.Repeat([]byte("A"), bs*3)
	ct := make([]byte, len(pt))
	require.NoError(t, m.Encrypt(ct, pt))
	back := make([]byte, len(pt))
	require.NoError(t, m.Decrypt(back, ct))
	require.Equal(t, pt, back)
}

func TestCBCRoundTrip(t *testing.T) {
	key, bs := setupKey(t)
	defer key.Destroy()
	iv := make([]byte, bs)
	m, err := NewCBC(key, bs, iv)
	require.NoError(t, err)

	pt := bytes.Repeat([]byte("B"), bs*4)
	ct := make([]byte, len(pt))
	require.NoError(t, m.Encrypt(ct, pt))

	m2, err := NewCBC(key, bs, iv)
	require.NoError(t, err)
	back := make([]byte, len(pt))
	require.NoError(t, m2.Decrypt(back, ct))
	require.Equal(t, pt, back)
}

func TestCFBRoundTripPartialBlock(t *testing.T) {
	key, bs := setupKey(t)
	defer key.Destroy()
	iv := make([]byte, bs)
	m, err := NewCFB(key, bs, iv)
	require.NoError(t, err)

	pt := []byte("not a multiple of block size!!")
	ct := make([]byte, len(pt))
	require.NoError(t, m.Encrypt(ct, pt))

	m2, err := NewCFB(key, bs, iv)
	require.NoError(t, err)
	back := make([]byte, len(pt))
	require.NoError(t, m2.Decrypt(back, ct))
	require.Equal(t, pt, back)
}

func TestOFBRoundTrip(t *testing.T) {
	key, bs := setupKey(t)
	defer key.Destroy()
	iv := make([]byte, bs)
	m, err := NewOFB(key, bs, iv)
	require.NoError(t, err)
	m2, err := NewOFB(key, bs, iv)
	require.NoError(t, err)

	pt := bytes.Repeat([]byte("C"), bs*2+5)
	ct := make([]byte, len(pt))
	require.NoError(t, m.Encrypt(ct, pt))
	back := make([]byte, len(pt))
	require.NoError(t, m2.Decrypt(back, ct))
	require.Equal(t, pt, back)
}

func TestCTRRoundTripAndCounterIncrement(t *testing.T) {
	key, bs := setupKey(t)
	defer key.Destroy()
	iv := make([]byte, bs)
	iv[bs-1] = 0xff // force a carry on the first increment
	m, err := NewCTR(key, bs, iv)
	require.NoError(t, err)
	m2, err := NewCTR(key, bs, iv)
	require.NoError(t, err)

	pt := bytes.Repeat([]byte("D"), bs*3)
	ct := make([]byte, len(pt))
	require.NoError(t, m.Encrypt(ct, pt))
	back := make([]byte, len(pt))
	require.NoError(t, m2.Decrypt(back, ct))
	require.Equal(t, pt, back)
}
