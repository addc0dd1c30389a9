package rsa

import (
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libtom/tomcrypt/mpi"
	"github.com/libtom/tomcrypt/prngs"
)

func testSource(t *testing.T) RandSource {
	t.Helper()
	st, err := prngs.System.Start()
	require.NoError(t, err)
	return st
}

// TestRSA1024SignVerify is the end-to-end KAT named in spec §8 scenario 5:
// generate a 1024-bit key with e=65537, sign a 20-byte SHA-1 digest with
// PKCS#1-style padding, verify succeeds, and flipping any byte of the
// signature makes verify fail.
func TestRSA1024SignVerify(t *testing.T) {
	src := testSource(t)
	priv, err := MakeKey(128, 65537, src)
	require.NoError(t, err)

	sum := sha1.Sum([]byte("the message being signed"))
	digest := sum[:]

	sig, err := priv.Sign(digest)
	require.NoError(t, err)

	ok, err := priv.PublicKey.Verify(digest, sig)
	require.NoError(t, err)
	require.True(t, ok)

	for _, idx := range []int{0, len(sig) / 2, len(sig) - 1} {
		tampered := append([]byte(nil), sig...)
		tampered[idx] ^= 0x01
		ok, err := priv.PublicKey.Verify(digest, tampered)
		require.NoError(t, err)
		require.False(t, ok)
	}

	otherSum := sha1.Sum([]byte("a different message"))
	ok, err = priv.PublicKey.Verify(otherSum[:], sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRSAEncryptDecryptRoundTrip(t *testing.T) {
	AllowWeakForTesting = true
	defer func() { AllowWeakForTesting = false }()

	src := testSource(t)
	priv, err := MakeKey(64, 65537, src)
	require.NoError(t, err)

	msg := []byte("short secret")
	em, err := PadPKCS1Enc(msg, priv.ModulusSize(), src)
	require.NoError(t, err)

	m := mpi.New().SetBytes(em)
	c, err := priv.PublicKey.PublicOp(m)
	require.NoError(t, err)

	p, err := priv.PrivateOp(c)
	require.NoError(t, err)
	decEM := make([]byte, priv.ModulusSize())
	require.True(t, p.FillBytes(decEM))

	got, err := DepadPKCS1Enc(decEM)
	require.NoError(t, err)
	require.Equal(t, msg, got)
}

func TestSandwichPaddingRoundTrip(t *testing.T) {
	src := testSource(t)
	msg := []byte("wrapped symmetric key!!")
	em, err := PadSandwich(msg, src)
	require.NoError(t, err)
	require.Len(t, em, 3*len(msg))

	got, err := DepadSandwich(em, len(msg))
	require.NoError(t, err)
	require.Equal(t, msg, got)
}

func TestDepadPKCS1SigLegacyRejectsShortPadding(t *testing.T) {
	digest := make([]byte, 20)
	em := PadPKCS1SigLegacy(digest)
	// Corrupt most of the leading run so fewer than 8 bytes remain 0xFF.
	for i := 0; i < len(digest)-4; i++ {
		em[i] = 0x00
	}
	_, err := DepadPKCS1SigLegacy(em, len(digest))
	require.Error(t, err)
}
