package dh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libtom/tomcrypt/prngs"
)

func testSource(t *testing.T) interface{ Read([]byte) (int, error) } {
	t.Helper()
	st, err := prngs.System.Start()
	require.NoError(t, err)
	return st
}

// TestTableSelfTest replicates original_source/dh.c's dh_test(): every
// table entry's p is prime, (p-1)/2 is prime, and g^((p-1)/2) mod p == 1.
func TestTableSelfTest(t *testing.T) {
	require.NoError(t, SelfTest())
}

func TestMakeKeySelectsSmallestCoveringEntry(t *testing.T) {
	src := testSource(t)
	priv, err := MakeKey(96, src)
	require.NoError(t, err)
	require.Equal(t, "DH-768", priv.entry.Name)

	priv2, err := MakeKey(100, src)
	require.NoError(t, err)
	require.Equal(t, "DH-1024", priv2.entry.Name)
}

func TestSharedSecretAgrees(t *testing.T) {
	src := testSource(t)
	alice, err := MakeKey(96, src)
	require.NoError(t, err)
	bob, err := MakeKey(96, src)
	require.NoError(t, err)

	s1, err := alice.SharedSecret(&bob.PublicKey)
	require.NoError(t, err)
	s2, err := bob.SharedSecret(&alice.PublicKey)
	require.NoError(t, err)
	require.Equal(t, s1, s2)
}

func TestSignVerifyRoundTripAndTamperDetection(t *testing.T) {
	src := testSource(t)
	priv, err := MakeKey(96, src)
	require.NoError(t, err)

	digest := make([]byte, 20)
	_, err = src.Read(digest)
	require.NoError(t, err)

	a, b, err := priv.Sign(digest, src)
	require.NoError(t, err)

	ok, err := priv.PublicKey.Verify(digest, a, b)
	require.NoError(t, err)
	require.True(t, ok)

	otherDigest := make([]byte, 20)
	_, err = src.Read(otherDigest)
	require.NoError(t, err)
	ok, err = priv.PublicKey.Verify(otherDigest, a, b)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSharedSecretRejectsMismatchedGroups(t *testing.T) {
	src := testSource(t)
	small, err := MakeKey(96, src)
	require.NoError(t, err)
	big, err := MakeKey(128, src)
	require.NoError(t, err)

	_, err = small.SharedSecret(&big.PublicKey)
	require.Error(t, err)
}
