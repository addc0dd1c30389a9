package ecc

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

func TestCurveTableSelfTest(t *testing.T) {
	require.NoError(t, SelfTest())
}

func TestMakeKeySelectsSmallestCoveringCurve(t *testing.T) {
	src := testSource(t)
	priv, err := MakeKey(20, src)
	require.NoError(t, err)
	require.Equal(t, "ECC-160", priv.curve.Name)

	priv2, err := MakeKey(21, src)
	require.NoError(t, err)
	require.Equal(t, "ECC-192", priv2.curve.Name)
}

func TestGeneratedKeyIsOnCurve(t *testing.T) {
	src := testSource(t)
	priv, err := MakeKey(20, src)
	require.NoError(t, err)
	require.True(t, priv.Pub.onCurve(priv.curve))
}

// TestECDHRoundTrip is the end-to-end KAT named in spec §8 scenario 6:
// generate two ECC-160 key pairs, derive the shared secret from both sides,
// and confirm they agree.
func TestECDHRoundTrip(t *testing.T) {
	src := testSource(t)
	alice, err := MakeKey(20, src)
	require.NoError(t, err)
	bob, err := MakeKey(20, src)
	require.NoError(t, err)

	s1, err := alice.SharedSecret(&bob.PublicKey)
	require.NoError(t, err)
	s2, err := bob.SharedSecret(&alice.PublicKey)
	require.NoError(t, err)
	require.Equal(t, s1, s2)
}

func TestSignVerifyRoundTripAndTamperDetection(t *testing.T) {
	src := testSource(t)
	priv, err := MakeKey(20, src)
	require.NoError(t, err)

	digest := make([]byte, 20)
	_, err = src.Read(digest)
	require.NoError(t, err)

	sig, err := priv.Sign(digest, src)
	require.NoError(t, err)

	ok, err := priv.PublicKey.Verify(digest, sig)
	require.NoError(t, err)
	require.True(t, ok)

	otherDigest := make([]byte, 20)
	_, err = src.Read(otherDigest)
	require.NoError(t, err)
	ok, err = priv.PublicKey.Verify(otherDigest, sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	curve := &Curves[0] // ECC-160
	src := testSource(t)
	priv, err := MakeKey(curve.SizeBytes, src)
	require.NoError(t, err)

	blob := Compress(&priv.Pub, curve)
	got, err := Decompress(blob, curve)
	if err != nil {
		// curve prime not 3 mod 4: acceptable, documented limitation.
		t.Skipf("curve %s prime is not 3 mod 4, compression unsupported: %v", curve.Name, err)
	}
	require.Equal(t, priv.Pub.X.Bytes(), got.X.Bytes())
	require.Equal(t, priv.Pub.Y.Bytes(), got.Y.Bytes())
}

func TestMulModMatchesLadder(t *testing.T) {
	curve := &Curves[0]
	src := testSource(t)
	priv, err := MakeKey(curve.SizeBytes, src)
	require.NoError(t, err)

	g := basePoint(curve)
	r1, err := mulMod(priv.K, g, curve)
	require.NoError(t, err)
	r2, err := mulModLadder(priv.K, g, curve)
	require.NoError(t, err)
	require.Equal(t, r1.X.Bytes(), r2.X.Bytes())
	require.Equal(t, r1.Y.Bytes(), r2.Y.Bytes())
}
