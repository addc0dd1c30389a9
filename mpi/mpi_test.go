package mpi

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// toBig/fromBig let tests cross-check this package's from-scratch arithmetic
// against the standard library's math/big, the same way the teacher
// cross-checks ring arithmetic against reference vectors in ring/int_test.go.
func toBig(z *Int) *big.Int {
	b := new(big.Int).SetBytes(z.Bytes())
	if z.IsNeg() {
		b.Neg(b)
	}
	return b
}

func fromBig(b *big.Int) *Int {
	z := New().SetBytes(new(big.Int).Abs(b).Bytes())
	if b.Sign() < 0 {
		z.neg = !z.IsZero()
	}
	return z
}

func randBig(t *testing.T, bits int) *big.Int {
	t.Helper()
	b, err := rand.Prime(rand.Reader, bits) // a random prime of exactly bits bits: odd (Montgomery needs that) and prime (TestProbablyPrime relies on it)
	require.NoError(t, err)
	return b
}

func randUint(t *testing.T, bits int) *big.Int {
	t.Helper()
	b := make([]byte, (bits+7)/8)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return new(big.Int).SetBytes(b)
}

func TestAddSubMatchesMathBig(t *testing.T) {
	for i := 0; i < 200; i++ {
		a := randUint(t, 200)
		b := randUint(t, 180)
		if i%3 == 0 {
			a.Neg(a)
		}
		if i%5 == 0 {
			b.Neg(b)
		}
		za, zb := fromBig(a), fromBig(b)

		wantAdd := new(big.Int).Add(a, b)
		gotAdd := New()
		Add(gotAdd, za, zb)
		require.Equal(t, wantAdd.String(), toBig(gotAdd).String())

		wantSub := new(big.Int).Sub(a, b)
		gotSub := New()
		Sub(gotSub, za, zb)
		require.Equal(t, wantSub.String(), toBig(gotSub).String())
	}
}

func TestMulAcrossKaratsubaThreshold(t *testing.T) {
	sizes := []int{64, 300, 2400, 4000} // bits, straddling karatsubaCutoff digits
	for _, bits := range sizes {
		a := randUint(t, bits)
		b := randUint(t, bits-7)
		za, zb := fromBig(a), fromBig(b)
		want := new(big.Int).Mul(a, b)
		got := New()
		Mul(got, za, zb)
		require.Equal(t, want.String(), toBig(got).String(), "bits=%d", bits)

		wantSq := new(big.Int).Mul(a, a)
		gotSq := New()
		Sqr(gotSq, za)
		require.Equal(t, wantSq.String(), toBig(gotSq).String(), "sqr bits=%d", bits)
	}
}

func TestDivModMatchesMathBig(t *testing.T) {
	for i := 0; i < 100; i++ {
		a := randUint(t, 260)
		b := randUint(t, 90)
		if b.Sign() == 0 {
			continue
		}
		za, zb := fromBig(a), fromBig(b)
		wantQ, wantR := new(big.Int).QuoRem(a, b, new(big.Int))
		gotQ, gotR := New(), New()
		require.NoError(t, DivMod(gotQ, gotR, za, zb))
		require.Equal(t, wantQ.String(), toBig(gotQ).String())
		require.Equal(t, wantR.String(), toBig(gotR).String())
	}
}

func TestModEuclidean(t *testing.T) {
	m := fromBig(big.NewInt(97))
	a := fromBig(big.NewInt(-5))
	z := New()
	require.NoError(t, Mod(z, a, m))
	require.Equal(t, "92", toBig(z).String())
}

func TestGCDandLCM(t *testing.T) {
	a := fromBig(big.NewInt(1071))
	b := fromBig(big.NewInt(462))
	g := New()
	GCD(g, a, b)
	require.Equal(t, "21", toBig(g).String())

	l := New()
	require.NoError(t, LCM(l, a, b))
	want := new(big.Int).Div(new(big.Int).Mul(big.NewInt(1071), big.NewInt(462)), big.NewInt(21))
	require.Equal(t, want.String(), toBig(l).String())
}

func TestInvModOddAndEven(t *testing.T) {
	m := fromBig(big.NewInt(40))
	a := fromBig(big.NewInt(7))
	z := New()
	require.NoError(t, InvMod(z, a, m))
	wantInv := new(big.Int).ModInverse(big.NewInt(7), big.NewInt(40))
	require.Equal(t, wantInv.String(), toBig(z).String())

	p := fromBig(big.NewInt(97))
	b := fromBig(big.NewInt(13))
	z2 := New()
	require.NoError(t, InvMod(z2, b, p))
	prod := New()
	Mul(prod, z2, b)
	r := New()
	require.NoError(t, Mod(r, prod, p))
	require.Equal(t, "1", toBig(r).String())
}

func TestExpModMatchesNaive(t *testing.T) {
	for _, bits := range []int{16, 64, 130} {
		m := randBig(t, bits)
		zm := fromBig(m)
		gb, eb := randUint(t, bits-1), randUint(t, 40)
		g, e := fromBig(gb), fromBig(eb)

		want := new(big.Int).Exp(gb, eb, m)
		got := New()
		require.NoError(t, ExpMod(got, g, e, zm))
		require.Equal(t, want.String(), toBig(got).String(), "bits=%d", bits)
	}
}

func TestExpModNegativeExponent(t *testing.T) {
	m := fromBig(big.NewInt(101)) // prime
	g := fromBig(big.NewInt(5))
	e := fromBig(big.NewInt(-3))
	got := New()
	require.NoError(t, ExpMod(got, g, e, m))

	ginv := new(big.Int).ModInverse(big.NewInt(5), big.NewInt(101))
	want := new(big.Int).Exp(ginv, big.NewInt(3), big.NewInt(101))
	require.Equal(t, want.String(), toBig(got).String())
}

func TestBarrettReducerMatchesMod(t *testing.T) {
	m := fromBig(randBig(t, 160))
	ctx, err := NewBarrett(m)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		x := New()
		Sqr(x, fromBig(randUint(t, 160)))
		want := New()
		require.NoError(t, Mod(want, x, m))
		got := New()
		require.NoError(t, ctx.Reduce(got, x))
		require.Equal(t, toBig(want).String(), toBig(got).String())
	}
}

func TestMontgomeryRoundTrip(t *testing.T) {
	m := fromBig(randBig(t, 128)) // crypto/rand.Prime always returns odd
	ctx, err := NewMontgomery(m)
	require.NoError(t, err)

	a := fromBig(randUint(t, 120))
	b := fromBig(randUint(t, 120))
	var aMod, bMod Int
	require.NoError(t, Mod(&aMod, a, m))
	require.NoError(t, Mod(&bMod, b, m))

	aMont, bMont := New(), New()
	require.NoError(t, ctx.ToMont(aMont, &aMod))
	require.NoError(t, ctx.ToMont(bMont, &bMod))

	// aMont = a*R, bMont = b*R (mod m); MulMont removes exactly one factor of
	// R, so the product should equal a*b*R mod m, i.e. ToMont(a*b mod m).
	prodMont := New()
	require.NoError(t, ctx.MulMont(prodMont, aMont, bMont))

	want := New()
	Mul(want, &aMod, &bMod)
	wantMont := New()
	require.NoError(t, ctx.ToMont(wantMont, want))
	require.Equal(t, toBig(wantMont).String(), toBig(prodMont).String())
}

func TestDRReduction(t *testing.T) {
	// m = 2^90 - 3 = b^3 - 3 for the 30-bit digit base b: every digit above
	// the lowest is all-ones, the shape NewDR accepts.
	m := New()
	ShlBits(m, NewInt64(1), 90)
	Sub(m, m, NewInt64(3))
	ctx, ok := NewDR(m)
	require.True(t, ok)

	x := fromBig(randUint(t, 122))
	want := New()
	require.NoError(t, Mod(want, x, m))
	got := New()
	require.NoError(t, ctx.Reduce(got, x))
	require.Equal(t, toBig(want).String(), toBig(got).String())
}

func TestTwoKReduction(t *testing.T) {
	// P-224-shaped modulus: 2^224 - 2^96 + 1 is P-224's prime; use
	// a smaller pseudo-Mersenne of the same "2^p - c" shape for a fast test.
	p := New()
	ShlBits(p, NewInt64(1), 96)
	c := NewInt64(189)
	m := New()
	Sub(m, p, c)
	ctx, err := NewTwoK(m, 96)
	require.NoError(t, err)

	x := fromBig(randUint(t, 190))
	want := New()
	require.NoError(t, Mod(want, x, m))
	got := New()
	require.NoError(t, ctx.Reduce(got, x))
	require.Equal(t, toBig(want).String(), toBig(got).String())
}

func TestProbablyPrime(t *testing.T) {
	require.True(t, ProbablyPrime(fromBig(big.NewInt(2)), 0))
	require.True(t, ProbablyPrime(fromBig(big.NewInt(97)), 0))
	require.False(t, ProbablyPrime(fromBig(big.NewInt(91)), 0)) // 7*13
	require.False(t, ProbablyPrime(fromBig(big.NewInt(1)), 0))
	require.False(t, ProbablyPrime(fromBig(big.NewInt(0)), 0))

	p := randBig(t, 256)
	require.True(t, ProbablyPrime(fromBig(p), 0))
}

func TestPrimeConfidenceBound(t *testing.T) {
	bound := PrimeConfidence(10)
	f, _ := bound.Float64()
	require.Less(t, f, 0.001)
}

type fixedSource struct{ seed byte }

func (f *fixedSource) Read(buf []byte) (int, error) {
	for i := range buf {
		buf[i] = f.seed
		f.seed++
	}
	return len(buf), nil
}

func TestRandPrime(t *testing.T) {
	p, err := RandPrime(16, PrimeFlagMSB, &fixedSource{seed: 0x11})
	require.NoError(t, err)
	require.True(t, ProbablyPrime(p, 0))
	require.Equal(t, 128, p.BitLen()) // MSB flag forces the top bit of a 16-byte candidate
}

func TestBytesRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 31, 32, 33, 255, 512} {
		buf := make([]byte, n)
		_, err := rand.Read(buf)
		require.NoError(t, err)
		z := New().SetBytes(buf)
		// strip leading zero bytes the same way Bytes() would, for comparison
		trimmed := buf
		for len(trimmed) > 0 && trimmed[0] == 0 {
			trimmed = trimmed[1:]
		}
		require.Equal(t, trimmed, z.Bytes())
	}
}

func TestExch(t *testing.T) {
	a := fromBig(big.NewInt(123))
	b := fromBig(big.NewInt(456))
	Exch(a, b)
	require.Equal(t, "456", toBig(a).String())
	require.Equal(t, "123", toBig(b).String())
}
