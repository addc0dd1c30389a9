// Package rsa implements the L5/L6 RSA system named in spec §4.7: CRT-
// accelerated key generation and the exptmod primitive, built entirely on
// package mpi (no external bignum dependency — this is the one place the
// from-scratch MPI engine is the point, not a gap).
package rsa

import (
	"github.com/libtom/tomcrypt/mpi"
	"github.com/libtom/tomcrypt/tcerr"
)

// AllowWeakForTesting permits MakeKey to generate moduli smaller than the
// spec's 128-byte (1024-bit) floor, mirroring original_source/tests/
// rsa_test.c's use of small keys purely for test speed (SPEC_FULL.md
// §4.7.1). Production code should never set this.
var AllowWeakForTesting = false

const (
	minModulusBytes = 128
	maxModulusBytes = 512
)

// PublicKey is the public half of an RSA key (spec §3 "RSA key").
type PublicKey struct {
	N *mpi.Int
	E *mpi.Int
}

// PrivateKey is a private-with-CRT RSA key (spec §4.7: keys are always
// generated with CRT helpers populated; a public-only key is represented
// separately by PublicKey).
type PrivateKey struct {
	PublicKey
	D  *mpi.Int
	P  *mpi.Int
	Q  *mpi.Int
	DP *mpi.Int
	DQ *mpi.Int
	QP *mpi.Int
	PQ *mpi.Int
}

// ModulusSize returns the modulus size in bytes, used throughout as the
// fixed-width output/padding length.
func (pub *PublicKey) ModulusSize() int {
	return (pub.N.BitLen() + 7) / 8
}

// MakeKey generates a private-with-CRT RSA key with a modulus of the given
// byte size (spec §4.7's [128, 512]-byte range, widened only via
// AllowWeakForTesting) and public exponent e (odd, >= 3).
func MakeKey(sizeBytes int, e int64, src mpi.RandSource) (*PrivateKey, error) {
	if sizeBytes < minModulusBytes && !AllowWeakForTesting {
		return nil, tcerr.New(tcerr.ErrPKInvalidSize, "rsa modulus size %d bytes is below the minimum of %d", sizeBytes, minModulusBytes)
	}
	if sizeBytes > maxModulusBytes {
		return nil, tcerr.New(tcerr.ErrPKInvalidSize, "rsa modulus size %d bytes exceeds the maximum of %d", sizeBytes, maxModulusBytes)
	}
	if e < 3 || e%2 == 0 {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "rsa public exponent must be odd and >= 3, got %d", e)
	}
	eInt := mpi.NewInt64(e)
	one := mpi.NewInt64(1)

	half := sizeBytes / 2
	p, err := randPrimeCoprime(half, eInt, src)
	if err != nil {
		return nil, err
	}
	q, err := randPrimeCoprime(sizeBytes-half, eInt, src)
	if err != nil {
		return nil, err
	}
	for p.Cmp(q) == 0 {
		q, err = randPrimeCoprime(sizeBytes-half, eInt, src)
		if err != nil {
			return nil, err
		}
	}

	n := mpi.New()
	mpi.Mul(n, p, q)

	pm1 := mpi.New()
	mpi.Sub(pm1, p, one)
	qm1 := mpi.New()
	mpi.Sub(qm1, q, one)

	lambda := mpi.New()
	if err := mpi.LCM(lambda, pm1, qm1); err != nil {
		return nil, err
	}
	d := mpi.New()
	if err := mpi.InvMod(d, eInt, lambda); err != nil {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "computing rsa private exponent: %w", err)
	}

	dP := mpi.New()
	if err := mpi.Mod(dP, d, pm1); err != nil {
		return nil, err
	}
	dQ := mpi.New()
	if err := mpi.Mod(dQ, d, qm1); err != nil {
		return nil, err
	}

	qInv := mpi.New()
	if err := mpi.InvMod(qInv, q, p); err != nil {
		return nil, err
	}
	qP := mpi.New()
	mpi.Mul(qP, q, qInv)
	if err := mpi.Mod(qP, qP, n); err != nil {
		return nil, err
	}

	pInv := mpi.New()
	if err := mpi.InvMod(pInv, p, q); err != nil {
		return nil, err
	}
	pQ := mpi.New()
	mpi.Mul(pQ, p, pInv)
	if err := mpi.Mod(pQ, pQ, n); err != nil {
		return nil, err
	}

	return &PrivateKey{
		PublicKey: PublicKey{N: n, E: eInt},
		D:         d, P: p, Q: q, DP: dP, DQ: dQ, QP: qP, PQ: pQ,
	}, nil
}

// randPrimeCoprime draws random primes of the given byte size until one is
// coprime to e (spec §4.7: "generate p... such that gcd(e, p-1) = 1").
func randPrimeCoprime(sizeBytes int, e *mpi.Int, src mpi.RandSource) (*mpi.Int, error) {
	one := mpi.NewInt64(1)
	for {
		p, err := mpi.RandPrime(sizeBytes, mpi.PrimeFlagMSB, src)
		if err != nil {
			return nil, err
		}
		pm1 := mpi.New()
		mpi.Sub(pm1, p, one)
		g := mpi.New()
		mpi.GCD(g, e, pm1)
		if g.Cmp(one) == 0 {
			return p, nil
		}
	}
}

// PublicOp computes y = x^e mod N (spec §4.7 "encrypt/decrypt primitive,
// public op"). Rejects x >= N.
func (pub *PublicKey) PublicOp(x *mpi.Int) (*mpi.Int, error) {
	if x.Cmp(pub.N) >= 0 || x.IsNeg() {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "rsa public op input out of range [0, N)")
	}
	y := mpi.New()
	if err := mpi.ExpMod(y, x, pub.E, pub.N); err != nil {
		return nil, err
	}
	return y, nil
}

// PrivateOp computes the private RSA operation via CRT recombination (spec
// §4.7): yP = x^dP mod p, yQ = x^dQ mod q, y = yP*qP + yQ*pQ mod N.
func (priv *PrivateKey) PrivateOp(x *mpi.Int) (*mpi.Int, error) {
	if x.Cmp(priv.N) >= 0 || x.IsNeg() {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "rsa private op input out of range [0, N)")
	}
	yP := mpi.New()
	if err := mpi.ExpMod(yP, x, priv.DP, priv.P); err != nil {
		return nil, err
	}
	yQ := mpi.New()
	if err := mpi.ExpMod(yQ, x, priv.DQ, priv.Q); err != nil {
		return nil, err
	}
	t1 := mpi.New()
	mpi.Mul(t1, yP, priv.QP)
	t2 := mpi.New()
	mpi.Mul(t2, yQ, priv.PQ)
	y := mpi.New()
	mpi.Add(y, t1, t2)
	if err := mpi.Mod(y, y, priv.N); err != nil {
		return nil, err
	}
	return y, nil
}
