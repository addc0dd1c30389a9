package mpi

import "github.com/libtom/tomcrypt/tcerr"

// InvMod sets z = a^-1 mod m using the binary extended Euclidean algorithm
// (HAC 14.61, spec §4.1). Fails with ErrInvalidArg if a and m share a factor
// of 2 (both even), mirroring the C implementation's documented limitation.
func InvMod(z, a, m *Int) error {
	if err := validateModulus(m); err != nil {
		return err
	}
	if m.IsEven() && a.IsEven() {
		return tcerr.New(tcerr.ErrInvalidArg, "inputs to InvMod share a factor of 2")
	}
	if m.IsOdd() {
		return fastInvModOdd(z, a, m)
	}
	return binaryInvMod(z, a, m)
}

// fastInvModOdd is the fast path for odd moduli named in spec §4.1
// (`fast_mp_invmod`), avoiding the extra branch binaryInvMod needs to handle
// an even modulus.
func fastInvModOdd(z, a, m *Int) error {
	x := New()
	if err := Mod(x, a, m); err != nil {
		return err
	}
	y := Copy(m)

	u, v := Copy(x), Copy(y)
	A, B := NewInt64(1), NewInt64(0)
	C, D := NewInt64(0), NewInt64(1)

	if u.IsZero() {
		return tcerr.New(tcerr.ErrInvalidArg, "not invertible: gcd != 1")
	}

	for {
		for u.IsEven() {
			ShrBits(u, u, 1)
			if A.IsOdd() || B.IsOdd() {
				Add(A, A, y)
				Sub(B, B, x)
			}
			ShrBits(A, A, 1)
			ShrBits(B, B, 1)
		}
		for v.IsEven() {
			ShrBits(v, v, 1)
			if C.IsOdd() || D.IsOdd() {
				Add(C, C, y)
				Sub(D, D, x)
			}
			ShrBits(C, C, 1)
			ShrBits(D, D, 1)
		}
		if cmpMag(u, v) >= 0 {
			Sub(u, u, v)
			Sub(A, A, C)
			Sub(B, B, D)
		} else {
			Sub(v, v, u)
			Sub(C, C, A)
			Sub(D, D, B)
		}
		if u.IsZero() {
			break
		}
	}
	if cmpMag(v, NewInt64(1)) != 0 {
		return tcerr.New(tcerr.ErrInvalidArg, "not invertible: gcd != 1")
	}
	return Mod(z, C, y)
}

// binaryInvMod handles the (rarer) case of an even modulus; the even path
// needs a second divisor tracked through the recurrence, so we fall back to
// computing via the extended Euclidean algorithm directly in terms of gcd
// coefficients rather than the halving shortcut fastInvModOdd uses.
func binaryInvMod(z, a, m *Int) error {
	// Standard iterative extended Euclid: m = a*q + r.
	oldR, r := Copy(m), New()
	if err := Mod(r, a, m); err != nil {
		return err
	}
	oldS, s := NewInt64(0), NewInt64(1)
	for !r.IsZero() {
		q := New()
		nr := New()
		if err := DivMod(q, nr, oldR, r); err != nil {
			return err
		}
		oldR, r = r, nr

		qs := New()
		Mul(qs, q, s)
		ns := New()
		Sub(ns, oldS, qs)
		oldS, s = s, ns
	}
	if cmpMag(oldR, NewInt64(1)) != 0 {
		return tcerr.New(tcerr.ErrInvalidArg, "not invertible: gcd != 1")
	}
	return Mod(z, oldS, m)
}
