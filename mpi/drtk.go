package mpi

import "github.com/libtom/tomcrypt/tcerr"

// DRCtx implements diminished-radix reduction (spec §4.1) for a modulus of
// the form m = b^n - k with small k: splits x = x_hi*b^n + x_lo, folds
// k*x_hi + x_lo, and iterates until the result is below m.
type DRCtx struct {
	m *Int
	n int
	k uint64 // b^n - m, must be "small" (fits one digit) for this to pay off
}

// NewDR builds a DRCtx if m's top digits are all digitMask (i.e. m is within
// one digit of a power of the base) and returns ok=false otherwise, mirroring
// the teacher's practice of a constructor that reports applicability rather
// than failing outright (spec: DR only applies to primes of this shape).
func NewDR(m *Int) (ctx *DRCtx, ok bool) {
	if m == nil || len(m.d) < 2 {
		return nil, false
	}
	n := len(m.d)
	for i := 1; i < n; i++ {
		if m.d[i] != digitMask {
			return nil, false
		}
	}
	bn := New()
	ShlBits(bn, NewInt64(1), n*digitBits)
	kk := New()
	Sub(kk, bn, m)
	if len(kk.d) > 1 {
		return nil, false
	}
	k := uint64(0)
	if len(kk.d) == 1 {
		k = uint64(kk.d[0])
	}
	return &DRCtx{m: Copy(m), n: n, k: k}, true
}

func (c *DRCtx) Modulus() *Int { return c.m }

// Reduce folds x = x_hi*b^n + x_lo into x_lo + k*x_hi repeatedly until the
// result is < m.
func (c *DRCtx) Reduce(z, x *Int) error {
	cur := Copy(x)
	for {
		hi := New()
		digitsShiftRight(hi, cur, c.n)
		if hi.IsZero() {
			break
		}
		lo := New()
		digitsTruncate(lo, cur, c.n)
		scaled := New()
		Mul(scaled, hi, NewInt64(int64(c.k)))
		Add(cur, lo, scaled)
	}
	for CmpAbs(cur, c.m) >= 0 {
		Sub(cur, cur, c.m)
	}
	z.Set(cur)
	return nil
}

// TwoKCtx implements the "2k" reduction (spec §4.1) for a modulus near a
// power of two: m = 2^p - c (c need not fit one digit, unlike DR). Folds the
// high part scaled by c into the low part, iterating to convergence.
type TwoKCtx struct {
	m *Int
	p int
	c *Int
}

// NewTwoK builds a TwoKCtx for modulus m, given the caller-supplied bit
// length p such that m is a small delta below 2^p; the delta c = 2^p - m is
// derived here.
func NewTwoK(m *Int, p int) (*TwoKCtx, error) {
	if err := validateModulus(m); err != nil {
		return nil, err
	}
	twoP := New()
	ShlBits(twoP, NewInt64(1), p)
	c := New()
	Sub(c, twoP, m)
	if c.IsNeg() || c.IsZero() {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "2k reduction requires m = 2^p - c for c > 0")
	}
	return &TwoKCtx{m: Copy(m), p: p, c: c}, nil
}

func (c *TwoKCtx) Modulus() *Int { return c.m }

// Reduce folds x = x_hi*2^p + x_lo into x_lo + c*x_hi repeatedly until below
// 2*m, then does a final conditional subtract.
func (t *TwoKCtx) Reduce(z, x *Int) error {
	cur := Copy(x)
	for cur.BitLen() > t.p {
		hi := New()
		ShrBits(hi, cur, t.p)
		lo := New()
		maskDigits(lo, cur, t.p)
		scaled := New()
		Mul(scaled, hi, t.c)
		Add(cur, lo, scaled)
	}
	for CmpAbs(cur, t.m) >= 0 {
		Sub(cur, cur, t.m)
	}
	z.Set(cur)
	return nil
}

// maskDigits sets z = a mod 2^bits (bitwise, not whole-digit) truncation.
func maskDigits(z, a *Int, bits int) {
	full := bits / digitBits
	rem := uint(bits % digitBits)
	n := full
	if rem != 0 {
		n++
	}
	if n > len(a.d) {
		z.Set(a)
		return
	}
	out := make([]digit, n)
	copy(out, a.d[:n])
	if rem != 0 {
		out[n-1] &= (digit(1) << rem) - 1
	}
	z.d = out
	z.neg = false
	z.clamp()
}
