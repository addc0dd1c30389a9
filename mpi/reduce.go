package mpi

// Reducer is a modular-reduction strategy over a fixed modulus, selected per
// spec §4.1's "three flavors" (plus the "2k" variant): Barrett (generic),
// Montgomery (odd moduli), diminished-radix (b^n-k primes), and "2k" (m near
// a power of two). ExpMod (modexp.go) only ever picks between Montgomery and
// Barrett automatically, by parity; DR and 2k require a caller who already
// knows its modulus has that shape, via ExpModReducer. A Reducer other than
// MontgomeryCtx must satisfy Reduce(z, x) = x mod m exactly; MontgomeryCtx is
// the one exception (see its own doc comment) and expMod (modexp.go) handles
// the Montgomery-domain conversion around it specially.
type Reducer interface {
	// Reduce sets z = x mod m for 0 <= x < m^2 (the range produced by a
	// single multiply of two already-reduced operands). MontgomeryCtx is the
	// sole implementation that departs from this: its Reduce is REDC, z =
	// x*R^-1 mod m, valid for 0 <= x < m*R; see its doc comment.
	Reduce(z, x *Int) error
	// Modulus returns the modulus this reducer was built for.
	Modulus() *Int
}

// BarrettCtx implements generic Barrett reduction (spec §4.1): precomputes
// mu = floor(b^(2k)/m) once, then reduces in O(k^2) per call without a full
// division.
type BarrettCtx struct {
	m  *Int
	mu *Int
	k  int // used digits of m
}

// NewBarrett builds a BarrettCtx for modulus m (m > 0).
func NewBarrett(m *Int) (*BarrettCtx, error) {
	if err := validateModulus(m); err != nil {
		return nil, err
	}
	k := len(m.d)
	b2k := New()
	ShlBits(b2k, NewInt64(1), 2*k*digitBits)
	mu := New()
	if err := Div(mu, b2k, m); err != nil {
		return nil, err
	}
	return &BarrettCtx{m: Copy(m), mu: mu, k: k}, nil
}

func (c *BarrettCtx) Modulus() *Int { return c.m }

// Reduce implements spec §4.1's Barrett formula:
//
//	q <- floor(x / b^(k-1))
//	q <- floor(q*mu / b^(k+1))
//	r <- (x mod b^(k+1)) - (q*m mod b^(k+1))
//	if r < 0: r += b^(k+1)
//	while r >= m: r -= m   (at most twice)
func (c *BarrettCtx) Reduce(z, x *Int) error {
	k := c.k
	q1 := New()
	digitsShiftRight(q1, x, k-1)
	q2 := New()
	Mul(q2, q1, c.mu)
	q3 := New()
	digitsShiftRight(q3, q2, k+1)

	r1 := New()
	digitsTruncate(r1, x, k+1)
	qm := New()
	Mul(qm, q3, c.m)
	r2 := New()
	digitsTruncate(r2, qm, k+1)

	r := New()
	Sub(r, r1, r2)
	if r.IsNeg() {
		bk1 := New()
		ShlBits(bk1, NewInt64(1), (k+1)*digitBits)
		Add(r, r, bk1)
	}
	for CmpAbs(r, c.m) >= 0 {
		Sub(r, r, c.m)
	}
	z.Set(r)
	return nil
}

// digitsShiftRight sets z = floor(a / base^n) (a whole-digit right shift).
func digitsShiftRight(z, a *Int, n int) {
	if n <= 0 {
		z.Set(a)
		return
	}
	if n >= len(a.d) {
		z.d = z.d[:0]
		z.neg = false
		return
	}
	out := make([]digit, len(a.d)-n)
	copy(out, a.d[n:])
	z.d = out
	z.neg = a.neg
	z.clamp()
}

// digitsTruncate sets z = a mod base^n (keep only the low n digits).
func digitsTruncate(z, a *Int, n int) {
	if n >= len(a.d) {
		z.Set(a)
		return
	}
	out := make([]digit, n)
	copy(out, a.d[:n])
	z.d = out
	z.neg = false
	z.clamp()
}

// genericMod is a plain, non-accelerated reduction (a direct Mod call).
// Nothing in the package calls it; the reducer tests cross-check against Mod
// directly.
func genericMod(z, x, m *Int) error { return Mod(z, x, m) }
