package mpi

import "github.com/libtom/tomcrypt/tcerr"

// MontgomeryCtx implements Montgomery reduction (spec §4.1), valid only for
// odd moduli. rho = -m^-1 mod base is found via the 2-adic Newton iteration
// named in spec §4.1 ("doubling precision each step until a machine word"),
// here doubling until it covers a full digit (digitBits bits) rather than a
// full machine word, since reduction here works one digit at a time (the
// radix is a single digit, as in original_source/mpi.c's mp_montgomery_*).
type MontgomeryCtx struct {
	m   *Int
	n   int // used digits of m
	rho digit
}

// NewMontgomery builds a MontgomeryCtx for an odd modulus m.
func NewMontgomery(m *Int) (*MontgomeryCtx, error) {
	if err := validateModulus(m); err != nil {
		return nil, err
	}
	if m.IsEven() {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "montgomery reduction requires an odd modulus")
	}
	rho := montgomerySetup(m.d[0])
	return &MontgomeryCtx{m: Copy(m), n: len(m.d), rho: rho}, nil
}

func (c *MontgomeryCtx) Modulus() *Int { return c.m }

// montgomerySetup computes rho = -m0^-1 mod 2^digitBits via 2-adic Newton
// iteration: x_{k+1} = x_k*(2 - m0*x_k) mod 2^digitBits, doubling the number
// of correct bits each round, starting from the 3-bit-correct seed x0 = m0
// (valid since m0 is odd, so m0*m0 == 1 mod 8).
func montgomerySetup(m0 digit) digit {
	const modMask = (uint64(1) << digitBits) - 1
	x := m0
	for i := 0; i < 6; i++ { // 3 -> 6 -> 12 -> 24 -> 48 -> 96 bits of precision
		x = (x * (2 - m0*x)) & modMask
	}
	// x is now m0^-1 mod base; rho is its negation mod base.
	return (-x) & modMask
}

// ToMont sets z = x*R mod m, R = base^n (switches x into the Montgomery
// domain).
func (c *MontgomeryCtx) ToMont(z, x *Int) error {
	t := New()
	ShlBits(t, x, c.n*digitBits)
	return Mod(z, t, c.m)
}

// Reduce implements Montgomery reduction for 0 <= x < m*R: folds
// m*((x_i*rho) mod base)*base^i into x for i = 0..n-1, then shifts right by
// n digits, then subtracts m while the result is still >= m.
func (c *MontgomeryCtx) Reduce(z, x *Int) error {
	n := c.n
	size := len(x.d)
	if size < 2*n {
		size = 2 * n
	}
	work := make([]digit, size+2)
	copy(work, x.d)

	for i := 0; i < n; i++ {
		mu := (work[i] * c.rho) & digitMask
		if mu == 0 {
			continue
		}
		var carry uint64
		for j, mv := range c.m.d {
			total := mu*mv + work[i+j] + carry
			work[i+j] = total & digitMask
			carry = total >> digitBits
		}
		k := i + len(c.m.d)
		for carry != 0 {
			total := work[k] + carry
			work[k] = total & digitMask
			carry = total >> digitBits
			k++
		}
	}

	out := make([]digit, len(work)-n)
	copy(out, work[n:])
	z.d = out
	z.neg = false
	z.clamp()
	for CmpAbs(z, c.m) >= 0 {
		Sub(z, z, c.m)
	}
	return nil
}

// MulMont computes z = a*b*R^-1 mod m for a, b already in Montgomery form,
// leaving the product in Montgomery form too (the core primitive modexp
// uses when the modulus is odd).
func (c *MontgomeryCtx) MulMont(z, a, b *Int) error {
	t := New()
	Mul(t, a, b)
	return c.Reduce(z, t)
}
