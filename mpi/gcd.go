package mpi

// GCD sets z = gcd(|a|, |b|) using the binary (Stein) algorithm named in
// spec §4.1: extract common factors of 2, then alternately halve the even
// operand and subtract, restoring the 2-power factor at the end.
func GCD(z, a, b *Int) *Int {
	if a.IsZero() {
		return z.Abs(b)
	}
	if b.IsZero() {
		return z.Abs(a)
	}
	u := New().Abs(a)
	v := New().Abs(b)

	shift := 0
	for u.IsEven() && v.IsEven() {
		ShrBits(u, u, 1)
		ShrBits(v, v, 1)
		shift++
	}
	for u.IsEven() {
		ShrBits(u, u, 1)
	}
	for {
		for v.IsEven() {
			ShrBits(v, v, 1)
		}
		if cmpMag(u, v) > 0 {
			u, v = v, u
		}
		Sub(v, v, u)
		if v.IsZero() {
			break
		}
	}
	ShlBits(z, u, shift)
	return z
}

// LCM sets z = lcm(|a|, |b|) = |a*b| / gcd(a,b).
func LCM(z, a, b *Int) error {
	g := New()
	GCD(g, a, b)
	t := New()
	Mul(t, a, b)
	t.neg = false
	return Div(z, t, g)
}
