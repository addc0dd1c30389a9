package mpi

// windowSize picks the sliding-window width for an exponent of the given bit
// length, per the table in spec §4.1.
func windowSize(bitlen int) int {
	switch {
	case bitlen <= 7:
		return 2
	case bitlen <= 36:
		return 3
	case bitlen <= 140:
		return 4
	case bitlen <= 450:
		return 5
	case bitlen <= 1303:
		return 6
	case bitlen <= 3529:
		return 7
	default:
		return 8
	}
}

// ExpMod sets z = g^e mod m. Negative exponents invert the base first
// (a^-x mod m = (a^-1)^x mod m, spec §4.1). Montgomery is used for odd
// moduli, generic Barrett for even ones; these are the only two reducers
// ExpMod picks automatically. The DR/2k fast paths are never auto-selected
// here (detecting them requires knowing the modulus's origin, not just its
// parity) — they're only reachable via ExpModReducer, for a caller that
// already knows its modulus has that special shape.
func ExpMod(z, g, e, m *Int) error {
	if err := validateModulus(m); err != nil {
		return err
	}
	if m.IsOdd() {
		mctx, err := NewMontgomery(m)
		if err != nil {
			return err
		}
		return expMod(z, g, e, m, mctx)
	}
	bctx, err := NewBarrett(m)
	if err != nil {
		return err
	}
	return expMod(z, g, e, m, bctx)
}

// ExpModReducer is ExpMod parameterized by an explicit Reducer, letting
// callers that already built a DR/2k/Montgomery/Barrett context for their
// modulus reuse it across many exponentiations instead of re-deriving it
// every call.
func ExpModReducer(z, g, e, m *Int, r Reducer) error {
	return expMod(z, g, e, m, r)
}

func expMod(z, g, e, m *Int, r Reducer) error {
	if e.IsNeg() {
		ginv := New()
		if err := InvMod(ginv, g, m); err != nil {
			return err
		}
		epos := New().Abs(e)
		return expMod(z, ginv, epos, m, r)
	}
	if e.IsZero() {
		z.SetInt64(1)
		return Mod(z, z, m)
	}

	gr := New()
	if err := Mod(gr, g, m); err != nil {
		return err
	}

	// If r is a Montgomery context, its Reduce computes x*R^-1 mod m (REDC),
	// not a plain x mod m: every operand entering the loop below must first
	// be lifted into the Montgomery domain (ToMont), and the accumulated
	// result mapped back out with one extra Reduce once the loop is done.
	// Squaring/multiplying within the loop goes through MulMont so the
	// Montgomery form is carried correctly at each step; other reducers fold
	// the raw product through Reduce directly, per their interface contract.
	mctx, isMont := r.(*MontgomeryCtx)
	sqr := func(dst, a *Int) error { return r.Reduce(dst, sqrRaw(a)) }
	mul := func(dst, a, b *Int) error { return r.Reduce(dst, mulRaw(a, b)) }
	if isMont {
		sqr = func(dst, a *Int) error { return mctx.MulMont(dst, a, a) }
		mul = mctx.MulMont
	}

	result := New()
	if isMont {
		if err := mctx.ToMont(gr, gr); err != nil {
			return err
		}
		if err := mctx.ToMont(result, NewInt64(1)); err != nil {
			return err
		}
	} else {
		Mod(result, NewInt64(1), m)
	}

	w := windowSize(e.BitLen())
	tableSize := 1 << (w - 1) // holds G^1, G^3, .., G^(2^w - 1)
	table := make([]*Int, tableSize)
	table[0] = gr
	gsq := New()
	if err := sqr(gsq, gr); err != nil {
		return err
	}
	for i := 1; i < tableSize; i++ {
		t := New()
		if err := mul(t, table[i-1], gsq); err != nil {
			return err
		}
		table[i] = t
	}

	bitlen := e.BitLen()
	i := bitlen - 1
	for i >= 0 {
		if e.Bit(i) == 0 {
			if err := sqr(result, result); err != nil {
				return err
			}
			i--
			continue
		}
		// Buffer consecutive bits into a window of width up to w, preferring
		// the longest run ending in a 1-bit.
		winLen := w
		if i+1 < w {
			winLen = i + 1
		}
		// Shrink winLen until the window's low bit is 1 (odd window value),
		// matching the "buffering consecutive 1-bits until a full window"
		// rule in spec §4.1.
		for winLen > 1 && e.Bit(i-winLen+1) == 0 {
			winLen--
		}
		winVal := 0
		for b := 0; b < winLen; b++ {
			winVal = (winVal << 1) | int(e.Bit(i-b))
		}
		for s := 0; s < winLen; s++ {
			if err := sqr(result, result); err != nil {
				return err
			}
		}
		idx := (winVal - 1) / 2
		if err := mul(result, result, table[idx]); err != nil {
			return err
		}
		i -= winLen
	}
	if isMont {
		return mctx.Reduce(z, result)
	}
	z.Set(result)
	return nil
}

func sqrRaw(a *Int) *Int {
	t := New()
	Sqr(t, a)
	return t
}

func mulRaw(a, b *Int) *Int {
	t := New()
	Mul(t, a, b)
	return t
}
