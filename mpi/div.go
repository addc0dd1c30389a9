package mpi

import "github.com/libtom/tomcrypt/tcerr"

// DivMod sets q = a/b (truncated toward zero) and r = a - q*b, using Knuth's
// Algorithm D (HAC 14.20) as adapted in original_source/mpi.c's s_mp_div: a
// normalization shift aligning the divisor's top digit, double-digit quotient
// estimation, a multiply-back-and-correct loop, and a final unnormalization
// shift of the remainder. q and/or r may be nil if the caller doesn't need
// that output.
func DivMod(q, r, a, b *Int) error {
	if err := validateModulus(b); err != nil {
		return err
	}
	if cmpMag(a, b) < 0 {
		if q != nil {
			q.d = q.d[:0]
			q.neg = false
		}
		if r != nil {
			r.Set(a)
		}
		return nil
	}
	if len(b.d) == 1 {
		qq, rr := divModSmall(a.d, b.d[0])
		if q != nil {
			q.d = qq
			q.clamp()
			q.neg = (a.neg != b.neg) && !q.IsZero()
		}
		if r != nil {
			r.d = rr
			r.clamp()
			r.neg = a.neg && !r.IsZero()
		}
		return nil
	}

	// Normalize: shift both operands left so the divisor's top digit has its
	// MSB set (within the digit width), matching Knuth's normalization step.
	shift := 0
	top := b.d[len(b.d)-1]
	for top&(digitMask>>1+1) == 0 && shift < digitBits-1 {
		top <<= 1
		shift++
	}
	un := New()
	vn := New()
	aAbs := &Int{d: a.d}
	bAbs := &Int{d: b.d}
	ShlBits(un, aAbs, shift)
	ShlBits(vn, bAbs, shift)

	n := len(vn.d)
	m := len(un.d) - n
	if m < 0 {
		m = 0
	}
	un.setLen(len(un.d) + 1) // room for the extra leading digit Knuth assumes

	qd := make([]digit, m+1)

	vHigh := vn.d[n-1]
	var vHigh2 digit
	if n >= 2 {
		vHigh2 = vn.d[n-2]
	}

	for j := m; j >= 0; j-- {
		numHi := (un.d[j+n] << digitBits) | un.d[j+n-1]
		qhat := numHi / vHigh
		rhat := numHi % vHigh
		if qhat > digitMask {
			qhat = digitMask
			rhat = numHi - qhat*vHigh
		}
		for rhat <= digitMask && qhat*vHigh2 > (rhat<<digitBits)|un.d[j+n-2] {
			qhat--
			rhat += vHigh
		}

		// Multiply-and-subtract qhat*vn from un[j..j+n].
		var borrow digit
		var carry digit
		for i := 0; i < n; i++ {
			p := qhat*vn.d[i] + carry
			carry = p >> digitBits
			sub := un.d[j+i] - (p & digitMask) - borrow
			if un.d[j+i] < (p&digitMask)+borrow {
				un.d[j+i] = (sub + digitMask + 1) & digitMask
				borrow = 1
			} else {
				un.d[j+i] = sub & digitMask
				borrow = 0
			}
		}
		sub := un.d[j+n] - carry - borrow
		underflow := un.d[j+n] < carry+borrow
		un.d[j+n] = sub & digitMask

		if underflow {
			// qhat was one too large: add back vn once.
			qhat--
			var c digit
			for i := 0; i < n; i++ {
				s := un.d[j+i] + vn.d[i] + c
				un.d[j+i] = s & digitMask
				c = s >> digitBits
			}
			un.d[j+n] = (un.d[j+n] + c) & digitMask
		}
		qd[j] = qhat
	}

	if q != nil {
		q.d = qd
		q.clamp()
		q.neg = (a.neg != b.neg) && !q.IsZero()
	}
	if r != nil {
		un.d = un.d[:n]
		un.clamp()
		ShrBits(r, un, shift)
		r.neg = a.neg && !r.IsZero()
	}
	return nil
}

// divModSmall divides the magnitude a by a single digit d, used as the fast
// path for single-digit divisors (spec "small divisor" case HAC elides).
func divModSmall(a []digit, d digit) (q []digit, r []digit) {
	q = make([]digit, len(a))
	var rem digit
	for i := len(a) - 1; i >= 0; i-- {
		cur := (rem << digitBits) | a[i]
		q[i] = cur / d
		rem = cur % d
	}
	if rem == 0 {
		return q, nil
	}
	return q, []digit{rem}
}

// Mod sets z = a mod m with 0 <= z < m (Euclidean remainder, unlike DivMod's
// r which follows the sign of a).
func Mod(z, a, m *Int) error {
	if err := validateModulus(m); err != nil {
		return err
	}
	r := New()
	if err := DivMod(nil, r, a, m); err != nil {
		return err
	}
	if r.IsNeg() {
		Add(z, r, &Int{d: m.d})
	} else {
		z.Set(r)
	}
	return nil
}

// Div sets z = floor(a/b) rounding toward zero (truncating division), or
// returns ErrInvalidArg if b is zero.
func Div(z, a, b *Int) error {
	if b.IsZero() {
		return tcerr.New(tcerr.ErrInvalidArg, "division by zero")
	}
	return DivMod(z, nil, a, b)
}
