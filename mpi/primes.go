package mpi

import (
	"math/big"

	"github.com/ALTree/bigfloat"

	"github.com/libtom/tomcrypt/tcerr"
)

// smallPrimes is the fixed table of the first 256 primes used for trial
// division and as Miller-Rabin bases (spec §4.1), grounded on
// original_source/prime.c's PRIME_TAB. ProbablyPrime trial-divides by the
// whole table and takes its Miller-Rabin bases from a prefix sized by
// roundsFor.
var smallPrimes = firstPrimes(256)

func firstPrimes(n int) []uint32 {
	out := make([]uint32, 0, n)
	candidate := uint32(2)
	for len(out) < n {
		isPrime := true
		for _, p := range out {
			if uint32(p)*uint32(p) > candidate {
				break
			}
			if candidate%p == 0 {
				isPrime = false
				break
			}
		}
		if isPrime {
			out = append(out, candidate)
		}
		candidate++
	}
	return out
}

// roundsFor returns a Miller-Rabin round count keyed by bit size, giving an
// error probability of at most (1/4)^t (spec §4.1's size-keyed schedule).
func roundsFor(bits int) int {
	switch {
	case bits >= 1300:
		return 2
	case bits >= 850:
		return 3
	case bits >= 650:
		return 4
	case bits >= 550:
		return 5
	case bits >= 450:
		return 6
	case bits >= 400:
		return 7
	case bits >= 350:
		return 8
	case bits >= 300:
		return 9
	case bits >= 250:
		return 12
	case bits >= 200:
		return 15
	case bits >= 150:
		return 18
	default:
		return 27
	}
}

// ProbablyPrime reports whether a is probably prime: trial division against
// smallPrimes, then Miller-Rabin with t bases drawn from the same table
// (spec: mp_prime_is_prime semantics).
func ProbablyPrime(a *Int, t int) bool {
	if a.IsNeg() || a.IsZero() {
		return false
	}
	if cmpMag(a, NewInt64(1)) == 0 {
		return false
	}
	for _, p := range smallPrimes {
		pi := NewInt64(int64(p))
		if cmpMag(a, pi) == 0 {
			return true
		}
		r := New()
		if err := Mod(r, a, pi); err != nil {
			return false
		}
		if r.IsZero() {
			return false
		}
	}
	if t <= 0 {
		t = roundsFor(a.BitLen())
	}
	if t > len(smallPrimes) {
		t = len(smallPrimes)
	}
	for i := 0; i < t; i++ {
		base := NewInt64(int64(smallPrimes[i]))
		if !millerRabinWitness(a, base) {
			return false
		}
	}
	return true
}

// millerRabinWitness reports whether base is NOT a witness to a's
// compositeness, i.e. the Miller-Rabin test passes for this base.
func millerRabinWitness(n, base *Int) bool {
	nm1 := New()
	Sub(nm1, n, NewInt64(1))
	if nm1.IsZero() {
		return false
	}
	s := 0
	d := Copy(nm1)
	for d.IsEven() {
		ShrBits(d, d, 1)
		s++
	}
	x := New()
	if err := ExpMod(x, base, d, n); err != nil {
		return false
	}
	one := NewInt64(1)
	if cmpMag(x, one) == 0 || cmpMag(x, nm1) == 0 {
		return true
	}
	for i := 0; i < s-1; i++ {
		Sqr(x, x)
		Mod(x, x, n)
		if cmpMag(x, nm1) == 0 {
			return true
		}
		if cmpMag(x, one) == 0 {
			return false
		}
	}
	return false
}

// PrimeConfidence documents/tests the error bound named in spec §4.1: a
// Miller-Rabin test with t independently chosen bases has false-positive
// probability at most (1/4)^t. Built on github.com/ALTree/bigfloat, the
// teacher's extended-precision float library, generalized here from
// HE-parameter scaling computations to a primality confidence bound.
func PrimeConfidence(rounds int) *big.Float {
	quarter := big.NewFloat(0.25)
	return bigfloat.Pow(quarter, big.NewFloat(float64(rounds)))
}

// PrimeFlag selects the MSB/parity/BBS constraints RandPrime applies to its
// candidates (spec §4.1 "random prime generation"). RandPrime reads random
// bytes from a RandSource (the PRNG-descriptor abstraction lives in package
// registry; mpi only needs a byte source, expressed here as the one-method
// RandSource interface to keep this package free of a registry dependency).
type PrimeFlag uint8

const (
	// PrimeFlagMSB forces the most significant bit set (full bit length).
	PrimeFlagMSB PrimeFlag = 1 << iota
	// PrimeFlagMSB2 forces the top two bits set (product of two such primes
	// has a predictable bit length).
	PrimeFlagMSB2
	// PrimeFlagBBS forces p = 3 mod 4 (Blum-Blum-Shub compatible).
	PrimeFlagBBS
	// PrimeFlagOdd forces the low bit set (trivially true for any prime > 2,
	// kept for parity with the C API's explicit flag).
	PrimeFlagOdd
)

// RandSource yields cryptographically random bytes; registry.PRNGDescriptor
// satisfies this via its Read method.
type RandSource interface {
	Read(buf []byte) (int, error)
}

// RandPrime draws random candidates of the given byte size, applying flags,
// until one passes ProbablyPrime, incrementing by 2 between tries that are
// "close" and redrawing every few attempts to avoid getting stuck in a dense
// composite run (spec §4.1).
func RandPrime(sizeBytes int, flags PrimeFlag, src RandSource) (*Int, error) {
	if sizeBytes <= 0 {
		return nil, tcerr.New(tcerr.ErrInvalidPrimeSize, "prime size must be positive")
	}
	buf := make([]byte, sizeBytes)
	for attempt := 0; ; attempt++ {
		if attempt%64 == 0 {
			if _, err := src.Read(buf); err != nil {
				return nil, tcerr.New(tcerr.ErrReadPRNG, "reading entropy for candidate prime: %w", err)
			}
			// buf is big-endian: buf[0] is the most significant byte,
			// buf[len-1] the least significant.
			buf[len(buf)-1] |= 0x01 // odd, spec flag "force odd" is always applied
			if flags&PrimeFlagMSB != 0 {
				buf[0] |= 0x80
			}
			if flags&PrimeFlagMSB2 != 0 {
				buf[0] |= 0xC0
			}
		} else {
			incrementBytes(buf)
		}
		if flags&PrimeFlagBBS != 0 {
			buf[len(buf)-1] = (buf[len(buf)-1] &^ 0x03) | 0x03
		}
		cand := New().SetBytes(buf)
		if ProbablyPrime(cand, 0) {
			return cand, nil
		}
	}
}

// incrementBytes adds 2 to a big-endian byte buffer in place (advance to the
// next odd candidate without a full redraw).
func incrementBytes(buf []byte) {
	carry := uint16(2)
	for i := len(buf) - 1; i >= 0 && carry != 0; i-- {
		sum := uint16(buf[i]) + carry
		buf[i] = byte(sum)
		carry = sum >> 8
	}
}
