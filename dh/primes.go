// Package dh implements the L5 Diffie-Hellman system named in spec §4.8: a
// fixed table of safe primes, key generation, shared-secret derivation, and
// an ElGamal-style sign/verify scheme over the same group.
package dh

import (
	"github.com/libtom/tomcrypt/mpi"
	"github.com/libtom/tomcrypt/tcerr"
)

// radix64Alphabet is the digit order original_source/dh.c's mp_read_radix
// call (base 64) expects: '0'-'9' then 'A'-'Z' then 'a'-'z' then '+' '/',
// libtommath's s_rmap order.
const radix64Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz+/"

var radix64Value [256]int8

func init() {
	for i := range radix64Value {
		radix64Value[i] = -1
	}
	for i := 0; i < len(radix64Alphabet); i++ {
		radix64Value[radix64Alphabet[i]] = int8(i)
	}
}

func mustRadix64(s string) *mpi.Int {
	z := mpi.New()
	sixtyFour := mpi.NewInt64(64)
	for i := 0; i < len(s); i++ {
		v := radix64Value[s[i]]
		if v < 0 {
			panic("dh: invalid radix-64 digit in built-in prime table")
		}
		mpi.Mul(z, z, sixtyFour)
		mpi.Add(z, z, mpi.NewInt64(int64(v)))
	}
	return z
}

// PrimeEntry is one row of the fixed safe-prime table (spec §4.8): a byte
// size, a generator, and the safe prime itself. Table contents and the
// base/prime radix-64 encodings are copied verbatim from
// original_source/dh.c's `sets[]`.
type PrimeEntry struct {
	Name      string
	SizeBytes int
	G         *mpi.Int
	P         *mpi.Int
}

// Primes is the fixed table named in spec §4.8, organized smallest to
// largest (the invariant original_source/dh.c documents and this module
// preserves).
var Primes []PrimeEntry

func addEntry(name string, sizeBytes int, base, prime string) {
	Primes = append(Primes, PrimeEntry{
		Name:      name,
		SizeBytes: sizeBytes,
		G:         mustRadix64(base),
		P:         mustRadix64(prime),
	})
}

func init() {
	addEntry("DH-768", 96, "4",
		"F///////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"//////m3wvV")
	addEntry("DH-1024", 128, "4",
		"F///////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////m3C47")
	addEntry("DH-1280", 160, "4",
		"F///////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"//////////////////////////////m4kSN")
	addEntry("DH-1536", 192, "4",
		"F///////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////m5uqd")
	addEntry("DH-1792", 224, "4",
		"F///////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"//////////////////////////////////////////////////////mT/sd")
	addEntry("DH-2048", 256, "3",
		"3///////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"/////////////////////////////////////////m8MPh")
	addEntry("DH-2560", 320, "4",
		"3///////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"/////mKFpF")
	addEntry("DH-3072", 384, "4",
		"3///////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"/////////////////////////////m32nN")
	addEntry("DH-4096", 512, "4",
		"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"////////////////////////////////////////////////////////////"+
			"/////////////////////m8pOF")
}

// selectEntry picks the smallest table entry whose size is >= sizeBytes
// (spec §4.8 "Make key: pick smallest table entry >= requested size").
func selectEntry(sizeBytes int) (*PrimeEntry, error) {
	for i := range Primes {
		if Primes[i].SizeBytes >= sizeBytes {
			return &Primes[i], nil
		}
	}
	return nil, tcerr.New(tcerr.ErrInvalidKeySize, "no dh prime table entry covers a requested size of %d bytes", sizeBytes)
}

// SelfTest validates every table entry per spec §8: p is prime, (p-1)/2 is
// prime (Sophie-Germain pair), and g^((p-1)/2) mod p = 1.
func SelfTest() error {
	one := mpi.NewInt64(1)
	two := mpi.NewInt64(2)
	for _, e := range Primes {
		if !mpi.ProbablyPrime(e.P, 0) {
			return tcerr.New(tcerr.ErrFailTestVector, "dh table entry %s: p is not prime", e.Name)
		}
		pm1 := mpi.New()
		mpi.Sub(pm1, e.P, one)
		q := mpi.New()
		if err := mpi.Div(q, pm1, two); err != nil {
			return err
		}
		if !mpi.ProbablyPrime(q, 0) {
			return tcerr.New(tcerr.ErrFailTestVector, "dh table entry %s: (p-1)/2 is not prime", e.Name)
		}
		chk := mpi.New()
		if err := mpi.ExpMod(chk, e.G, q, e.P); err != nil {
			return err
		}
		if chk.Cmp(one) != 0 {
			return tcerr.New(tcerr.ErrFailTestVector, "dh table entry %s: g^((p-1)/2) mod p != 1", e.Name)
		}
	}
	return nil
}
