package dh

import (
	"github.com/libtom/tomcrypt/mpi"
	"github.com/libtom/tomcrypt/tcerr"
)

// PublicKey identifies a table entry and a public value y = g^x mod p
// (spec §3 "DH key").
type PublicKey struct {
	entry *PrimeEntry
	Y     *mpi.Int
}

// PrivateKey additionally carries the secret exponent.
type PrivateKey struct {
	PublicKey
	X *mpi.Int
}

// halfOrder returns q = (p-1)/2, the subgroup order signatures are reduced
// modulo (spec §9's resolution of the Open Question: the non-standard
// (p-1)/2 modulus is preserved, not replaced with p-1).
func (e *PrimeEntry) halfOrder() *mpi.Int {
	one := mpi.NewInt64(1)
	pm1 := mpi.New()
	mpi.Sub(pm1, e.P, one)
	q := mpi.New()
	mpi.Div(q, pm1, mpi.NewInt64(2))
	return q
}

// MakeKey generates a key pair from the smallest table entry covering
// sizeBytes (spec §4.8): draw sizeBytes of random exponent, y = g^x mod p.
func MakeKey(sizeBytes int, src mpi.RandSource) (*PrivateKey, error) {
	entry, err := selectEntry(sizeBytes)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, sizeBytes)
	if _, err := src.Read(buf); err != nil {
		return nil, tcerr.New(tcerr.ErrReadPRNG, "reading dh private exponent: %w", err)
	}
	x := mpi.New().SetBytes(buf)
	y := mpi.New()
	if err := mpi.ExpMod(y, entry.G, x, entry.P); err != nil {
		return nil, err
	}
	return &PrivateKey{
		PublicKey: PublicKey{entry: entry, Y: y},
		X:         x,
	}, nil
}

// SameGroup reports whether two keys share a table entry (required before
// combining them in SharedSecret or Verify).
func (pub *PublicKey) SameGroup(other *PublicKey) bool {
	return pub.entry == other.entry
}

// EntryName returns the table entry name this key was generated from
// (used by package packet to tag exported keys with a size, not the full
// entry, the way original_source/dh.c's export stores a byte size rather
// than a name).
func (pub *PublicKey) EntryName() string {
	return pub.entry.Name
}

// EntrySizeBytes returns the table entry's declared byte size.
func (pub *PublicKey) EntrySizeBytes() int {
	return pub.entry.SizeBytes
}

// NewPublicKeyForSize rebuilds a PublicKey given the table entry size in
// bytes (as recovered from an imported packet) and the public value y
// (spec §4.8, mirrors original_source/dh.c's dh_import re-deriving key->idx
// from a stored size byte).
func NewPublicKeyForSize(sizeBytes int, y *mpi.Int) (*PublicKey, error) {
	entry, err := selectEntry(sizeBytes)
	if err != nil {
		return nil, err
	}
	return &PublicKey{entry: entry, Y: y}, nil
}

// SharedSecret computes z = y_other^x mod p, returned as big-endian minimal
// bytes (spec §4.8 "derive shared secret").
func (priv *PrivateKey) SharedSecret(otherPub *PublicKey) ([]byte, error) {
	if !priv.SameGroup(otherPub) {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "dh shared secret: keys are from different table entries")
	}
	z := mpi.New()
	if err := mpi.ExpMod(z, otherPub.Y, priv.X, priv.entry.P); err != nil {
		return nil, err
	}
	return z.Bytes(), nil
}

// Sign produces an ElGamal-style signature (a, b) over digest (spec §4.8):
// pick random k coprime to (p-1)/2, a = g^k mod p,
// b = k^-1 * (H(m) - x*a) mod (p-1)/2.
func (priv *PrivateKey) Sign(digest []byte, src mpi.RandSource) (a, b *mpi.Int, err error) {
	entry := priv.entry
	q := entry.halfOrder()
	h := mpi.New().SetBytes(digest)
	if err := mpi.Mod(h, h, q); err != nil {
		return nil, nil, err
	}

	kbuf := make([]byte, entry.SizeBytes)
	for {
		if _, err := src.Read(kbuf); err != nil {
			return nil, nil, tcerr.New(tcerr.ErrReadPRNG, "reading dh signature nonce: %w", err)
		}
		k := mpi.New().SetBytes(kbuf)
		if err := mpi.Mod(k, k, q); err != nil {
			return nil, nil, err
		}
		if k.IsZero() {
			continue
		}
		g := mpi.New()
		mpi.GCD(g, k, q)
		if g.Cmp(mpi.NewInt64(1)) != 0 {
			continue
		}

		aCand := mpi.New()
		if err := mpi.ExpMod(aCand, entry.G, k, entry.P); err != nil {
			return nil, nil, err
		}

		kInv := mpi.New()
		if err := mpi.InvMod(kInv, k, q); err != nil {
			return nil, nil, err
		}
		xa := mpi.New()
		mpi.Mul(xa, priv.X, aCand)
		if err := mpi.Mod(xa, xa, q); err != nil {
			return nil, nil, err
		}
		diff := mpi.New()
		mpi.Sub(diff, h, xa)
		if err := mpi.Mod(diff, diff, q); err != nil {
			return nil, nil, err
		}
		bCand := mpi.New()
		mpi.Mul(bCand, kInv, diff)
		if err := mpi.Mod(bCand, bCand, q); err != nil {
			return nil, nil, err
		}
		return aCand, bCand, nil
	}
}

// Verify checks a DH signature per spec §4.8/§9: g^H(m) mod p == y^a * a^b
// mod p, where H(m) is first reduced mod (p-1)/2.
func (pub *PublicKey) Verify(digest []byte, a, b *mpi.Int) (bool, error) {
	entry := pub.entry
	q := entry.halfOrder()

	if a.IsNeg() || a.Cmp(entry.P) >= 0 || b.IsNeg() || b.Cmp(q) >= 0 {
		return false, nil
	}

	h := mpi.New().SetBytes(digest)
	if err := mpi.Mod(h, h, q); err != nil {
		return false, err
	}

	lhs := mpi.New()
	if err := mpi.ExpMod(lhs, entry.G, h, entry.P); err != nil {
		return false, err
	}

	ya := mpi.New()
	if err := mpi.ExpMod(ya, pub.Y, a, entry.P); err != nil {
		return false, err
	}
	ab := mpi.New()
	if err := mpi.ExpMod(ab, a, b, entry.P); err != nil {
		return false, err
	}
	rhs := mpi.New()
	mpi.Mul(rhs, ya, ab)
	if err := mpi.Mod(rhs, rhs, entry.P); err != nil {
		return false, err
	}

	return lhs.Cmp(rhs) == 0, nil
}
