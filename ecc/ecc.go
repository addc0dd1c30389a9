package ecc

import (
	"github.com/libtom/tomcrypt/mpi"
	"github.com/libtom/tomcrypt/tcerr"
)

// PublicKey is a public point on one of the table's curves (spec §3 "ECC
// key").
type PublicKey struct {
	curve *Curve
	Pub   Point
}

// PrivateKey additionally carries the secret scalar.
type PrivateKey struct {
	PublicKey
	K *mpi.Int
}

// Curve returns the table entry this key was generated on.
func (pub *PublicKey) Curve() *Curve { return pub.curve }

func basePoint(c *Curve) *Point {
	return &Point{X: mpi.Copy(c.Gx), Y: mpi.Copy(c.Gy)}
}

// MakeKey generates a key pair on the smallest table entry covering
// sizeBytes (spec §4.9): draw the chosen curve's SizeBytes of random scalar
// k, Y = k*G.
func MakeKey(sizeBytes int, src mpi.RandSource) (*PrivateKey, error) {
	curve, err := selectCurve(sizeBytes)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, curve.SizeBytes)
	if _, err := src.Read(buf); err != nil {
		return nil, tcerr.New(tcerr.ErrReadPRNG, "reading ecc private scalar: %w", err)
	}
	k := mpi.New().SetBytes(buf)
	if k.IsZero() {
		k = mpi.NewInt64(1)
	}
	y, err := mulMod(k, basePoint(curve), curve)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{
		PublicKey: PublicKey{curve: curve, Pub: *y},
		K:         k,
	}, nil
}

// SameCurve reports whether two keys share a table entry.
func (pub *PublicKey) SameCurve(other *PublicKey) bool {
	return pub.curve == other.curve
}

// NewPublicKey builds a PublicKey from a curve table entry and a point,
// used by package packet when reconstructing a key from an imported
// packet (spec §4.9, mirrors original_source/ecc.c's ecc_import re-deriving
// key->idx from a stored size byte).
func NewPublicKey(curve *Curve, pub Point) *PublicKey {
	return &PublicKey{curve: curve, Pub: pub}
}

// CurveBySize returns the smallest table entry covering sizeBytes, exported
// for package packet's import path.
func CurveBySize(sizeBytes int) (*Curve, error) {
	return selectCurve(sizeBytes)
}

// SharedSecret computes the x-coordinate of k*Y_other (spec §4.9 "derive
// shared secret"), returned as big-endian minimal bytes — the standard ECDH
// convention of using only X, not the full point.
func (priv *PrivateKey) SharedSecret(otherPub *PublicKey) ([]byte, error) {
	if !priv.SameCurve(otherPub) {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "ecc shared secret: keys are from different curves")
	}
	z, err := mulModLadder(priv.K, &otherPub.Pub, priv.curve)
	if err != nil {
		return nil, err
	}
	return z.X.Bytes(), nil
}

// Signature is an ElGamal-style ECC signature (spec §4.9): an ephemeral
// public point R and a scalar B, grounded on original_source/ecc_sys.c's
// ecc_sign_hash/ecc_verify_hash — not ECDSA, a distinct construction the
// source library implements instead.
type Signature struct {
	R Point
	B *mpi.Int
}

// Sign produces a Signature over digest (spec §4.9): generate an ephemeral
// key pair (k, R=kG), b = (H(m) - x) * k^-1 mod order.
func (priv *PrivateKey) Sign(digest []byte, src mpi.RandSource) (*Signature, error) {
	curve := priv.curve
	ephemeral, err := MakeKey(curve.SizeBytes, src)
	if err != nil {
		return nil, err
	}

	m := mpi.New().SetBytes(digest)
	if err := mpi.Mod(m, m, curve.Order); err != nil {
		return nil, err
	}

	kInv := mpi.New()
	if err := mpi.InvMod(kInv, ephemeral.K, curve.Order); err != nil {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "ecc sign: ephemeral scalar has no inverse mod order: %w", err)
	}

	diff := mpi.New()
	mpi.Sub(diff, m, priv.K)
	if err := mpi.Mod(diff, diff, curve.Order); err != nil {
		return nil, err
	}

	b := mpi.New()
	mpi.Mul(b, diff, kInv)
	if err := mpi.Mod(b, b, curve.Order); err != nil {
		return nil, err
	}

	return &Signature{R: ephemeral.Pub, B: b}, nil
}

// Verify checks sig against digest per spec §4.9: b*R + Y == H(m)*G.
func (pub *PublicKey) Verify(digest []byte, sig *Signature) (bool, error) {
	curve := pub.curve

	if sig.B.IsNeg() || sig.B.Cmp(curve.Order) >= 0 {
		return false, nil
	}
	if !sig.R.onCurve(curve) {
		return false, nil
	}

	bR, err := mulMod(sig.B, &sig.R, curve)
	if err != nil {
		return false, nil
	}
	lhs, err := addPoint(bR, &pub.Pub, curve.Prime)
	if err != nil {
		return false, nil
	}

	m := mpi.New().SetBytes(digest)
	if err := mpi.Mod(m, m, curve.Order); err != nil {
		return false, err
	}
	rhs, err := mulMod(m, basePoint(curve), curve)
	if err != nil {
		return false, err
	}

	return lhs.X.Cmp(rhs.X) == 0 && lhs.Y.Cmp(rhs.Y) == 0, nil
}
