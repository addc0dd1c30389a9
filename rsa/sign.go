package rsa

import (
	"github.com/libtom/tomcrypt/mpi"
	"github.com/libtom/tomcrypt/tcerr"
)

// Sign produces a PKCS#1-v1.5-legacy-padded signature over digest (spec
// §4.7: sign a message digest, not the message itself — callers hash first).
func (priv *PrivateKey) Sign(digest []byte) ([]byte, error) {
	modSize := priv.ModulusSize()
	em := PadPKCS1SigLegacy(digest)
	if len(em) > modSize {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "digest too long for this modulus size: padded length %d > modulus %d", len(em), modSize)
	}
	m := mpi.New().SetBytes(em)
	s, err := priv.PrivateOp(m)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, modSize)
	if !s.FillBytes(sig) {
		return nil, tcerr.New(tcerr.ErrBufferOverflow, "rsa signature does not fit in modulus width")
	}
	return sig, nil
}

// Verify checks sig against digest (spec §4.7/§9: run the public exptmod
// exactly once, then fully decode and compare — no early exit on the first
// mismatched byte of the padding or digest).
func (pub *PublicKey) Verify(digest, sig []byte) (bool, error) {
	modSize := pub.ModulusSize()
	if len(sig) != modSize {
		return false, nil
	}
	s := mpi.New().SetBytes(sig)
	if s.Cmp(pub.N) >= 0 {
		return false, nil
	}
	m, err := pub.PublicOp(s)
	if err != nil {
		return false, err
	}
	em := make([]byte, 3*len(digest))
	if !m.FillBytes(em) {
		return false, nil
	}
	decoded, err := DepadPKCS1SigLegacy(em, len(digest))
	if err != nil {
		return false, nil
	}
	return constantTimeEqual(decoded, digest), nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
