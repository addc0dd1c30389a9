package rsa

import "github.com/libtom/tomcrypt/tcerr"

// minPSLen is the minimum legal PKCS#1 v1.5 padding-string length named in
// spec §4.7/§8 ("PS length exactly 8, the min legal").
const minPSLen = 8

// nonZeroRandom fills buf with random nonzero bytes (spec §4.7: "PS is >= 8
// bytes of nonzero random"), redrawing any zero byte individually so the
// distribution stays uniform over {1..255} per byte.
func nonZeroRandom(buf []byte, src RandSource) error {
	one := make([]byte, 1)
	for i := range buf {
		for {
			if _, err := src.Read(one); err != nil {
				return tcerr.New(tcerr.ErrReadPRNG, "drawing pkcs1 padding byte: %w", err)
			}
			if one[0] != 0 {
				buf[i] = one[0]
				break
			}
		}
	}
	return nil
}

// RandSource supplies random bytes for padding (satisfied by any
// registry.PRNGState or mpi.RandSource).
type RandSource interface {
	Read(buf []byte) (int, error)
}

// PadPKCS1Enc builds EM = 0x00 || 0x02 || PS || 0x00 || M, total length
// modSize (spec §4.7). PS is nonzero random and at least minPSLen bytes.
func PadPKCS1Enc(msg []byte, modSize int, src RandSource) ([]byte, error) {
	psLen := modSize - len(msg) - 3
	if psLen < minPSLen {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "message too long for pkcs1 encryption padding: need PS >= %d bytes, have %d", minPSLen, psLen)
	}
	em := make([]byte, modSize)
	em[0] = 0x00
	em[1] = 0x02
	if err := nonZeroRandom(em[2:2+psLen], src); err != nil {
		return nil, err
	}
	em[2+psLen] = 0x00
	copy(em[3+psLen:], msg)
	return em, nil
}

// DepadPKCS1Enc reverses PadPKCS1Enc, checking the 0x00/0x02 framing and the
// PS length/separator (spec §4.7/§8: PS shorter than minPSLen is rejected).
func DepadPKCS1Enc(em []byte) ([]byte, error) {
	if len(em) < 3+minPSLen || em[0] != 0x00 || em[1] != 0x02 {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "pkcs1 encryption padding: bad framing")
	}
	sep := -1
	for i := 2; i < len(em); i++ {
		if em[i] == 0x00 {
			sep = i
			break
		}
	}
	if sep < 0 {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "pkcs1 encryption padding: no separator found")
	}
	psLen := sep - 2
	if psLen < minPSLen {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "pkcs1 encryption padding: PS length %d below minimum %d", psLen, minPSLen)
	}
	return append([]byte(nil), em[sep+1:]...), nil
}

// PadSandwich builds the library's own OAEP-like encrypt-key padding (spec
// §4.7): EM = 0xFF || R1 || M || R2 || 0xFF, with |R1| = |R2| = |M|-1, total
// length 3*|M|.
func PadSandwich(msg []byte, src RandSource) ([]byte, error) {
	if len(msg) == 0 {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "sandwich padding requires a non-empty message")
	}
	rLen := len(msg) - 1
	em := make([]byte, 3*len(msg))
	em[0] = 0xFF
	if _, err := src.Read(em[1 : 1+rLen]); err != nil {
		return nil, tcerr.New(tcerr.ErrReadPRNG, "drawing sandwich padding R1: %w", err)
	}
	copy(em[1+rLen:], msg)
	offset := 1 + rLen + len(msg)
	if _, err := src.Read(em[offset : offset+rLen]); err != nil {
		return nil, tcerr.New(tcerr.ErrReadPRNG, "drawing sandwich padding R2: %w", err)
	}
	em[len(em)-1] = 0xFF
	return em, nil
}

// DepadSandwich reverses PadSandwich given the known message length.
func DepadSandwich(em []byte, msgLen int) ([]byte, error) {
	want := 3 * msgLen
	if len(em) != want || em[0] != 0xFF || em[len(em)-1] != 0xFF {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "sandwich padding: bad bookends")
	}
	rLen := msgLen - 1
	msg := em[1+rLen : 1+rLen+msgLen]
	return append([]byte(nil), msg...), nil
}

// minLegacyRun is the minimum count of 0xFF bytes the hardened legacy
// signature-padding check requires on each side (spec §4.7/§9: reject any
// signature whose padding string has fewer than 8 0xFF bytes).
const minLegacyRun = 8

// PadPKCS1SigLegacy builds the library's own (non-RFC) legacy signature
// padding: EM = 0xFF-run || M || 0xFF-run, each run |M| bytes, total length
// 3*|M| (spec §4.7 "PKCS#1 signature padding (legacy)").
func PadPKCS1SigLegacy(msg []byte) []byte {
	em := make([]byte, 3*len(msg))
	for i := 0; i < len(msg); i++ {
		em[i] = 0xFF
	}
	copy(em[len(msg):2*len(msg)], msg)
	for i := 2 * len(msg); i < len(em); i++ {
		em[i] = 0xFF
	}
	return em
}

// DepadPKCS1SigLegacy reverses PadPKCS1SigLegacy, hardened per spec §9
// against Bleichenbacher-style forgeries: both the leading and trailing run
// must contain at least minLegacyRun 0xFF bytes, the total length must
// match exactly (no trailing garbage), and the digest comparison runs over
// the full buffer without short-circuiting on the first mismatch.
func DepadPKCS1SigLegacy(em []byte, digestLen int) ([]byte, error) {
	if len(em) != 3*digestLen {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "legacy signature padding: length mismatch")
	}
	lead := em[:digestLen]
	msg := em[digestLen : 2*digestLen]
	trail := em[2*digestLen:]

	leadCount, trailCount := 0, 0
	for i := 0; i < digestLen; i++ {
		if lead[i] == 0xFF {
			leadCount++
		}
		if trail[i] == 0xFF {
			trailCount++
		}
	}
	if leadCount < minLegacyRun || trailCount < minLegacyRun {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "legacy signature padding: padding string shorter than %d bytes", minLegacyRun)
	}
	return append([]byte(nil), msg...), nil
}
