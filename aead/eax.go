// Package aead implements the L4 authenticated encryption modes named in
// spec §4.5/§4.6: EAX (CTR + OMAC, three domain-separated OMAC instances)
// and OCB (single-pass parallelizable AEAD). Both are generic over a
// registry.CipherDescriptor.
package aead

import (
	"github.com/libtom/tomcrypt/blockmode"
	"github.com/libtom/tomcrypt/mac"
	"github.com/libtom/tomcrypt/registry"
	"github.com/libtom/tomcrypt/tcerr"
)

// EAX implements the EAX mode from spec §4.5: three OMAC instances keyed
// under the same cipher key but domain-separated by a leading tweak block
// (0 = nonce, 1 = header/AAD, 2 = ciphertext), combined with CTR-mode
// encryption under the nonce's OMAC tag as the IV (grounded on eax.c's
// three-OMAC construction).
type EAX struct {
	key       registry.CipherKey
	blockSize int
}

func NewEAX(key registry.CipherKey, blockSize int) *EAX {
	return &EAX{key: key, blockSize: blockSize}
}

func (e *EAX) omacTweaked(tweak byte, msg []byte) ([]byte, error) {
	o, err := mac.NewOMAC(e.key, e.blockSize)
	if err != nil {
		return nil, err
	}
	padded := make([]byte, e.blockSize)
	padded[e.blockSize-1] = tweak
	full := append(padded, msg...)
	return o.Sum(full, e.blockSize)
}

// Seal encrypts pt and returns ciphertext||tag (tag is blockSize bytes,
// matching eax.c's default full-block tag).
func (e *EAX) Seal(nonce, header, pt []byte) ([]byte, error) {
	n, err := e.omacTweaked(0, nonce)
	if err != nil {
		return nil, err
	}
	h, err := e.omacTweaked(1, header)
	if err != nil {
		return nil, err
	}

	ctr, err := blockmode.NewCTR(e.key, e.blockSize, n)
	if err != nil {
		return nil, err
	}
	ct := make([]byte, len(pt))
	if err := ctr.Encrypt(ct, pt); err != nil {
		return nil, err
	}

	c, err := e.omacTweaked(2, ct)
	if err != nil {
		return nil, err
	}

	tag := make([]byte, e.blockSize)
	for i := range tag {
		tag[i] = n[i] ^ h[i] ^ c[i]
	}
	out := make([]byte, 0, len(ct)+len(tag))
	out = append(out, ct...)
	out = append(out, tag...)
	return out, nil
}

// Open verifies and decrypts a Seal output, returning the plaintext or
// ErrInvalidPacket if the tag does not verify (spec §7: never return
// partially-decrypted data on a failed tag check).
func (e *EAX) Open(nonce, header, sealed []byte) ([]byte, error) {
	if len(sealed) < e.blockSize {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "eax sealed input shorter than one tag")
	}
	ct := sealed[:len(sealed)-e.blockSize]
	gotTag := sealed[len(sealed)-e.blockSize:]

	n, err := e.omacTweaked(0, nonce)
	if err != nil {
		return nil, err
	}
	h, err := e.omacTweaked(1, header)
	if err != nil {
		return nil, err
	}
	c, err := e.omacTweaked(2, ct)
	if err != nil {
		return nil, err
	}
	wantTag := make([]byte, e.blockSize)
	for i := range wantTag {
		wantTag[i] = n[i] ^ h[i] ^ c[i]
	}
	if !constantTimeEqual(wantTag, gotTag) {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "eax authentication tag mismatch")
	}

	ctr, err := blockmode.NewCTR(e.key, e.blockSize, n)
	if err != nil {
		return nil, err
	}
	pt := make([]byte, len(ct))
	if err := ctr.Decrypt(pt, ct); err != nil {
		return nil, err
	}
	return pt, nil
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
