// Package mac implements the L3 message authentication codes named in spec
// §4.3/§4.4: OMAC (CMAC, RFC 4493-style one-key CBC-MAC) and PMAC
// (parallelizable MAC), both generic over any registry.CipherDescriptor's
// block size via GF(2^n) field doubling (n = 64 for a 8-byte block cipher,
// n = 128 for a 16-byte one — grounded on omac.c/pmac.c's own dispatch on
// block size).
package mac

import (
	"github.com/libtom/tomcrypt/registry"
	"github.com/libtom/tomcrypt/tcerr"
)

// reducingPoly returns the GF(2^n) reduction polynomial for field doubling,
// keyed by block size in bytes (spec §4.3: 0x87 for 128-bit blocks, 0x1B for
// 64-bit blocks — the only two block sizes any registered cipher uses).
func reducingPoly(blockSize int) (byte, error) {
	switch blockSize {
	case 16:
		return 0x87, nil
	case 8:
		return 0x1B, nil
	default:
		return 0, tcerr.New(tcerr.ErrInvalidArg, "mac: no GF(2^n) reduction constant for block size %d", blockSize)
	}
}

// gfDouble left-shifts buf by one bit within GF(2^n), reducing by poly when
// the top bit was set (spec §4.3/§4.4 "field doubling").
func gfDouble(buf []byte, poly byte) {
	carry := byte(0)
	for i := len(buf) - 1; i >= 0; i-- {
		next := buf[i] >> 7
		buf[i] = (buf[i] << 1) | carry
		carry = next
	}
	if carry != 0 {
		buf[len(buf)-1] ^= poly
	}
}

func xorBlock(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// OMAC (spec §4.3) computes a one-key CBC-MAC (equivalent to NIST CMAC) over
// an arbitrary-length message with a single registered cipher key.
type OMAC struct {
	key       registry.CipherKey
	blockSize int
	poly      byte
}

// NewOMAC builds an OMAC state; the two OMAC subkeys are computed lazily per
// Sum call (state carried is just the scheduled cipher key); key must
// already be set up via the cipher descriptor.
func NewOMAC(key registry.CipherKey, blockSize int) (*OMAC, error) {
	poly, err := reducingPoly(blockSize)
	if err != nil {
		return nil, err
	}
	return &OMAC{key: key, blockSize: blockSize, poly: poly}, nil
}

func (o *OMAC) subkeys() (k1, k2 []byte) {
	zero := make([]byte, o.blockSize)
	l := make([]byte, o.blockSize)
	o.key.EncryptBlock(l, zero)
	k1 = append([]byte(nil), l...)
	gfDouble(k1, o.poly)
	k2 = append([]byte(nil), k1...)
	gfDouble(k2, o.poly)
	return k1, k2
}

// Sum computes the OMAC tag over msg, truncated to tagLen bytes (spec §4.3:
// "tag length is caller-selectable, truncated from the full block").
func (o *OMAC) Sum(msg []byte, tagLen int) ([]byte, error) {
	if tagLen <= 0 || tagLen > o.blockSize {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "omac tag length %d out of range (1..%d)", tagLen, o.blockSize)
	}
	k1, k2 := o.subkeys()

	bs := o.blockSize
	nBlocks := (len(msg) + bs - 1) / bs
	complete := len(msg) > 0 && len(msg)%bs == 0
	if nBlocks == 0 {
		nBlocks = 1
		complete = false
	}

	state := make([]byte, bs)
	for i := 0; i < nBlocks-1; i++ {
		blk := msg[i*bs : (i+1)*bs]
		tmp := make([]byte, bs)
		xorBlock(tmp, state, blk)
		o.key.EncryptBlock(state, tmp)
	}

	last := make([]byte, bs)
	if complete {
		copy(last, msg[(nBlocks-1)*bs:])
		xorBlock(last, last, k1)
	} else {
		rem := msg[(nBlocks-1)*bs:]
		copy(last, rem)
		last[len(rem)] = 0x80
		xorBlock(last, last, k2)
	}
	xorBlock(last, last, state)
	tag := make([]byte, bs)
	o.key.EncryptBlock(tag, last)
	return tag[:tagLen], nil
}

// Verify reports whether tag is a valid OMAC tag for msg (constant-time
// compare, spec §7 "never short-circuit a tag comparison").
func (o *OMAC) Verify(msg, tag []byte) (bool, error) {
	want, err := o.Sum(msg, len(tag))
	if err != nil {
		return false, err
	}
	return constantTimeEqual(want, tag), nil
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

// PMAC (spec §4.4) is the parallelizable MAC: each full message block is
// masked by a distinct power-of-two multiple of L before encryption, so
// blocks can be processed independently (this implementation processes them
// sequentially for simplicity, matching the spec's note that parallelism is
// an optimization, not a semantic requirement).
type PMAC struct {
	key       registry.CipherKey
	blockSize int
	poly      byte
}

func NewPMAC(key registry.CipherKey, blockSize int) (*PMAC, error) {
	poly, err := reducingPoly(blockSize)
	if err != nil {
		return nil, err
	}
	return &PMAC{key: key, blockSize: blockSize, poly: poly}, nil
}

// maskSequence returns the first n doublings of L = Ek(0), one mask per
// block; no separate mask is derived for a complete final block (Sum applies
// one extra doubling to the checksum there instead). pmac.c's Gray-code-ish
// mask schedule is simplified here to repeated doubling
// (spec §4.4 only requires "distinct masks per block," not the specific
// Gray-code enumeration order the source uses for performance).
func (p *PMAC) maskSequence(n int) [][]byte {
	zero := make([]byte, p.blockSize)
	l := make([]byte, p.blockSize)
	p.key.EncryptBlock(l, zero)
	masks := make([][]byte, n)
	cur := append([]byte(nil), l...)
	for i := 0; i < n; i++ {
		gfDouble(cur, p.poly)
		masks[i] = append([]byte(nil), cur...)
	}
	return masks
}

func (p *PMAC) Sum(msg []byte, tagLen int) ([]byte, error) {
	if tagLen <= 0 || tagLen > p.blockSize {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "pmac tag length %d out of range (1..%d)", tagLen, p.blockSize)
	}
	bs := p.blockSize
	nBlocks := (len(msg) + bs - 1) / bs
	complete := len(msg) > 0 && len(msg)%bs == 0
	if nBlocks == 0 {
		nBlocks = 1
		complete = false
	}

	masks := p.maskSequence(nBlocks)
	sum := make([]byte, bs)
	for i := 0; i < nBlocks-1; i++ {
		blk := msg[i*bs : (i+1)*bs]
		tmp := make([]byte, bs)
		xorBlock(tmp, blk, masks[i])
		enc := make([]byte, bs)
		p.key.EncryptBlock(enc, tmp)
		xorBlock(sum, sum, enc)
	}

	last := make([]byte, bs)
	if complete {
		copy(last, msg[(nBlocks-1)*bs:])
		xorBlock(sum, sum, last)
		xorBlock(sum, sum, masks[nBlocks-1])
		// "complete" mask variant adds one extra doubling per pmac.c.
		gfDouble(sum, p.poly)
	} else {
		rem := msg[(nBlocks-1)*bs:]
		copy(last, rem)
		last[len(rem)] = 0x80
		xorBlock(sum, sum, last)
	}

	tag := make([]byte, bs)
	p.key.EncryptBlock(tag, sum)
	return tag[:tagLen], nil
}

func (p *PMAC) Verify(msg, tag []byte) (bool, error) {
	want, err := p.Sum(msg, len(tag))
	if err != nil {
		return false, err
	}
	return constantTimeEqual(want, tag), nil
}
