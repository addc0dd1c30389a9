// Package blockmode implements the L2 block cipher modes named in spec
// §4.2: ECB, CBC, CFB, OFB, CTR, each operating over any
// registry.CipherDescriptor rather than a fixed cipher, per the spec's
// "modes are generic over the descriptor table" requirement.
package blockmode

import (
	"github.com/libtom/tomcrypt/registry"
	"github.com/libtom/tomcrypt/tcerr"
)

func xorInto(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

func incrementCounter(ctr []byte) {
	for i := len(ctr) - 1; i >= 0; i-- {
		ctr[i]++
		if ctr[i] != 0 {
			return
		}
	}
}

// ECB is the degenerate, padding-free electronic-codebook mode named in
// spec §4.2 (included for KAT/interop reasons only; callers should prefer
// CTR or an AEAD mode for anything beyond a single block of non-secret
// structure, per spec §9's general guidance against bare ECB use).
type ECB struct {
	key       registry.CipherKey
	blockSize int
}

// NewECB builds an ECB mode state over an already-scheduled cipher key.
func NewECB(key registry.CipherKey, blockSize int) *ECB {
	return &ECB{key: key, blockSize: blockSize}
}

func (m *ECB) validate(dst, src []byte) error {
	if len(src)%m.blockSize != 0 {
		return tcerr.New(tcerr.ErrInvalidArg, "ecb input length %d is not a multiple of the block size %d", len(src), m.blockSize)
	}
	if len(dst) < len(src) {
		return tcerr.New(tcerr.ErrBufferOverflow, "ecb output buffer too small: have %d need %d", len(dst), len(src))
	}
	return nil
}

func (m *ECB) Encrypt(dst, src []byte) error {
	if err := m.validate(dst, src); err != nil {
		return err
	}
	for off := 0; off < len(src); off += m.blockSize {
		m.key.EncryptBlock(dst[off:off+m.blockSize], src[off:off+m.blockSize])
	}
	return nil
}

func (m *ECB) Decrypt(dst, src []byte) error {
	if err := m.validate(dst, src); err != nil {
		return err
	}
	for off := 0; off < len(src); off += m.blockSize {
		m.key.DecryptBlock(dst[off:off+m.blockSize], src[off:off+m.blockSize])
	}
	return nil
}

// CBC is cipher-block-chaining mode (spec §4.2).
type CBC struct {
	key       registry.CipherKey
	blockSize int
	iv        []byte
}

// NewCBC builds a CBC mode state; iv must be blockSize bytes and is copied.
func NewCBC(key registry.CipherKey, blockSize int, iv []byte) (*CBC, error) {
	if len(iv) != blockSize {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "cbc iv must be %d bytes, got %d", blockSize, len(iv))
	}
	ivCopy := append([]byte(nil), iv...)
	return &CBC{key: key, blockSize: blockSize, iv: ivCopy}, nil
}

func (m *CBC) Encrypt(dst, src []byte) error {
	if len(src)%m.blockSize != 0 {
		return tcerr.New(tcerr.ErrInvalidArg, "cbc input length %d is not a multiple of the block size %d", len(src), m.blockSize)
	}
	if len(dst) < len(src) {
		return tcerr.New(tcerr.ErrBufferOverflow, "cbc output buffer too small")
	}
	prev := m.iv
	tmp := make([]byte, m.blockSize)
	for off := 0; off < len(src); off += m.blockSize {
		block := src[off : off+m.blockSize]
		xorInto(tmp, block, prev)
		m.key.EncryptBlock(dst[off:off+m.blockSize], tmp)
		prev = dst[off : off+m.blockSize]
	}
	copy(m.iv, prev)
	return nil
}

func (m *CBC) Decrypt(dst, src []byte) error {
	if len(src)%m.blockSize != 0 {
		return tcerr.New(tcerr.ErrInvalidArg, "cbc input length %d is not a multiple of the block size %d", len(src), m.blockSize)
	}
	if len(dst) < len(src) {
		return tcerr.New(tcerr.ErrBufferOverflow, "cbc output buffer too small")
	}
	prev := append([]byte(nil), m.iv...)
	tmp := make([]byte, m.blockSize)
	for off := 0; off < len(src); off += m.blockSize {
		block := src[off : off+m.blockSize]
		m.key.DecryptBlock(tmp, block)
		xorInto(dst[off:off+m.blockSize], tmp, prev)
		prev = append(prev[:0], block...)
	}
	copy(m.iv, prev)
	return nil
}

// CFB is cipher-feedback mode, full-block feedback variant (spec §4.2).
type CFB struct {
	key       registry.CipherKey
	blockSize int
	feedback  []byte
}

func NewCFB(key registry.CipherKey, blockSize int, iv []byte) (*CFB, error) {
	if len(iv) != blockSize {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "cfb iv must be %d bytes, got %d", blockSize, len(iv))
	}
	return &CFB{key: key, blockSize: blockSize, feedback: append([]byte(nil), iv...)}, nil
}

func (m *CFB) Encrypt(dst, src []byte) error {
	if len(dst) < len(src) {
		return tcerr.New(tcerr.ErrBufferOverflow, "cfb output buffer too small")
	}
	stream := make([]byte, m.blockSize)
	for off := 0; off < len(src); off += m.blockSize {
		n := m.blockSize
		if rem := len(src) - off; rem < n {
			n = rem
		}
		m.key.EncryptBlock(stream, m.feedback)
		xorInto(dst[off:off+n], src[off:off+n], stream[:n])
		copy(m.feedback, dst[off:off+n])
	}
	return nil
}

func (m *CFB) Decrypt(dst, src []byte) error {
	if len(dst) < len(src) {
		return tcerr.New(tcerr.ErrBufferOverflow, "cfb output buffer too small")
	}
	stream := make([]byte, m.blockSize)
	for off := 0; off < len(src); off += m.blockSize {
		n := m.blockSize
		if rem := len(src) - off; rem < n {
			n = rem
		}
		m.key.EncryptBlock(stream, m.feedback)
		next := append([]byte(nil), src[off:off+n]...)
		xorInto(dst[off:off+n], src[off:off+n], stream[:n])
		copy(m.feedback, next)
	}
	return nil
}

// OFB is output-feedback mode (spec §4.2).
type OFB struct {
	key       registry.CipherKey
	blockSize int
	state     []byte
}

func NewOFB(key registry.CipherKey, blockSize int, iv []byte) (*OFB, error) {
	if len(iv) != blockSize {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "ofb iv must be %d bytes, got %d", blockSize, len(iv))
	}
	return &OFB{key: key, blockSize: blockSize, state: append([]byte(nil), iv...)}, nil
}

func (m *OFB) apply(dst, src []byte) error {
	if len(dst) < len(src) {
		return tcerr.New(tcerr.ErrBufferOverflow, "ofb output buffer too small")
	}
	for off := 0; off < len(src); off += m.blockSize {
		n := m.blockSize
		if rem := len(src) - off; rem < n {
			n = rem
		}
		m.key.EncryptBlock(m.state, m.state)
		xorInto(dst[off:off+n], src[off:off+n], m.state[:n])
	}
	return nil
}

func (m *OFB) Encrypt(dst, src []byte) error { return m.apply(dst, src) }
func (m *OFB) Decrypt(dst, src []byte) error { return m.apply(dst, src) }

// CTR is big-endian counter mode (spec §4.2); the counter is the full block
// width and wraps on overflow, matching the source's documented behavior.
type CTR struct {
	key       registry.CipherKey
	blockSize int
	counter   []byte
}

func NewCTR(key registry.CipherKey, blockSize int, iv []byte) (*CTR, error) {
	if len(iv) != blockSize {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "ctr iv must be %d bytes, got %d", blockSize, len(iv))
	}
	return &CTR{key: key, blockSize: blockSize, counter: append([]byte(nil), iv...)}, nil
}

func (m *CTR) apply(dst, src []byte) error {
	if len(dst) < len(src) {
		return tcerr.New(tcerr.ErrBufferOverflow, "ctr output buffer too small")
	}
	stream := make([]byte, m.blockSize)
	for off := 0; off < len(src); off += m.blockSize {
		n := m.blockSize
		if rem := len(src) - off; rem < n {
			n = rem
		}
		m.key.EncryptBlock(stream, m.counter)
		xorInto(dst[off:off+n], src[off:off+n], stream[:n])
		incrementCounter(m.counter)
	}
	return nil
}

func (m *CTR) Encrypt(dst, src []byte) error { return m.apply(dst, src) }
func (m *CTR) Decrypt(dst, src []byte) error { return m.apply(dst, src) }
