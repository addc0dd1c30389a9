// Package ciphers provides the concrete registry.CipherDescriptor
// implementations named in spec §4.2/§6: AES and DES/3DES, each backed by
// the standard library's constant-time block cipher implementations rather
// than a hand-rolled round function (spec's Non-goals explicitly exclude
// reimplementing cipher internals; only the descriptor/registration and
// self-test layer is this module's concern).
package ciphers

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/klauspost/cpuid/v2"

	"github.com/libtom/tomcrypt/registry"
	"github.com/libtom/tomcrypt/tcerr"
)

// HasAESNI reports whether the running CPU has hardware AES instructions,
// surfaced for diagnostics/self-test reporting (spec §9's "AES-NI
// detection" domain-stack item); crypto/aes already dispatches to it
// internally regardless of this value.
func HasAESNI() bool {
	return cpuid.CPU.Supports(cpuid.AESNI)
}

type aesDescriptor struct{}

// AES is the registry.CipherDescriptor for AES-128/192/256 (spec §4.2).
var AES registry.CipherDescriptor = aesDescriptor{}

func (aesDescriptor) Name() string   { return "aes" }
func (aesDescriptor) ID() byte       { return 0x01 }
func (aesDescriptor) BlockSize() int { return aes.BlockSize }

// KeySize clamps desired down to the nearest of {16,24,32} not exceeding it.
func (aesDescriptor) KeySize(desired int) (int, error) {
	switch {
	case desired >= 32:
		return 32, nil
	case desired >= 24:
		return 24, nil
	case desired >= 16:
		return 16, nil
	default:
		return 0, tcerr.New(tcerr.ErrInvalidKeySize, "aes key must be at least 16 bytes, got %d", desired)
	}
}

func (aesDescriptor) Setup(key []byte, rounds int) (registry.CipherKey, error) {
	if rounds != 0 {
		return nil, tcerr.New(tcerr.ErrInvalidRounds, "aes round count is fixed by key size, got explicit rounds=%d", rounds)
	}
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, tcerr.New(tcerr.ErrInvalidKeySize, "aes key must be 16, 24 or 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, tcerr.New(tcerr.ErrInvalidKeySize, "aes key schedule: %w", err)
	}
	return &aesKey{block: block}, nil
}

func (d aesDescriptor) Test() error {
	// FIPS-197 Appendix B known-answer vector.
	key := mustHex("000102030405060708090a0b0c0d0e0f")
	pt := mustHex("00112233445566778899aabbccddeeff")
	want := mustHex("69c4e0d86a7b0430d8cdb78070b4c55a")

	k, err := d.Setup(key, 0)
	if err != nil {
		return err
	}
	defer k.Destroy()
	got := make([]byte, len(pt))
	k.EncryptBlock(got, pt)
	if string(got) != string(want) {
		return tcerr.New(tcerr.ErrFailTestVector, "aes FIPS-197 vector mismatch")
	}
	return nil
}

type aesKey struct {
	block cipher.Block
}

func (k *aesKey) EncryptBlock(dst, src []byte) { k.block.Encrypt(dst, src) }
func (k *aesKey) DecryptBlock(dst, src []byte) { k.block.Decrypt(dst, src) }
func (k *aesKey) Destroy()                     { k.block = nil }

func mustHex(s string) []byte {
	b := make([]byte, len(s)/2)
	for i := range b {
		hi := hexNibble(s[2*i])
		lo := hexNibble(s[2*i+1])
		b[i] = hi<<4 | lo
	}
	return b
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

func init() {
	if err := registry.Ciphers.Register(AES.Name(), AES.ID(), AES); err != nil {
		panic(err)
	}
}
