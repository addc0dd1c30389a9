package ciphers

import (
	"crypto/cipher"
	"crypto/des"

	"github.com/libtom/tomcrypt/registry"
	"github.com/libtom/tomcrypt/tcerr"
)

type desDescriptor struct{}

// DES is the registry.CipherDescriptor for single DES (spec §4.2, retained
// for legacy packet interoperability; not recommended for new use).
var DES registry.CipherDescriptor = desDescriptor{}

func (desDescriptor) Name() string   { return "des" }
func (desDescriptor) ID() byte       { return 0x02 }
func (desDescriptor) BlockSize() int { return des.BlockSize }

func (desDescriptor) KeySize(desired int) (int, error) {
	if desired < des.BlockSize {
		return 0, tcerr.New(tcerr.ErrInvalidKeySize, "des key must be at least %d bytes, got %d", des.BlockSize, desired)
	}
	return des.BlockSize, nil
}

func (desDescriptor) Setup(key []byte, rounds int) (registry.CipherKey, error) {
	if rounds != 0 {
		return nil, tcerr.New(tcerr.ErrInvalidRounds, "des round count is fixed, got explicit rounds=%d", rounds)
	}
	if len(key) != des.BlockSize {
		return nil, tcerr.New(tcerr.ErrInvalidKeySize, "des key must be %d bytes, got %d", des.BlockSize, len(key))
	}
	block, err := des.NewCipher(key)
	if err != nil {
		return nil, tcerr.New(tcerr.ErrInvalidKeySize, "des key schedule: %w", err)
	}
	return &desKey{block: block}, nil
}

func (d desDescriptor) Test() error {
	key := mustHex("10316e028c8f3b4a")
	pt := mustHex("0000000000000000")
	want := mustHex("82dcbafbdeab6602")

	k, err := d.Setup(key, 0)
	if err != nil {
		return err
	}
	defer k.Destroy()
	got := make([]byte, len(pt))
	k.EncryptBlock(got, pt)
	if string(got) != string(want) {
		return tcerr.New(tcerr.ErrFailTestVector, "des vector mismatch")
	}
	return nil
}

type desKey struct {
	block cipher.Block
}

func (k *desKey) EncryptBlock(dst, src []byte) { k.block.Encrypt(dst, src) }
func (k *desKey) DecryptBlock(dst, src []byte) { k.block.Decrypt(dst, src) }
func (k *desKey) Destroy()                     { k.block = nil }

type tripleDESDescriptor struct{}

// TripleDES is the registry.CipherDescriptor for EDE 3DES with a 24-byte key
// (spec §4.2).
var TripleDES registry.CipherDescriptor = tripleDESDescriptor{}

func (tripleDESDescriptor) Name() string   { return "3des" }
func (tripleDESDescriptor) ID() byte       { return 0x03 }
func (tripleDESDescriptor) BlockSize() int { return des.BlockSize }

func (tripleDESDescriptor) KeySize(desired int) (int, error) {
	if desired < 24 {
		return 0, tcerr.New(tcerr.ErrInvalidKeySize, "3des key must be at least 24 bytes, got %d", desired)
	}
	return 24, nil
}

func (tripleDESDescriptor) Setup(key []byte, rounds int) (registry.CipherKey, error) {
	if rounds != 0 {
		return nil, tcerr.New(tcerr.ErrInvalidRounds, "3des round count is fixed, got explicit rounds=%d", rounds)
	}
	if len(key) != 24 {
		return nil, tcerr.New(tcerr.ErrInvalidKeySize, "3des key must be 24 bytes, got %d", len(key))
	}
	block, err := des.NewTripleDESCipher(key)
	if err != nil {
		return nil, tcerr.New(tcerr.ErrInvalidKeySize, "3des key schedule: %w", err)
	}
	return &desKey{block: block}, nil
}

func (d tripleDESDescriptor) Test() error {
	key := mustHex("0123456789abcdeffedcba9876543210" + "0123456789abcdef")
	pt := mustHex("0000000000000000")

	k, err := d.Setup(key, 0)
	if err != nil {
		return err
	}
	defer k.Destroy()
	ct := make([]byte, len(pt))
	k.EncryptBlock(ct, pt)
	back := make([]byte, len(pt))
	k.DecryptBlock(back, ct)
	if string(back) != string(pt) {
		return tcerr.New(tcerr.ErrFailTestVector, "3des round-trip mismatch")
	}
	return nil
}

func init() {
	if err := registry.Ciphers.Register(DES.Name(), DES.ID(), DES); err != nil {
		panic(err)
	}
	if err := registry.Ciphers.Register(TripleDES.Name(), TripleDES.ID(), TripleDES); err != nil {
		panic(err)
	}
}
