// Package prngs provides the concrete registry.PRNGDescriptor
// implementations named in spec §4.2/§6: a system-entropy driver and a
// deterministic, seed-expanding driver for reproducible tests. OS entropy
// collection internals (Yarrow/Fortuna accumulator state) are out of scope
// per spec §1's Non-goals; System simply delegates to crypto/rand, and
// Deterministic expands a caller-supplied seed with HKDF+ChaCha20 the way the
// teacher's pack derives stream keys (golang.org/x/crypto/hkdf and
// .../chacha20, also used by ring/gen.go's sampler seeding).
package prngs

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"

	"github.com/libtom/tomcrypt/registry"
	"github.com/libtom/tomcrypt/tcerr"
)

type sysDescriptor struct{}

// System is the registry.PRNGDescriptor backed by the OS CSPRNG (spec §4.2
// "system" PRNG; AddEntropy is a no-op since crypto/rand already mixes
// kernel entropy).
var System registry.PRNGDescriptor = sysDescriptor{}

func (sysDescriptor) Name() string { return "system" }
func (sysDescriptor) ID() byte     { return 0x20 }

func (sysDescriptor) Start() (registry.PRNGState, error) {
	return &sysState{}, nil
}

type sysState struct{}

func (*sysState) AddEntropy([]byte) error { return nil }
func (*sysState) Ready() bool             { return true }
func (*sysState) Read(buf []byte) (int, error) {
	n, err := rand.Read(buf)
	if err != nil {
		return n, tcerr.New(tcerr.ErrReadPRNG, "system prng read: %w", err)
	}
	return n, nil
}

type detDescriptor struct{}

// Deterministic is the registry.PRNGDescriptor for tests that need
// reproducible output, such as this package's RandPrime test (spec §4.2's
// "deterministic PRNG" variant): entropy added via AddEntropy is folded into
// a running SHA-256 state whose digest seeds an HKDF-expanded ChaCha20
// keystream.
var Deterministic registry.PRNGDescriptor = detDescriptor{}

func (detDescriptor) Name() string { return "det" }
func (detDescriptor) ID() byte     { return 0x21 }

func (detDescriptor) Start() (registry.PRNGState, error) {
	return &detState{acc: sha256.New()}, nil
}

type detState struct {
	acc    interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
	}
	stream *chacha20.Cipher
	ready  bool
}

func (s *detState) AddEntropy(buf []byte) error {
	if s.ready {
		return tcerr.New(tcerr.ErrInvalidPRNG, "cannot add entropy after the deterministic prng has started producing output")
	}
	_, err := s.acc.Write(buf)
	return err
}

func (s *detState) Ready() bool { return s.ready }

func (s *detState) Read(buf []byte) (int, error) {
	if !s.ready {
		if err := s.materialize(); err != nil {
			return 0, err
		}
	}
	n, err := io.ReadFull(s.stream, buf)
	return n, err
}

func (s *detState) materialize() error {
	seed := s.acc.Sum(nil)
	var key [32]byte
	kdf := hkdf.New(sha256.New, seed, nil, []byte("tomcrypt-det-prng"))
	if _, err := io.ReadFull(kdf, key[:]); err != nil {
		return tcerr.New(tcerr.ErrReadPRNG, "deriving deterministic prng key: %w", err)
	}
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return tcerr.New(tcerr.ErrReadPRNG, "initializing deterministic prng stream: %w", err)
	}
	s.stream = c
	s.ready = true
	return nil
}

func init() {
	if err := registry.PRNGs.Register(System.Name(), System.ID(), System); err != nil {
		panic(err)
	}
	if err := registry.PRNGs.Register(Deterministic.Name(), Deterministic.ID(), Deterministic); err != nil {
		panic(err)
	}
}
