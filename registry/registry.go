// Package registry implements the L0 descriptor tables from spec §3/§6: a
// fixed-capacity, by-name/by-ID lookup table for cipher, hash, and PRNG
// capabilities. The teacher has no literal analogue (lattigo selects
// algorithms via a compile-time Type enum, not a runtime-registered table),
// so this package is grounded on the general "registered capability table"
// idiom shown in the pack (parsdao-pars/registry and modules/registerer.go
// register typed capabilities into an ordered slice under a package-level
// var), combined with the function-pointer-struct -> interface-value
// re-architecture spec §9 prescribes ("every cipher is a value implementing
// the cipher capability").
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/libtom/tomcrypt/tcerr"
)

// maxSlots is the fixed capacity of each table (spec §3: "fixed-size slot
// arrays").
const maxSlots = 32

// CipherDescriptor is the capability interface every block cipher
// implements, replacing the C API's setup/ecb_encrypt/ecb_decrypt/test/
// keysize function pointers (spec §6).
type CipherDescriptor interface {
	Name() string
	ID() byte
	BlockSize() int
	// KeySize clamps desired down to the largest supported key size <= desired,
	// or returns ErrInvalidKeySize if none qualifies.
	KeySize(desired int) (int, error)
	// Setup builds a key schedule (opaque CipherKey, spec §3) from key material.
	Setup(key []byte, rounds int) (CipherKey, error)
	// Test runs the cipher's built-in self-test (KATs), returning
	// ErrFailTestVector on mismatch.
	Test() error
}

// CipherKey is an opaque, cipher-specific key schedule (spec §3); it knows
// how to encrypt/decrypt one block under whatever schedule Setup produced,
// and to zeroize itself on Destroy.
type CipherKey interface {
	EncryptBlock(dst, src []byte)
	DecryptBlock(dst, src []byte)
	Destroy()
}

// HashDescriptor is the capability interface every hash function implements
// (spec §6).
type HashDescriptor interface {
	Name() string
	ID() byte
	DigestSize() int
	BlockSize() int
	New() HashState
	Test() error
}

// HashState is a single hash computation in progress.
type HashState interface {
	Write(p []byte) (int, error)
	Sum(dst []byte) []byte
}

// PRNGDescriptor is the capability interface every PRNG driver implements
// (spec §6). Entropy collection itself is out of scope (spec §1); this
// interface only specifies the contract a concrete driver must satisfy.
type PRNGDescriptor interface {
	Name() string
	ID() byte
	Start() (PRNGState, error)
}

// PRNGState is a running PRNG instance.
type PRNGState interface {
	AddEntropy(buf []byte) error
	Ready() bool
	// Read fills buf with random bytes, returning the number actually
	// written (spec: "PRNG read returned fewer bytes than requested" is a
	// propagated error condition, not silently padded).
	Read(buf []byte) (int, error)
}

type slot[T any] struct {
	used bool
	name string
	id   byte
	desc T
}

// Table is a fixed-capacity, by-name/by-ID registry of descriptors of type T
// (spec §3 "Descriptor tables"). The zero value is an empty, unfrozen table.
type Table[T any] struct {
	mu     sync.RWMutex
	slots  [maxSlots]slot[T]
	frozen atomic.Bool
}

// NewTable returns an empty Table.
func NewTable[T any]() *Table[T] { return &Table[T]{} }

// Freeze marks the table read-only (spec §5: "register all primitives before
// any crypto operation begins... refrain from registering after that
// point"). After Freeze, Register/Unregister return ErrInvalidArg; Find
// remains safe from any number of goroutines, taking only the read lock.
func (t *Table[T]) Freeze() { t.frozen.Store(true) }

// Register copies desc into an empty slot under the given name/id. Returns
// ErrPKDuplicate if name or id is already registered, ErrOutOfMemory if the
// table is full, ErrInvalidArg if the table is frozen.
func (t *Table[T]) Register(name string, id byte, desc T) error {
	if t.frozen.Load() {
		return tcerr.New(tcerr.ErrInvalidArg, "registry is frozen")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	free := -1
	for i := range t.slots {
		s := &t.slots[i]
		if !s.used {
			if free < 0 {
				free = i
			}
			continue
		}
		if s.name == name || s.id == id {
			return tcerr.New(tcerr.ErrPKDuplicate, "descriptor %q/%d already registered", name, id)
		}
	}
	if free < 0 {
		return tcerr.New(tcerr.ErrOutOfMemory, "registry table full (capacity %d)", maxSlots)
	}
	t.slots[free] = slot[T]{used: true, name: name, id: id, desc: desc}
	return nil
}

// Unregister clears the slot holding name, iff a slot with that name exists.
// The original C `unregister_prng` compared state backwards (`!= 0` where
// `== 0` was intended, spec §9 open question); this implementation clears a
// slot if and only if its name matches, which is the documented intended
// semantics, not the buggy C behavior.
func (t *Table[T]) Unregister(name string) error {
	if t.frozen.Load() {
		return tcerr.New(tcerr.ErrInvalidArg, "registry is frozen")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		s := &t.slots[i]
		if s.used && s.name == name {
			*s = slot[T]{}
			return nil
		}
	}
	return tcerr.New(tcerr.ErrPKNotFound, "no descriptor named %q", name)
}

// FindByName looks up a descriptor by name (linear scan, per spec "Lookup is
// linear by name or ID").
func (t *Table[T]) FindByName(name string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.slots {
		s := &t.slots[i]
		if s.used && s.name == name {
			return s.desc, nil
		}
	}
	var zero T
	return zero, tcerr.New(tcerr.ErrPKNotFound, "no descriptor named %q", name)
}

// FindByID looks up a descriptor by its one-byte numeric ID.
func (t *Table[T]) FindByID(id byte) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.slots {
		s := &t.slots[i]
		if s.used && s.id == id {
			return s.desc, nil
		}
	}
	var zero T
	return zero, tcerr.New(tcerr.ErrPKNotFound, "no descriptor with id %d", id)
}

// Names returns the registered descriptor names, in slot order (stable only
// within a process run, mirroring the C table's iteration order).
func (t *Table[T]) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for i := range t.slots {
		if t.slots[i].used {
			out = append(out, t.slots[i].name)
		}
	}
	return out
}

// Global process-wide tables (spec §3: "Slots are process-wide state
// initialized at startup"). Concrete descriptors (package ciphers/hash/prngs)
// register themselves here from an init() func, and applications are
// expected to call Ciphers.Freeze()/Hashes.Freeze()/PRNGs.Freeze() once
// registration is complete (spec §5).
var (
	Ciphers = NewTable[CipherDescriptor]()
	Hashes  = NewTable[HashDescriptor]()
	PRNGs   = NewTable[PRNGDescriptor]()
)
