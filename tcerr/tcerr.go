// Package tcerr defines the closed status-code taxonomy shared by every layer
// of the library (spec §6/§7). Every fallible operation in this module returns
// an error that can be inspected with errors.As into *tcerr.Error to recover
// the originating Code, rather than relying on string matching.
package tcerr

import (
	"errors"
	"fmt"
)

// Code is a status code from the closed enum in spec §6.
type Code int

const (
	OK Code = iota
	ErrGeneric
	ErrInvalidKeySize
	ErrInvalidRounds
	ErrFailTestVector
	ErrBufferOverflow
	ErrInvalidPacket
	ErrInvalidPRNGSize
	ErrReadPRNG
	ErrInvalidCipher
	ErrInvalidHash
	ErrInvalidPRNG
	ErrOutOfMemory
	ErrPKTypeMismatch
	ErrPKNotPrivate
	ErrInvalidArg
	ErrPKInvalidType
	ErrPKInvalidSystem
	ErrPKDuplicate
	ErrPKNotFound
	ErrPKInvalidSize
	ErrInvalidPrimeSize
)

var names = map[Code]string{
	OK:                  "ok",
	ErrGeneric:          "error",
	ErrInvalidKeySize:   "invalid key size",
	ErrInvalidRounds:    "invalid rounds",
	ErrFailTestVector:   "self-test failed",
	ErrBufferOverflow:   "buffer overflow",
	ErrInvalidPacket:    "invalid packet",
	ErrInvalidPRNGSize:  "invalid prng size",
	ErrReadPRNG:         "error reading prng",
	ErrInvalidCipher:    "invalid cipher",
	ErrInvalidHash:      "invalid hash",
	ErrInvalidPRNG:      "invalid prng",
	ErrOutOfMemory:      "out of memory",
	ErrPKTypeMismatch:   "public key type mismatch",
	ErrPKNotPrivate:     "not a private key",
	ErrInvalidArg:       "invalid argument",
	ErrPKInvalidType:    "invalid pk type",
	ErrPKInvalidSystem:  "invalid pk system",
	ErrPKDuplicate:      "pk duplicate",
	ErrPKNotFound:       "pk not found",
	ErrPKInvalidSize:    "invalid pk size",
	ErrInvalidPrimeSize: "invalid prime size",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "unknown error"
}

// Error carries a Code plus optional wrapped context, following the teacher's
// fmt.Errorf("...: %w", err) wrapping idiom but keeping the Code machine
// checkable via errors.As.
type Error struct {
	Code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a *Error with the same Code, so callers can
// write errors.Is(err, tcerr.New(tcerr.ErrInvalidPacket, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New builds an *Error for the given code, optionally formatting a message
// with fmt.Errorf semantics (an error arg formatted with %w is wrapped and
// returned by Unwrap; its text is part of the message).
func New(code Code, format string, args ...any) *Error {
	e := &Error{Code: code}
	if format == "" {
		return e
	}
	wrapped := fmt.Errorf(format, args...)
	e.msg = wrapped.Error()
	e.err = errors.Unwrap(wrapped)
	return e
}

// Of reports the Code carried by err, or ErrGeneric if err does not wrap a
// *Error.
func Of(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrGeneric
}

// Is reports whether err carries the given Code, via errors.Is against a
// bare sentinel built from the code.
func Is(err error, code Code) bool {
	return errors.Is(err, New(code, ""))
}
