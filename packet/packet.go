// Package packet implements the L6 wire-format layer named in spec §6: a
// small framed-blob convention that every public-key system (dh, ecc, rsa)
// uses to serialize encrypted-key, signed, and hybrid-encrypted payloads so
// they can be told apart and version-checked on import.
//
// Grounded on original_source/packet.c's packet_store_header/
// packet_valid_header: a 4-byte header of a little-endian 2-byte version,
// then a 1-byte section, then a 1-byte subsection. The numeric section and
// version values in the retrieved source tree are referenced throughout
// dh_sys.c/ecc_sys.c/rsa_sys.c/packet.c but never actually defined in the
// portion of mycrypt.h this pack carries — this module assigns its own
// internally-consistent byte constants below and documents that choice in
// DESIGN.md rather than guessing at upstream values that cannot be checked.
package packet

import "github.com/libtom/tomcrypt/tcerr"

// version is this library's wire-format version, stored little-endian in
// the first two header bytes (mirrors original_source/packet.c's CRYPT
// constant, which gates forward-compatibility: a packet claiming a newer
// version than the reader understands is rejected outright).
const version = 0x0001

// Section identifies which public-key system produced a packet.
type Section byte

const (
	SectionDH  Section = 1
	SectionECC Section = 2
	SectionRSA Section = 3
)

// Subsection identifies the packet's purpose within a section.
type Subsection byte

const (
	SubEncKey    Subsection = 1 // shared-secret-wrapped symmetric key (dh, ecc, rsa)
	SubSigned    Subsection = 2 // detached signature (dh, ecc, rsa)
	SubHybridEnc Subsection = 3 // rsa-only hybrid CTR encryption packet
	SubKey       Subsection = 4 // standalone exported public/private key blob
)

// HeaderSize is the fixed byte length of every packet's header.
const HeaderSize = 4

// Key-export type tags (spec §6's dh/ecc export layouts: "a byte indicating
// type"). Only public-key export is implemented (SubKey packets never carry
// a private scalar), so typePrivate exists to document the tag space, not
// because any exporter emits it.
const (
	typePublic  = 0
	typePrivate = 1
)

// storeHeader writes a HeaderSize-byte header to the front of dst (which
// must have length >= HeaderSize), mirroring packet_store_header's
// little-endian version followed by section and subsection bytes.
func storeHeader(dst []byte, sect Section, sub Subsection) {
	dst[0] = byte(version)
	dst[1] = byte(version >> 8)
	dst[2] = byte(sect)
	dst[3] = byte(sub)
}

// validHeader checks buf's leading HeaderSize bytes against the expected
// section and subsection, mirroring packet_valid_header: a packet whose
// claimed version is newer than this library's is rejected, and a mismatched
// section/subsection is rejected, since it signals the wrong packet kind was
// handed to the wrong importer.
func validHeader(buf []byte, wantSect Section, wantSub Subsection) error {
	if len(buf) < HeaderSize {
		return tcerr.New(tcerr.ErrInvalidPacket, "packet too short for a header: %d bytes", len(buf))
	}
	ver := uint16(buf[0]) | uint16(buf[1])<<8
	if ver > version {
		return tcerr.New(tcerr.ErrInvalidPacket, "packet claims version %#04x, newer than this library's %#04x", ver, version)
	}
	if Section(buf[2]) != wantSect {
		return tcerr.New(tcerr.ErrInvalidPacket, "packet section %d does not match expected section %d", buf[2], wantSect)
	}
	if Subsection(buf[3]) != wantSub {
		return tcerr.New(tcerr.ErrInvalidPacket, "packet subsection %d does not match expected subsection %d", buf[3], wantSub)
	}
	return nil
}

func putUint32LE(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

func getUint32LE(src []byte) uint32 {
	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
}
