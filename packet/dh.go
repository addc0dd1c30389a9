package packet

import (
	"github.com/libtom/tomcrypt/dh"
	"github.com/libtom/tomcrypt/mpi"
	"github.com/libtom/tomcrypt/registry"
	"github.com/libtom/tomcrypt/tcerr"
)

// ExportDHPublicKey serializes pub as a standalone key packet (spec §6,
// grounded on original_source/dh.c's dh_export PK_PUBLIC path): header(4) ||
// type(1, 0=public) || size-in-bytes(1) || y-length(4LE) || y-bytes.
func ExportDHPublicKey(pub *dh.PublicKey) []byte {
	yBytes := pub.Y.Bytes()
	out := make([]byte, HeaderSize+1+1+4+len(yBytes))
	y := HeaderSize
	out[y] = typePublic
	y++
	out[y] = byte(pub.EntrySizeBytes())
	y++
	putUint32LE(out[y:], uint32(len(yBytes)))
	y += 4
	copy(out[y:], yBytes)
	storeHeader(out, SectionDH, SubKey)
	return out
}

// ImportDHPublicKey parses a packet built by ExportDHPublicKey.
func ImportDHPublicKey(buf []byte) (*dh.PublicKey, error) {
	if err := validHeader(buf, SectionDH, SubKey); err != nil {
		return nil, err
	}
	if len(buf) < HeaderSize+6 {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "dh key packet too short")
	}
	y := HeaderSize
	if buf[y] != typePublic {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "dh key packet: not a public-key export (type %d)", buf[y])
	}
	y++
	sizeBytes := int(buf[y])
	y++
	yLen := int(getUint32LE(buf[y:]))
	y += 4
	if y+yLen > len(buf) {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "dh key packet: y length overruns buffer")
	}
	yVal := mpi.New().SetBytes(buf[y : y+yLen])
	return dh.NewPublicKeyForSize(sizeBytes, yVal)
}

// EncryptDHKey wraps a symmetric key under an ephemeral DH shared secret
// (spec §6, grounded on original_source/dh_sys.c's dh_encrypt_key): generate
// an ephemeral key pair on pub's group, hash the shared secret with hashName
// to a keystream, XOR inkey with it. Packet layout: header(4) || hash id(1)
// || ephemeral-pubkey-blob-length(4LE) || ephemeral-pubkey-blob ||
// keylen(4LE) || xored-key.
func EncryptDHKey(inkey []byte, hashName string, pub *dh.PublicKey, src mpi.RandSource) ([]byte, error) {
	hd, err := registry.Hashes.FindByName(hashName)
	if err != nil {
		return nil, err
	}
	if len(inkey) > hd.DigestSize() {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "dh key wrap: key of %d bytes exceeds hash digest size %d", len(inkey), hd.DigestSize())
	}

	ephemeral, err := dh.MakeKey(pub.EntrySizeBytes(), src)
	if err != nil {
		return nil, err
	}
	shared, err := ephemeral.SharedSecret(pub)
	if err != nil {
		return nil, err
	}
	st := hd.New()
	st.Write(shared)
	skey := st.Sum(nil)

	pubBlob := ExportDHPublicKey(&ephemeral.PublicKey)

	out := make([]byte, HeaderSize+1+4+len(pubBlob)+4+len(inkey))
	y := HeaderSize
	out[y] = hd.ID()
	y++
	putUint32LE(out[y:], uint32(len(pubBlob)))
	y += 4
	copy(out[y:], pubBlob)
	y += len(pubBlob)
	putUint32LE(out[y:], uint32(len(inkey)))
	y += 4
	for i := range inkey {
		out[y+i] = skey[i] ^ inkey[i]
	}
	y += len(inkey)

	storeHeader(out, SectionDH, SubEncKey)
	return out[:y], nil
}

// DecryptDHKey reverses EncryptDHKey given the recipient's private key.
func DecryptDHKey(in []byte, priv *dh.PrivateKey) ([]byte, error) {
	if err := validHeader(in, SectionDH, SubEncKey); err != nil {
		return nil, err
	}
	y := HeaderSize
	if len(in) < y+1 {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "dh encrypted-key packet too short")
	}
	hd, err := registry.Hashes.FindByID(in[y])
	y++
	if err != nil {
		return nil, err
	}

	if len(in) < y+4 {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "dh encrypted-key packet too short")
	}
	pubLen := int(getUint32LE(in[y:]))
	y += 4
	if y+pubLen > len(in) {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "dh encrypted-key packet: ephemeral key length overruns buffer")
	}
	ephemeralPub, err := ImportDHPublicKey(in[y : y+pubLen])
	if err != nil {
		return nil, err
	}
	y += pubLen

	if y+4 > len(in) {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "dh encrypted-key packet too short")
	}
	keyLen := int(getUint32LE(in[y:]))
	y += 4
	if y+keyLen > len(in) {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "dh encrypted-key packet: key length overruns buffer")
	}

	shared, err := priv.SharedSecret(ephemeralPub)
	if err != nil {
		return nil, err
	}
	st := hd.New()
	st.Write(shared)
	skey := st.Sum(nil)

	out := make([]byte, keyLen)
	for i := 0; i < keyLen; i++ {
		out[i] = skey[i] ^ in[y+i]
	}
	return out, nil
}

// SignDH produces a detached signature packet (spec §6, grounded on
// original_source/dh_sys.c's dh_sign_hash): header(4) || a-length(4LE) ||
// a-bytes || b-length(4LE) || b-bytes.
func SignDH(digest []byte, priv *dh.PrivateKey, src mpi.RandSource) ([]byte, error) {
	a, b, err := priv.Sign(digest, src)
	if err != nil {
		return nil, err
	}
	aBytes, bBytes := a.Bytes(), b.Bytes()
	out := make([]byte, HeaderSize+4+len(aBytes)+4+len(bBytes))
	y := HeaderSize
	putUint32LE(out[y:], uint32(len(aBytes)))
	y += 4
	copy(out[y:], aBytes)
	y += len(aBytes)
	putUint32LE(out[y:], uint32(len(bBytes)))
	y += 4
	copy(out[y:], bBytes)
	storeHeader(out, SectionDH, SubSigned)
	return out, nil
}

// VerifyDH checks a signature packet built by SignDH against digest.
func VerifyDH(digest, sigPacket []byte, pub *dh.PublicKey) (bool, error) {
	if err := validHeader(sigPacket, SectionDH, SubSigned); err != nil {
		return false, err
	}
	y := HeaderSize
	if len(sigPacket) < y+4 {
		return false, tcerr.New(tcerr.ErrInvalidPacket, "dh signature packet too short")
	}
	aLen := int(getUint32LE(sigPacket[y:]))
	y += 4
	if y+aLen > len(sigPacket) {
		return false, tcerr.New(tcerr.ErrInvalidPacket, "dh signature packet: a length overruns buffer")
	}
	a := mpi.New().SetBytes(sigPacket[y : y+aLen])
	y += aLen

	if y+4 > len(sigPacket) {
		return false, tcerr.New(tcerr.ErrInvalidPacket, "dh signature packet too short")
	}
	bLen := int(getUint32LE(sigPacket[y:]))
	y += 4
	if y+bLen > len(sigPacket) {
		return false, tcerr.New(tcerr.ErrInvalidPacket, "dh signature packet: b length overruns buffer")
	}
	b := mpi.New().SetBytes(sigPacket[y : y+bLen])

	return pub.Verify(digest, a, b)
}
