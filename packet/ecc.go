package packet

import (
	"github.com/libtom/tomcrypt/ecc"
	"github.com/libtom/tomcrypt/mpi"
	"github.com/libtom/tomcrypt/registry"
	"github.com/libtom/tomcrypt/tcerr"
)

// ExportECCPublicKey serializes pub as a standalone key packet (spec §6's
// ECC export layout): header(4) || type(1, 0=public) || size-in-bytes(1) ||
// x-length(4LE) || x-bytes || y-parity(1, 0 or 1). Y is not carried in full;
// ImportECCPublicKey recovers it via ecc.Decompress, the same (p+1)/4
// square-root shortcut spec §4.9.1 names.
func ExportECCPublicKey(pub *ecc.PublicKey) []byte {
	curve := pub.Curve()
	compressed := ecc.Compress(&pub.Pub, curve)
	parity := compressed[0] - 0x02
	xBytes := pub.Pub.X.Bytes()

	out := make([]byte, HeaderSize+1+1+4+len(xBytes)+1)
	y := HeaderSize
	out[y] = typePublic
	y++
	out[y] = byte(curve.SizeBytes)
	y++
	putUint32LE(out[y:], uint32(len(xBytes)))
	y += 4
	copy(out[y:], xBytes)
	y += len(xBytes)
	out[y] = parity
	storeHeader(out, SectionECC, SubKey)
	return out
}

// ImportECCPublicKey parses a packet built by ExportECCPublicKey.
func ImportECCPublicKey(buf []byte) (*ecc.PublicKey, error) {
	if err := validHeader(buf, SectionECC, SubKey); err != nil {
		return nil, err
	}
	y := HeaderSize
	if len(buf) < y+2 {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc key packet too short")
	}
	if buf[y] != typePublic {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc key packet: not a public-key export (type %d)", buf[y])
	}
	y++
	sizeBytes := int(buf[y])
	y++
	curve, err := ecc.CurveBySize(sizeBytes)
	if err != nil {
		return nil, err
	}

	if len(buf) < y+4 {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc key packet too short")
	}
	xLen := int(getUint32LE(buf[y:]))
	y += 4
	if y+xLen > len(buf) {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc key packet: x length overruns buffer")
	}
	xBytes := buf[y : y+xLen]
	y += xLen

	if len(buf) < y+1 {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc key packet too short")
	}
	parity := buf[y]
	if parity != 0 && parity != 1 {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc key packet: parity byte must be 0 or 1, got %d", parity)
	}

	compressed := make([]byte, curve.SizeBytes+1)
	compressed[0] = 0x02 + parity
	if xLen > curve.SizeBytes {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc key packet: x coordinate wider than the curve's field size")
	}
	copy(compressed[1+(curve.SizeBytes-xLen):], xBytes)

	pt, err := ecc.Decompress(compressed, curve)
	if err != nil {
		return nil, err
	}
	return ecc.NewPublicKey(curve, *pt), nil
}

// EncryptECCKey wraps a symmetric key under an ephemeral ECDH shared secret
// (spec §6, grounded on original_source/ecc_sys.c's ecc_encrypt_key, reusing
// the dh packet's hash-then-xor convention since both systems share the
// shared-secret-wrap idiom). Layout identical in shape to EncryptDHKey's.
func EncryptECCKey(inkey []byte, hashName string, pub *ecc.PublicKey, src mpi.RandSource) ([]byte, error) {
	hd, err := registry.Hashes.FindByName(hashName)
	if err != nil {
		return nil, err
	}
	if len(inkey) > hd.DigestSize() {
		return nil, tcerr.New(tcerr.ErrInvalidArg, "ecc key wrap: key of %d bytes exceeds hash digest size %d", len(inkey), hd.DigestSize())
	}

	ephemeral, err := ecc.MakeKey(pub.Curve().SizeBytes, src)
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

	pubBlob := ExportECCPublicKey(&ephemeral.PublicKey)

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

	storeHeader(out, SectionECC, SubEncKey)
	return out[:y], nil
}

// DecryptECCKey reverses EncryptECCKey given the recipient's private key.
func DecryptECCKey(in []byte, priv *ecc.PrivateKey) ([]byte, error) {
	if err := validHeader(in, SectionECC, SubEncKey); err != nil {
		return nil, err
	}
	y := HeaderSize
	if len(in) < y+1 {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc encrypted-key packet too short")
	}
	hd, err := registry.Hashes.FindByID(in[y])
	y++
	if err != nil {
		return nil, err
	}

	if len(in) < y+4 {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc encrypted-key packet too short")
	}
	pubLen := int(getUint32LE(in[y:]))
	y += 4
	if y+pubLen > len(in) {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc encrypted-key packet: ephemeral key length overruns buffer")
	}
	ephemeralPub, err := ImportECCPublicKey(in[y : y+pubLen])
	if err != nil {
		return nil, err
	}
	y += pubLen

	if y+4 > len(in) {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc encrypted-key packet too short")
	}
	keyLen := int(getUint32LE(in[y:]))
	y += 4
	if y+keyLen > len(in) {
		return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc encrypted-key packet: key length overruns buffer")
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

// SignECC produces a detached signature packet (spec §6, grounded on
// original_source/ecc_sys.c's ecc_sign_hash): header(4) || R.X-length(4LE)
// || R.X-bytes || R.Y-length(4LE) || R.Y-bytes || b-length(4LE) || b-bytes.
func SignECC(digest []byte, priv *ecc.PrivateKey, src mpi.RandSource) ([]byte, error) {
	sig, err := priv.Sign(digest, src)
	if err != nil {
		return nil, err
	}
	rx, ry, b := sig.R.X.Bytes(), sig.R.Y.Bytes(), sig.B.Bytes()
	out := make([]byte, HeaderSize+4+len(rx)+4+len(ry)+4+len(b))
	y := HeaderSize
	putUint32LE(out[y:], uint32(len(rx)))
	y += 4
	copy(out[y:], rx)
	y += len(rx)
	putUint32LE(out[y:], uint32(len(ry)))
	y += 4
	copy(out[y:], ry)
	y += len(ry)
	putUint32LE(out[y:], uint32(len(b)))
	y += 4
	copy(out[y:], b)
	storeHeader(out, SectionECC, SubSigned)
	return out, nil
}

// VerifyECC checks a signature packet built by SignECC against digest.
func VerifyECC(digest, sigPacket []byte, pub *ecc.PublicKey) (bool, error) {
	if err := validHeader(sigPacket, SectionECC, SubSigned); err != nil {
		return false, err
	}
	y := HeaderSize
	readField := func() ([]byte, error) {
		if len(sigPacket) < y+4 {
			return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc signature packet too short")
		}
		n := int(getUint32LE(sigPacket[y:]))
		y += 4
		if y+n > len(sigPacket) {
			return nil, tcerr.New(tcerr.ErrInvalidPacket, "ecc signature packet: field length overruns buffer")
		}
		field := sigPacket[y : y+n]
		y += n
		return field, nil
	}

	rxBytes, err := readField()
	if err != nil {
		return false, err
	}
	ryBytes, err := readField()
	if err != nil {
		return false, err
	}
	bBytes, err := readField()
	if err != nil {
		return false, err
	}

	sig := &ecc.Signature{
		R: ecc.Point{X: mpi.New().SetBytes(rxBytes), Y: mpi.New().SetBytes(ryBytes)},
		B: mpi.New().SetBytes(bBytes),
	}
	return pub.Verify(digest, sig)
}
