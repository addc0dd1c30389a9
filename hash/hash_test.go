package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllDescriptorsSelfTest(t *testing.T) {
	for _, d := range []struct {
		name string
		desc interface{ Test() error }
	}{
		{"sha1", SHA1},
		{"sha256", SHA256},
		{"sha512", SHA512},
		{"sha3-256", SHA3_256},
		{"blake2b-256", BLAKE2b_256},
		{"blake3-256", BLAKE3_256},
	} {
		require.NoError(t, d.desc.Test(), d.name)
	}
}

func TestSHA256KAT(t *testing.T) {
	st := SHA256.New()
	_, _ = st.Write([]byte("abc"))
	got := st.Sum(nil)
	require.Len(t, got, 32)
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hexString(got))
}

func hexString(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[2*i] = hexDigits[v>>4]
		out[2*i+1] = hexDigits[v&0xf]
	}
	return string(out)
}
