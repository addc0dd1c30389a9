package prngs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libtom/tomcrypt/mpi"
)

func TestSystemPRNGProducesBytes(t *testing.T) {
	st, err := System.Start()
	require.NoError(t, err)
	buf := make([]byte, 32)
	n, err := st.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 32, n)
}

func TestDeterministicPRNGIsReproducible(t *testing.T) {
	seed := []byte("fixed test seed")

	draw := func() []byte {
		st, err := Deterministic.Start()
		require.NoError(t, err)
		require.NoError(t, st.AddEntropy(seed))
		buf := make([]byte, 48)
		_, err = st.Read(buf)
		require.NoError(t, err)
		return buf
	}

	require.Equal(t, draw(), draw())
}

func TestDeterministicPRNGRejectsLateEntropy(t *testing.T) {
	st, err := Deterministic.Start()
	require.NoError(t, err)
	require.NoError(t, st.AddEntropy([]byte("seed")))
	buf := make([]byte, 8)
	_, err = st.Read(buf)
	require.NoError(t, err)
	require.Error(t, st.AddEntropy([]byte("too late")))
}

// Deterministic's Start result satisfies mpi.RandSource structurally, so it
// can directly seed RandPrime.
func TestDeterministicPRNGFeedsRandPrime(t *testing.T) {
	st, err := Deterministic.Start()
	require.NoError(t, err)
	require.NoError(t, st.AddEntropy([]byte("prime seed")))

	var src mpi.RandSource = st
	p, err := mpi.RandPrime(8, mpi.PrimeFlagMSB, src)
	require.NoError(t, err)
	require.True(t, mpi.ProbablyPrime(p, 0))
}
