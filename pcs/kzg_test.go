package pcs

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/summa-dev/summa-bench/entry"
	"github.com/summa-dev/summa-bench/errs"
)

func evaluate(p []fr.Element, x fr.Element) fr.Element {
	var acc fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(&acc, &x)
		acc.Add(&acc, &p[i])
	}
	return acc
}

func TestInterpolateHitsEveryRow(t *testing.T) {
	s, err := New(8)
	require.NoError(t, err)

	values := make([]fr.Element, 5)
	for i := range values {
		values[i].SetUint64(uint64(100 + i))
	}
	p, err := s.Interpolate(values)
	require.NoError(t, err)
	require.Len(t, p, 8)

	for i := 0; i < 8; i++ {
		got := evaluate(p, s.Point(i))
		var want fr.Element
		if i < len(values) {
			want = values[i]
		}
		require.True(t, got.Equal(&want), "row %d", i)
	}

	_, err = s.Interpolate(make([]fr.Element, 9))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}

func TestConstantTermIsMeanOfDomain(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	values := make([]fr.Element, 4)
	var total fr.Element
	for i := range values {
		values[i].SetUint64(uint64(1000 * (i + 1)))
		total.Add(&total, &values[i])
	}
	p, err := s.Interpolate(values)
	require.NoError(t, err)

	var n, mean fr.Element
	n.SetUint64(4)
	mean.Div(&total, &n)
	require.True(t, p[0].Equal(&mean))
}

func TestHypercubePointMatchesRowPoint(t *testing.T) {
	s, err := New(16)
	require.NoError(t, err)
	for i := 0; i < 16; i++ {
		want := s.Point(i)
		got := s.HypercubePoint(i)
		require.True(t, got.Equal(&want), "index %d", i)
	}
}

func TestBatchOpenVerifies(t *testing.T) {
	entries, err := entry.Synthesize(entry.Options{Users: 6, Currencies: 2, MinBalance: 1000, MaxBalance: 90000, Seed: 5})
	require.NoError(t, err)

	s, err := New(8)
	require.NoError(t, err)

	cols := Columns(entries)
	require.Len(t, cols, 3)
	polys := make([][]fr.Element, len(cols))
	for j, col := range cols {
		polys[j], err = s.Interpolate(col)
		require.NoError(t, err)
	}
	digests, err := s.Commit(polys)
	require.NoError(t, err)

	for i := range entries {
		point := s.Point(i)
		proof, err := s.Open(polys, digests, point)
		require.NoError(t, err)
		require.NoError(t, s.Verify(digests, proof, point))

		want := new(big.Int)
		proof.ClaimedValues[0].BigInt(want)
		require.Zero(t, want.Cmp(entries[i].UsernameAsBigInt()), "row %d", i)
		proof.ClaimedValues[2].BigInt(want)
		require.Zero(t, want.Cmp(entries[i].Balance(1)), "row %d", i)
	}

	var zero fr.Element
	proof, err := s.Open(polys, digests, zero)
	require.NoError(t, err)
	proof.ClaimedValues[1].SetUint64(1)
	require.Error(t, s.Verify(digests, proof, zero))
}

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	for _, size := range []uint64{0, 1, 3, 12} {
		_, err := New(size)
		require.ErrorIs(t, err, errs.ErrInvalidConfiguration, "size %d", size)
	}
}
