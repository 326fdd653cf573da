package mst

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/summa-dev/summa-bench/entry"
	"github.com/summa-dev/summa-bench/errs"
)

func sampleEntries(t *testing.T, users, currencies int) []entry.Entry {
	t.Helper()
	entries, err := entry.Synthesize(entry.Options{
		Users:      users,
		Currencies: currencies,
		MinBalance: 1000,
		MaxBalance: 90000,
		Seed:       7,
	})
	require.NoError(t, err)
	return entries
}

func TestTreeRootSumsMatchGrandSums(t *testing.T) {
	entries := sampleEntries(t, 16, 2)
	tree, err := New(entries, entry.DefaultAssets(2), 4, 8)
	require.NoError(t, err)

	root := tree.Root()
	for j, want := range entry.GrandSums(entries) {
		var got big.Int
		root.Sums[j].BigInt(&got)
		require.Zero(t, want.Cmp(&got), "asset %d", j)
	}
}

func TestProofVerifiesForEveryLeaf(t *testing.T) {
	entries := sampleEntries(t, 8, 1)
	tree, err := New(entries, entry.DefaultAssets(1), 3, 8)
	require.NoError(t, err)

	for i := range entries {
		p, err := tree.Proof(i)
		require.NoError(t, err)
		require.True(t, p.Verify(), "leaf %d", i)
		want := LeafHash(entries[i])
		require.True(t, want.Equal(&p.LeafHash))
	}
}

func TestProofRejectsTampering(t *testing.T) {
	entries := sampleEntries(t, 4, 1)
	tree, err := New(entries, entry.DefaultAssets(1), 2, 8)
	require.NoError(t, err)

	p, err := tree.Proof(2)
	require.NoError(t, err)
	p.SiblingSums[0][0].Add(&p.SiblingSums[0][0], new(fr.Element).SetOne())
	require.False(t, p.Verify())
}

func TestProofRejectsOutOfRange(t *testing.T) {
	entries := sampleEntries(t, 4, 1)
	tree, err := New(entries, entry.DefaultAssets(1), 2, 8)
	require.NoError(t, err)

	for _, idx := range []int{-1, 4, 100} {
		_, err := tree.Proof(idx)
		require.ErrorIs(t, err, errs.ErrInvalidSubject)
	}
}

func TestNewRejectsBadShapes(t *testing.T) {
	entries := sampleEntries(t, 4, 1)

	_, err := New(entries[:3], entry.DefaultAssets(1), 2, 8)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, err = New(entries, entry.DefaultAssets(2), 2, 8)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	// balances of at least 1000 do not fit in one byte
	_, err = New(entries, entry.DefaultAssets(1), 2, 1)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}
