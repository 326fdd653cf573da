package backend

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/summa-dev/summa-bench/config"
	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/entry"
	"github.com/summa-dev/summa-bench/errs"
	"github.com/summa-dev/summa-bench/zk"
)

func smallConfig(levels uint32, currencies int, v consts.Variant) config.Config {
	cfg := config.Default()
	cfg.Levels = levels
	cfg.K = 4
	cfg.Currencies = currencies
	cfg.Variants = []consts.Variant{v}
	return cfg
}

func population(t *testing.T, cfg config.Config, v consts.Variant) []entry.Entry {
	t.Helper()
	entries, err := entry.Synthesize(entry.Options{
		Users:      cfg.Users(v),
		Currencies: cfg.Currencies,
		MinBalance: cfg.MinBalance,
		MaxBalance: cfg.MaxBalance,
		Seed:       21,
	})
	require.NoError(t, err)
	return entries
}

func requireRowOpened(t *testing.T, e entry.Entry, opening ColumnOpening) {
	t.Helper()
	values := opening.Opening.ClaimedValues
	require.Len(t, values, e.Currencies()+1)
	require.Zero(t, values[0].BigInt(new(big.Int)).Cmp(e.UsernameAsBigInt()))
	for j := 0; j < e.Currencies(); j++ {
		require.Zero(t, values[j+1].BigInt(new(big.Int)).Cmp(e.Balance(j)), "asset %d", j)
	}
}

func TestMerkleSumTreeEveryIndex(t *testing.T) {
	cfg := smallConfig(2, 2, consts.VariantMerkleSumTree)
	b := NewMerkleSumTree(cfg, zerolog.Nop())
	entries := population(t, cfg, consts.VariantMerkleSumTree)

	_, err := b.Init(entries[:3])
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	circuit, err := b.Init(entries)
	require.NoError(t, err)
	keys, err := b.Setup(circuit, cfg.K)
	require.NoError(t, err)
	commitment, err := b.ProveCommitment(keys, circuit)
	require.NoError(t, err)

	verifier, err := zk.NewVerifier(zk.VerifierConfig{Groth16: keys.VK})
	require.NoError(t, err)
	root := commitment.Tree.Root()
	for i := range entries {
		inclusion, err := b.ProveInclusion(commitment, i)
		require.NoError(t, err, "index %d", i)
		require.True(t, inclusion.Path.Verify())
		require.NoError(t, verifier.VerifyMstInclusion(inclusion.Proof, inclusion.Path.LeafHash, root.Hash))
	}

	for _, idx := range []int{-1, len(entries)} {
		_, err := b.ProveInclusion(commitment, idx)
		require.ErrorIs(t, err, errs.ErrInvalidSubject)
	}
}

func TestMerkleSumTreeConstraintSystemCache(t *testing.T) {
	cfg := smallConfig(2, 1, consts.VariantMerkleSumTree)
	cfg.CCSCache = t.TempDir()
	b := NewMerkleSumTree(cfg, zerolog.Nop())
	circuit, err := b.Init(population(t, cfg, consts.VariantMerkleSumTree))
	require.NoError(t, err)

	first, err := b.Setup(circuit, cfg.K)
	require.NoError(t, err)
	path := ccsCachePath(cfg.CCSCache, consts.VariantMerkleSumTree, 2, 1, cfg.Bytes)
	_, err = os.Stat(path)
	require.NoError(t, err)

	cached, err := loadGroth16ConstraintSystem(path)
	require.NoError(t, err)
	require.Equal(t, first.CCS.GetNbConstraints(), cached.GetNbConstraints())

	second, err := b.Setup(circuit, cfg.K)
	require.NoError(t, err)
	require.Equal(t, first.CCS.GetNbConstraints(), second.CCS.GetNbConstraints())
}

func TestMerkleSumTreeRecompilesCorruptCache(t *testing.T) {
	cfg := smallConfig(2, 1, consts.VariantMerkleSumTree)
	cfg.CCSCache = t.TempDir()
	path := ccsCachePath(cfg.CCSCache, consts.VariantMerkleSumTree, 2, 1, cfg.Bytes)
	require.NoError(t, os.WriteFile(path, []byte("not a constraint system"), 0o644))
	_, err := loadGroth16ConstraintSystem(path)
	require.Error(t, err)

	b := NewMerkleSumTree(cfg, zerolog.Nop())
	circuit, err := b.Init(population(t, cfg, consts.VariantMerkleSumTree))
	require.NoError(t, err)
	keys, err := b.Setup(circuit, cfg.K)
	require.NoError(t, err)

	cached, err := loadGroth16ConstraintSystem(path)
	require.NoError(t, err)
	require.Equal(t, keys.CCS.GetNbConstraints(), cached.GetNbConstraints())

	leftovers, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestCCSCachePath(t *testing.T) {
	require.Empty(t, ccsCachePath("", consts.VariantMerkleSumTree, 1))
	a := ccsCachePath("/tmp/x", consts.VariantMerkleSumTree, 2, 1, 8)
	b := ccsCachePath("/tmp/x", consts.VariantMerkleSumTree, 3, 1, 8)
	require.NotEqual(t, a, b)
	require.Equal(t, "/tmp/x", filepath.Dir(a))
	require.True(t, strings.HasPrefix(filepath.Base(a), "v1_groth16_"), a)
	require.True(t, strings.HasSuffix(a, ".ccs.bin"), a)
}

func TestUnivariateSumEveryIndex(t *testing.T) {
	cfg := smallConfig(3, 2, consts.VariantUnivariateSum)
	b := NewUnivariateSum(cfg, zerolog.Nop())
	entries := population(t, cfg, consts.VariantUnivariateSum)
	require.Len(t, entries, 2)

	_, err := b.Init(append(entries, entries[0]))
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	circuit, err := b.Init(entries)
	require.NoError(t, err)
	keys, err := b.Setup(circuit, cfg.SecurityParameter(b.Variant()))
	require.NoError(t, err)
	commitment, err := b.ProveCommitment(keys, circuit)
	require.NoError(t, err)

	verifier, err := zk.NewVerifier(zk.VerifierConfig{Plonk: keys.VK})
	require.NoError(t, err)
	require.NoError(t, verifier.VerifyRangeCheck(commitment.Proof))

	// balance polynomials evaluate at zero to total / |domain|
	require.NotNil(t, commitment.GrandSums)
	var zero, size fr.Element
	size.SetUint64(keys.Scheme.Size())
	for j, total := range entry.GrandSums(entries) {
		var got fr.Element
		got.Mul(&commitment.GrandSums.ClaimedValues[j], &size)
		require.Zero(t, got.BigInt(new(big.Int)).Cmp(total), "asset %d", j)
	}
	require.NoError(t, keys.Scheme.Verify(commitment.Digests[1:], *commitment.GrandSums, zero))

	for i := range entries {
		opening, err := b.ProveInclusion(commitment, i)
		require.NoError(t, err)
		requireRowOpened(t, entries[i], opening)
		require.NoError(t, keys.Scheme.Verify(commitment.Digests, opening.Opening, opening.Point))
	}
	_, err = b.ProveInclusion(commitment, len(entries))
	require.ErrorIs(t, err, errs.ErrInvalidSubject)
}

func TestHyperplonkVariantsEveryIndex(t *testing.T) {
	for _, v := range []consts.Variant{consts.VariantHyperplonk, consts.VariantHyperplonkRange} {
		t.Run(string(v), func(t *testing.T) {
			cfg := smallConfig(2, 1, v)
			b := NewHyperplonk(cfg, zerolog.Nop())
			if v == consts.VariantHyperplonkRange {
				b = NewHyperplonkRange(cfg, zerolog.Nop())
			}
			require.Equal(t, v, b.Variant())
			entries := population(t, cfg, v)
			require.Len(t, entries, b.Capacity())

			_, err := b.Init(entries[:len(entries)-1])
			require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

			circuit, err := b.Init(entries)
			require.NoError(t, err)
			keys, err := b.Setup(circuit, cfg.SecurityParameter(v))
			require.NoError(t, err)
			commitment, err := b.ProveCommitment(keys, circuit)
			require.NoError(t, err)
			require.Nil(t, commitment.GrandSums)

			verifier, err := zk.NewVerifier(zk.VerifierConfig{Plonk: keys.VK})
			require.NoError(t, err)
			require.NoError(t, verifier.VerifySumma(commitment.Proof, entry.GrandSums(entries)))

			for i := range entries {
				opening, err := b.ProveInclusion(commitment, i)
				require.NoError(t, err)
				requireRowOpened(t, entries[i], opening)
				require.NoError(t, keys.Scheme.Verify(commitment.Digests, opening.Opening, opening.Point))
			}
			_, err = b.ProveInclusion(commitment, -1)
			require.ErrorIs(t, err, errs.ErrInvalidSubject)
			_, err = b.ProveInclusion(commitment, b.Capacity())
			require.ErrorIs(t, err, errs.ErrInvalidSubject)
		})
	}
}

func TestHyperplonkRangeRequiresSingleCurrency(t *testing.T) {
	cfg := smallConfig(2, 2, consts.VariantHyperplonk)
	b := NewHyperplonkRange(cfg, zerolog.Nop())
	entries := population(t, cfg, consts.VariantHyperplonkRange)
	_, err := b.Init(entries)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}
