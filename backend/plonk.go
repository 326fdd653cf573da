package backend

import (
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
	"github.com/rs/zerolog"

	"github.com/summa-dev/summa-bench/entry"
	"github.com/summa-dev/summa-bench/pcs"
)

// PlonkKeys holds the PLONK keys of the solvency circuit and the column
// commitment scheme sized to the 2^LEVELS domain.
type PlonkKeys struct {
	CCS    constraint.ConstraintSystem
	PK     plonk.ProvingKey
	VK     plonk.VerifyingKey
	Scheme *pcs.Scheme
}

// ColumnCommitment is the commitment-phase artifact of the polynomial variants.
type ColumnCommitment struct {
	Proof   plonk.Proof
	Polys   [][]fr.Element // username column first, then one per asset
	Digests []kzg.Digest
	Scheme  *pcs.Scheme
	// GrandSums opens the balance polynomials at zero; nil when the variant
	// exposes its totals as public inputs instead.
	GrandSums *kzg.BatchOpeningProof
}

// ColumnOpening opens every column of one row.
type ColumnOpening struct {
	Index   int
	Point   fr.Element
	Opening kzg.BatchOpeningProof
}

func setupPlonk(log zerolog.Logger, shape frontend.Circuit, levels int) (PlonkKeys, error) {
	compileStart := time.Now()
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, shape)
	if err != nil {
		return PlonkKeys{}, failure("compile plonk circuit", err)
	}
	log.Info().
		Dur("elapsed", time.Since(compileStart).Round(time.Millisecond)).
		Int("constraints", ccs.GetNbConstraints()).
		Msg("plonk constraint system compiled")

	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		return PlonkKeys{}, failure("plonk srs", err)
	}
	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return PlonkKeys{}, failure("plonk setup", err)
	}
	scheme, err := pcs.New(uint64(1) << levels)
	if err != nil {
		return PlonkKeys{}, failure("column commitment setup", err)
	}
	return PlonkKeys{CCS: ccs, PK: pk, VK: vk, Scheme: scheme}, nil
}

func provePlonk(keys PlonkKeys, assignment frontend.Circuit) (plonk.Proof, error) {
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, failure("build witness", err)
	}
	proof, err := plonk.Prove(keys.CCS, keys.PK, fullWitness)
	if err != nil {
		return nil, failure("plonk prove", err)
	}
	return proof, nil
}

func commitColumns(scheme *pcs.Scheme, entries []entry.Entry) ([][]fr.Element, []kzg.Digest, error) {
	cols := pcs.Columns(entries)
	polys := make([][]fr.Element, len(cols))
	for j, col := range cols {
		p, err := scheme.Interpolate(col)
		if err != nil {
			return nil, nil, failure("interpolate column", err)
		}
		polys[j] = p
	}
	digests, err := scheme.Commit(polys)
	if err != nil {
		return nil, nil, failure("commit columns", err)
	}
	return polys, digests, nil
}

func openRow(c ColumnCommitment, index int, point fr.Element) (ColumnOpening, error) {
	opening, err := c.Scheme.Open(c.Polys, c.Digests, point)
	if err != nil {
		return ColumnOpening{}, failure("open row", err)
	}
	return ColumnOpening{Index: index, Point: point, Opening: opening}, nil
}
