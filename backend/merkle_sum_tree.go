package backend

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog"

	"github.com/summa-dev/summa-bench/config"
	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/entry"
	"github.com/summa-dev/summa-bench/errs"
	"github.com/summa-dev/summa-bench/mst"
	"github.com/summa-dev/summa-bench/zk"
)

// MerkleSumTree commits to entries with a MiMC merkle-sum-tree and proves
// inclusion with a Groth16 proof of the authentication path.
type MerkleSumTree struct {
	levels     int
	currencies int
	bytes      int
	ccsCache   string
	log        zerolog.Logger
}

func NewMerkleSumTree(cfg config.Config, log zerolog.Logger) *MerkleSumTree {
	return &MerkleSumTree{
		levels:     int(cfg.Levels),
		currencies: cfg.Currencies,
		bytes:      cfg.Bytes,
		ccsCache:   cfg.CCSCache,
		log:        log.With().Str("backend", string(consts.VariantMerkleSumTree)).Logger(),
	}
}

type MstCircuit struct {
	Entries []entry.Entry
	Assets  []entry.Asset
	Shape   *zk.MstInclusionCircuit
}

type MstKeys struct {
	CCS constraint.ConstraintSystem
	PK  groth16.ProvingKey
	VK  groth16.VerifyingKey
}

type MstCommitment struct {
	Tree *mst.Tree
	Keys MstKeys
}

type MstInclusion struct {
	Path  mst.Proof
	Proof groth16.Proof
}

func (b *MerkleSumTree) Variant() consts.Variant { return consts.VariantMerkleSumTree }

func (b *MerkleSumTree) Capacity() int { return 1 << b.levels }

func (b *MerkleSumTree) Init(entries []entry.Entry) (MstCircuit, error) {
	if err := checkPopulation("merkle-sum-tree", len(entries), b.Capacity()); err != nil {
		return MstCircuit{}, err
	}
	for i, e := range entries {
		if e.Currencies() != b.currencies {
			return MstCircuit{}, fmt.Errorf("%w: entry %d has %d balances, want %d",
				errs.ErrInvalidConfiguration, i, e.Currencies(), b.currencies)
		}
	}
	return MstCircuit{
		Entries: entries,
		Assets:  entry.DefaultAssets(b.currencies),
		Shape:   zk.NewMstInclusionCircuit(b.levels, b.currencies, b.bytes),
	}, nil
}

// Setup compiles the inclusion circuit and runs the Groth16 setup. k is the
// advertised circuit size; exceeding 2^k constraints is logged, not rejected.
func (b *MerkleSumTree) Setup(circuit MstCircuit, k uint32) (MstKeys, error) {
	cachePath := ccsCachePath(b.ccsCache, b.Variant(), b.levels, b.currencies, b.bytes)
	ccs, err := loadOrCompileGroth16ConstraintSystem(b.log, cachePath, circuit.Shape)
	if err != nil {
		return MstKeys{}, failure("compile", err)
	}
	if n := ccs.GetNbConstraints(); uint64(n) > uint64(1)<<k {
		b.log.Warn().Int("constraints", n).Uint32("k", k).Msg("circuit exceeds 2^k rows")
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return MstKeys{}, failure("groth16 setup", err)
	}
	return MstKeys{CCS: ccs, PK: pk, VK: vk}, nil
}

func (b *MerkleSumTree) ProveCommitment(keys MstKeys, circuit MstCircuit) (MstCommitment, error) {
	tree, err := mst.New(circuit.Entries, circuit.Assets, b.levels, b.bytes)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidConfiguration) {
			return MstCommitment{}, err
		}
		return MstCommitment{}, failure("build merkle-sum-tree", err)
	}
	return MstCommitment{Tree: tree, Keys: keys}, nil
}

func (b *MerkleSumTree) ProveInclusion(artifact MstCommitment, subject int) (MstInclusion, error) {
	if err := checkSubject(subject, b.Capacity()); err != nil {
		return MstInclusion{}, err
	}
	path, err := artifact.Tree.Proof(subject)
	if err != nil {
		return MstInclusion{}, err
	}
	assignment, err := zk.NewMstInclusionAssignment(path, b.bytes)
	if err != nil {
		return MstInclusion{}, failure("assignment", err)
	}
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return MstInclusion{}, failure("build witness", err)
	}
	proof, err := groth16.Prove(artifact.Keys.CCS, artifact.Keys.PK, fullWitness)
	if err != nil {
		return MstInclusion{}, failure("groth16 prove", err)
	}
	return MstInclusion{Path: path, Proof: proof}, nil
}
