package backend

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/summa-dev/summa-bench/config"
	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/entry"
	"github.com/summa-dev/summa-bench/errs"
	"github.com/summa-dev/summa-bench/zk"
)

// Hyperplonk proves the summa circuit with the grand sums as public inputs and
// opens a user's row at the point of its boolean hypercube vertex. With lookup
// set it uses table range checks and supports a single asset only.
type Hyperplonk struct {
	variant    consts.Variant
	levels     int
	currencies int
	bytes      int
	lookup     bool
	log        zerolog.Logger
}

func NewHyperplonk(cfg config.Config, log zerolog.Logger) *Hyperplonk {
	return newHyperplonk(consts.VariantHyperplonk, cfg, false, log)
}

func NewHyperplonkRange(cfg config.Config, log zerolog.Logger) *Hyperplonk {
	return newHyperplonk(consts.VariantHyperplonkRange, cfg, true, log)
}

func newHyperplonk(v consts.Variant, cfg config.Config, lookup bool, log zerolog.Logger) *Hyperplonk {
	return &Hyperplonk{
		variant:    v,
		levels:     int(cfg.Levels),
		currencies: cfg.Currencies,
		bytes:      cfg.Bytes,
		lookup:     lookup,
		log:        log.With().Str("backend", string(v)).Logger(),
	}
}

type SummaInput struct {
	Entries    []entry.Entry
	Shape      *zk.SummaCircuit
	Assignment *zk.SummaCircuit
}

func (b *Hyperplonk) Variant() consts.Variant { return b.variant }

func (b *Hyperplonk) Capacity() int { return (1 << b.levels) - b.variant.CapacityOffset() }

func (b *Hyperplonk) Init(entries []entry.Entry) (SummaInput, error) {
	if b.lookup && b.currencies != 1 {
		return SummaInput{}, fmt.Errorf("%w: %s supports exactly one currency, got %d",
			errs.ErrInvalidConfiguration, b.variant, b.currencies)
	}
	if err := checkPopulation(string(b.variant), len(entries), b.Capacity()); err != nil {
		return SummaInput{}, err
	}
	if entries[0].Currencies() != b.currencies {
		return SummaInput{}, fmt.Errorf("%w: entries carry %d balances, want %d",
			errs.ErrInvalidConfiguration, entries[0].Currencies(), b.currencies)
	}
	assignment, err := zk.NewSummaAssignment(entries, b.bytes, b.lookup)
	if err != nil {
		return SummaInput{}, fmt.Errorf("%w: %w", errs.ErrInvalidConfiguration, err)
	}
	return SummaInput{
		Entries:    entries,
		Shape:      zk.NewSummaCircuit(len(entries), b.currencies, b.bytes, b.lookup),
		Assignment: assignment,
	}, nil
}

func (b *Hyperplonk) Setup(circuit SummaInput, k uint32) (PlonkKeys, error) {
	b.log.Debug().Uint32("k", k).Bool("lookup", b.lookup).Msg("hypercube dimension is k")
	return setupPlonk(b.log, circuit.Shape, b.levels)
}

func (b *Hyperplonk) ProveCommitment(keys PlonkKeys, circuit SummaInput) (ColumnCommitment, error) {
	proof, err := provePlonk(keys, circuit.Assignment)
	if err != nil {
		return ColumnCommitment{}, err
	}
	polys, digests, err := commitColumns(keys.Scheme, circuit.Entries)
	if err != nil {
		return ColumnCommitment{}, err
	}
	return ColumnCommitment{Proof: proof, Polys: polys, Digests: digests, Scheme: keys.Scheme}, nil
}

func (b *Hyperplonk) ProveInclusion(artifact ColumnCommitment, subject int) (ColumnOpening, error) {
	if err := checkSubject(subject, b.Capacity()); err != nil {
		return ColumnOpening{}, err
	}
	return openRow(artifact, subject, artifact.Scheme.HypercubePoint(subject))
}
