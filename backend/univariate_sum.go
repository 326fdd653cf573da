package backend

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"

	"github.com/summa-dev/summa-bench/config"
	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/entry"
	"github.com/summa-dev/summa-bench/errs"
	"github.com/summa-dev/summa-bench/zk"
)

// UnivariateSum range-checks the entries in a PLONK circuit, commits to the
// entry columns as polynomials over the 2^LEVELS domain and reveals the grand
// sums by opening the balance polynomials at zero, where each evaluates to its
// column total divided by the domain size.
type UnivariateSum struct {
	levels     int
	currencies int
	bytes      int
	log        zerolog.Logger
}

func NewUnivariateSum(cfg config.Config, log zerolog.Logger) *UnivariateSum {
	return &UnivariateSum{
		levels:     int(cfg.Levels),
		currencies: cfg.Currencies,
		bytes:      cfg.Bytes,
		log:        log.With().Str("backend", string(consts.VariantUnivariateSum)).Logger(),
	}
}

type RangeCheckInput struct {
	Entries    []entry.Entry
	Shape      *zk.RangeCheckCircuit
	Assignment *zk.RangeCheckCircuit
}

func (b *UnivariateSum) Variant() consts.Variant { return consts.VariantUnivariateSum }

func (b *UnivariateSum) Capacity() int {
	return (1 << b.levels) - consts.VariantUnivariateSum.CapacityOffset()
}

func (b *UnivariateSum) Init(entries []entry.Entry) (RangeCheckInput, error) {
	if err := checkPopulation("univariate grand sum", len(entries), b.Capacity()); err != nil {
		return RangeCheckInput{}, err
	}
	if entries[0].Currencies() != b.currencies {
		return RangeCheckInput{}, fmt.Errorf("%w: entries carry %d balances, want %d",
			errs.ErrInvalidConfiguration, entries[0].Currencies(), b.currencies)
	}
	assignment, err := zk.NewRangeCheckAssignment(entries, b.bytes)
	if err != nil {
		return RangeCheckInput{}, fmt.Errorf("%w: %w", errs.ErrInvalidConfiguration, err)
	}
	return RangeCheckInput{
		Entries:    entries,
		Shape:      zk.NewRangeCheckCircuit(len(entries), b.currencies, b.bytes),
		Assignment: assignment,
	}, nil
}

func (b *UnivariateSum) Setup(circuit RangeCheckInput, k uint32) (PlonkKeys, error) {
	b.log.Debug().Uint32("k", k).Msg("domain size is 2^k")
	return setupPlonk(b.log, circuit.Shape, b.levels)
}

func (b *UnivariateSum) ProveCommitment(keys PlonkKeys, circuit RangeCheckInput) (ColumnCommitment, error) {
	proof, err := provePlonk(keys, circuit.Assignment)
	if err != nil {
		return ColumnCommitment{}, err
	}
	polys, digests, err := commitColumns(keys.Scheme, circuit.Entries)
	if err != nil {
		return ColumnCommitment{}, err
	}
	var zero fr.Element
	sums, err := keys.Scheme.Open(polys[1:], digests[1:], zero)
	if err != nil {
		return ColumnCommitment{}, failure("open grand sums", err)
	}
	return ColumnCommitment{
		Proof:     proof,
		Polys:     polys,
		Digests:   digests,
		Scheme:    keys.Scheme,
		GrandSums: &sums,
	}, nil
}

func (b *UnivariateSum) ProveInclusion(artifact ColumnCommitment, subject int) (ColumnOpening, error) {
	if err := checkSubject(subject, b.Capacity()); err != nil {
		return ColumnOpening{}, err
	}
	return openRow(artifact, subject, artifact.Scheme.Point(subject))
}
