// Package pcs commits to entry columns as univariate polynomials over a radix-2
// domain and opens them with batched KZG proofs.
package pcs

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"golang.org/x/sync/errgroup"

	"github.com/summa-dev/summa-bench/entry"
	"github.com/summa-dev/summa-bench/errs"
)

// Scheme owns an evaluation domain and a KZG SRS of matching size. The SRS is
// sampled from a local secret and is only fit for benchmarking.
type Scheme struct {
	domain *fft.Domain
	srs    *kzg.SRS
}

func New(size uint64) (*Scheme, error) {
	if size < 2 || bits.OnesCount64(size) != 1 {
		return nil, fmt.Errorf("%w: domain size %d is not a power of two", errs.ErrInvalidConfiguration, size)
	}
	var secret fr.Element
	if _, err := secret.SetRandom(); err != nil {
		return nil, fmt.Errorf("sample srs secret: %w", err)
	}
	srs, err := kzg.NewSRS(size, secret.BigInt(new(big.Int)))
	if err != nil {
		return nil, fmt.Errorf("kzg srs: %w", err)
	}
	return &Scheme{domain: fft.NewDomain(size), srs: srs}, nil
}

func (s *Scheme) Size() uint64 { return s.domain.Cardinality }

// Interpolate returns the coefficients of the polynomial taking values[i] at
// omega^i, with missing trailing values treated as zero.
func (s *Scheme) Interpolate(values []fr.Element) ([]fr.Element, error) {
	if uint64(len(values)) > s.Size() {
		return nil, fmt.Errorf("%w: %d values exceed domain size %d", errs.ErrInvalidConfiguration, len(values), s.Size())
	}
	p := make([]fr.Element, s.Size())
	copy(p, values)
	s.domain.FFTInverse(p, fft.DIF)
	fft.BitReverse(p)
	return p, nil
}

// Commit commits every polynomial concurrently and returns digests in input order.
func (s *Scheme) Commit(polys [][]fr.Element) ([]kzg.Digest, error) {
	digests := make([]kzg.Digest, len(polys))
	var g errgroup.Group
	for i := range polys {
		g.Go(func() error {
			d, err := kzg.Commit(polys[i], s.srs.Pk)
			if err != nil {
				return fmt.Errorf("commit column %d: %w", i, err)
			}
			digests[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return digests, nil
}

// Open produces one batched opening of all polynomials at point.
func (s *Scheme) Open(polys [][]fr.Element, digests []kzg.Digest, point fr.Element) (kzg.BatchOpeningProof, error) {
	proof, err := kzg.BatchOpenSinglePoint(polys, digests, point, sha256.New(), s.srs.Pk)
	if err != nil {
		return kzg.BatchOpeningProof{}, fmt.Errorf("batch open: %w", err)
	}
	return proof, nil
}

func (s *Scheme) Verify(digests []kzg.Digest, proof kzg.BatchOpeningProof, point fr.Element) error {
	return kzg.BatchVerifySinglePoint(digests, &proof, point, sha256.New(), s.srs.Vk)
}

// Point returns omega^index, the evaluation point of row index.
func (s *Scheme) Point(index int) fr.Element {
	var p fr.Element
	p.Exp(s.domain.Generator, big.NewInt(int64(index)))
	return p
}

// HypercubePoint maps the boolean vertex binary(index) to the domain as
// prod_j (omega^(2^j))^(b_j).
func (s *Scheme) HypercubePoint(index int) fr.Element {
	var acc fr.Element
	acc.SetOne()
	g := s.domain.Generator
	for j := 0; j < bits.Len64(s.Size()-1); j++ {
		if (index>>j)&1 == 1 {
			acc.Mul(&acc, &g)
		}
		g.Square(&g)
	}
	return acc
}

// Columns lays entries out as C+1 value columns: usernames first, then one per asset.
func Columns(entries []entry.Entry) [][]fr.Element {
	if len(entries) == 0 {
		return nil
	}
	cols := make([][]fr.Element, entries[0].Currencies()+1)
	for j := range cols {
		cols[j] = make([]fr.Element, len(entries))
	}
	for i, e := range entries {
		cols[0][i].SetBigInt(e.UsernameAsBigInt())
		for j := 0; j < e.Currencies(); j++ {
			cols[j+1][i].SetBigInt(e.Balance(j))
		}
	}
	return cols
}
