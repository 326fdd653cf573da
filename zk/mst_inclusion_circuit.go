package zk

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/rangecheck"

	"github.com/summa-dev/summa-bench/mst"
)

// MstInclusionCircuit proves that a leaf H(username, balances) sits under Root in a
// merkle-sum-tree, and that every running sum along the path fits in Bits bits.
//
// LeafHash and Root are public; the entry and the path are private.
type MstInclusionCircuit struct {
	Levels     int `gnark:"-"`
	Currencies int `gnark:"-"`
	Bits       int `gnark:"-"`

	Username    frontend.Variable
	Balances    []frontend.Variable
	SiblingHash []frontend.Variable
	SiblingSums [][]frontend.Variable
	PathIndices []frontend.Variable

	LeafHash frontend.Variable `gnark:",public"`
	Root     frontend.Variable `gnark:",public"`
}

// NewMstInclusionCircuit allocates the circuit shape for compilation.
func NewMstInclusionCircuit(levels, currencies, nBytes int) *MstInclusionCircuit {
	c := &MstInclusionCircuit{
		Levels:      levels,
		Currencies:  currencies,
		Bits:        nBytes * 8,
		Balances:    make([]frontend.Variable, currencies),
		SiblingHash: make([]frontend.Variable, levels),
		SiblingSums: make([][]frontend.Variable, levels),
		PathIndices: make([]frontend.Variable, levels),
	}
	for i := range c.SiblingSums {
		c.SiblingSums[i] = make([]frontend.Variable, currencies)
	}
	return c
}

func (c *MstInclusionCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	rc := rangecheck.New(api)

	for _, b := range c.Balances {
		rc.Check(b, c.Bits)
	}
	h.Write(c.Username)
	h.Write(c.Balances...)
	api.AssertIsEqual(h.Sum(), c.LeafHash)

	cur := c.LeafHash
	sums := c.Balances
	for lvl := 0; lvl < c.Levels; lvl++ {
		api.AssertIsBoolean(c.PathIndices[lvl])

		next := make([]frontend.Variable, c.Currencies)
		for j := range next {
			rc.Check(c.SiblingSums[lvl][j], c.Bits)
			next[j] = api.Add(sums[j], c.SiblingSums[lvl][j])
			rc.Check(next[j], c.Bits)
		}
		left := api.Select(c.PathIndices[lvl], c.SiblingHash[lvl], cur)
		right := api.Select(c.PathIndices[lvl], cur, c.SiblingHash[lvl])

		h.Reset()
		h.Write(next...)
		h.Write(left, right)
		cur = h.Sum()
		sums = next
	}
	api.AssertIsEqual(cur, c.Root)
	return nil
}

// NewMstInclusionAssignment fills the circuit from a native proof.
func NewMstInclusionAssignment(p mst.Proof, nBytes int) (*MstInclusionCircuit, error) {
	levels := len(p.SiblingHash)
	if len(p.SiblingSums) != levels || len(p.PathIndices) != levels {
		return nil, fmt.Errorf("inconsistent merkle path: hashes=%d sums=%d indices=%d",
			len(p.SiblingHash), len(p.SiblingSums), len(p.PathIndices))
	}
	currencies := len(p.Balances)
	out := NewMstInclusionCircuit(levels, currencies, nBytes)
	out.Username = bigOf(p.Username)
	for j := range p.Balances {
		out.Balances[j] = bigOf(p.Balances[j])
	}
	for lvl := 0; lvl < levels; lvl++ {
		if len(p.SiblingSums[lvl]) != currencies {
			return nil, fmt.Errorf("sibling sums at level %d: got=%d expected=%d",
				lvl, len(p.SiblingSums[lvl]), currencies)
		}
		out.SiblingHash[lvl] = bigOf(p.SiblingHash[lvl])
		out.PathIndices[lvl] = p.PathIndices[lvl]
		for j := range p.SiblingSums[lvl] {
			out.SiblingSums[lvl][j] = bigOf(p.SiblingSums[lvl][j])
		}
	}
	out.LeafHash = bigOf(p.LeafHash)
	out.Root = bigOf(p.Root.Hash)
	return out, nil
}

func bigOf(e fr.Element) *big.Int {
	return e.BigInt(new(big.Int))
}
