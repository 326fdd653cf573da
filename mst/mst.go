// Package mst builds a MiMC merkle-sum-tree over account entries. Every node
// carries the per-asset sums of its subtree, and the hash of an internal node
// commits to those sums together with both children.
package mst

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/summa-dev/summa-bench/entry"
	"github.com/summa-dev/summa-bench/errs"
)

type Node struct {
	Hash fr.Element
	Sums []fr.Element
}

// Tree stores every level, leaves first. levels[len-1] holds the single root.
type Tree struct {
	depth      int
	currencies int
	bytes      int
	assets     []entry.Asset
	entries    []entry.Entry
	levels     [][]Node
}

// Proof is the authentication path for one leaf.
type Proof struct {
	Username    fr.Element
	Balances    []fr.Element
	LeafHash    fr.Element
	SiblingHash []fr.Element
	SiblingSums [][]fr.Element
	PathIndices []uint8 // 1 when the running node is a right child
	Root        Node
	Index       int
}

// New builds the tree. len(entries) must be a power of two equal to 2^depth, and
// every sum (including the root's) must fit in nBytes bytes.
func New(entries []entry.Entry, assets []entry.Asset, depth, nBytes int) (*Tree, error) {
	if depth < 1 || len(entries) != 1<<depth {
		return nil, fmt.Errorf("%w: merkle-sum-tree of depth %d needs %d entries, got %d",
			errs.ErrInvalidConfiguration, depth, 1<<depth, len(entries))
	}
	currencies := entries[0].Currencies()
	if len(assets) != currencies {
		return nil, fmt.Errorf("%w: %d assets for %d balances", errs.ErrInvalidConfiguration, len(assets), currencies)
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(nBytes*8))

	leaves := make([]Node, len(entries))
	for i, e := range entries {
		if e.Currencies() != currencies {
			return nil, fmt.Errorf("%w: entry %d has %d balances, want %d",
				errs.ErrInvalidConfiguration, i, e.Currencies(), currencies)
		}
		for j := 0; j < currencies; j++ {
			if e.Balance(j).Cmp(limit) >= 0 {
				return nil, fmt.Errorf("%w: entry %d balance %d exceeds %d bytes",
					errs.ErrInvalidConfiguration, i, j, nBytes)
			}
		}
		leaves[i] = leafNode(e)
	}

	levels := [][]Node{leaves}
	for len(levels[len(levels)-1]) > 1 {
		prev := levels[len(levels)-1]
		next := make([]Node, len(prev)/2)
		for i := range next {
			next[i] = middleNode(prev[2*i], prev[2*i+1])
			for j := range next[i].Sums {
				var b big.Int
				if next[i].Sums[j].BigInt(&b).Cmp(limit) >= 0 {
					return nil, fmt.Errorf("%w: sum of asset %d overflows %d bytes",
						errs.ErrInvalidConfiguration, j, nBytes)
				}
			}
		}
		levels = append(levels, next)
	}

	return &Tree{
		depth:      depth,
		currencies: currencies,
		bytes:      nBytes,
		assets:     append([]entry.Asset(nil), assets...),
		entries:    entries,
		levels:     levels,
	}, nil
}

func (t *Tree) Depth() int            { return t.depth }
func (t *Tree) Currencies() int       { return t.currencies }
func (t *Tree) Bytes() int            { return t.bytes }
func (t *Tree) Assets() []entry.Asset { return append([]entry.Asset(nil), t.assets...) }
func (t *Tree) Leaves() int           { return len(t.levels[0]) }

func (t *Tree) Root() Node {
	return cloneNode(t.levels[len(t.levels)-1][0])
}

// Proof returns the authentication path of the leaf at index.
func (t *Tree) Proof(index int) (Proof, error) {
	if index < 0 || index >= t.Leaves() {
		return Proof{}, fmt.Errorf("%w: index %d not in [0, %d)", errs.ErrInvalidSubject, index, t.Leaves())
	}
	e := t.entries[index]
	p := Proof{
		Username:    usernameElement(e),
		Balances:    balanceElements(e),
		LeafHash:    t.levels[0][index].Hash,
		SiblingHash: make([]fr.Element, t.depth),
		SiblingSums: make([][]fr.Element, t.depth),
		PathIndices: make([]uint8, t.depth),
		Root:        t.Root(),
		Index:       index,
	}
	pos := index
	for lvl := 0; lvl < t.depth; lvl++ {
		sib := t.levels[lvl][pos^1]
		p.SiblingHash[lvl] = sib.Hash
		p.SiblingSums[lvl] = append([]fr.Element(nil), sib.Sums...)
		p.PathIndices[lvl] = uint8(pos & 1)
		pos >>= 1
	}
	return p, nil
}

// Verify recomputes the root from the path.
func (p Proof) Verify() bool {
	cur := Node{Hash: p.LeafHash, Sums: p.Balances}
	if leaf := leafHash(p.Username, p.Balances); !leaf.Equal(&p.LeafHash) {
		return false
	}
	for lvl := range p.SiblingHash {
		sib := Node{Hash: p.SiblingHash[lvl], Sums: p.SiblingSums[lvl]}
		if p.PathIndices[lvl] == 1 {
			cur = middleNode(sib, cur)
		} else {
			cur = middleNode(cur, sib)
		}
	}
	if !cur.Hash.Equal(&p.Root.Hash) {
		return false
	}
	for j := range cur.Sums {
		if !cur.Sums[j].Equal(&p.Root.Sums[j]) {
			return false
		}
	}
	return true
}

func leafNode(e entry.Entry) Node {
	username := usernameElement(e)
	balances := balanceElements(e)
	return Node{Hash: leafHash(username, balances), Sums: balances}
}

func middleNode(left, right Node) Node {
	sums := make([]fr.Element, len(left.Sums))
	for j := range sums {
		sums[j].Add(&left.Sums[j], &right.Sums[j])
	}
	return Node{Hash: NodeHash(sums, left.Hash, right.Hash), Sums: sums}
}

func leafHash(username fr.Element, balances []fr.Element) fr.Element {
	return hashElements(append([]fr.Element{username}, balances...)...)
}

// LeafHash is H(username, balance_0, ..., balance_{C-1}).
func LeafHash(e entry.Entry) fr.Element {
	return leafHash(usernameElement(e), balanceElements(e))
}

// NodeHash is H(sum_0, ..., sum_{C-1}, left, right).
func NodeHash(sums []fr.Element, left, right fr.Element) fr.Element {
	in := make([]fr.Element, 0, len(sums)+2)
	in = append(in, sums...)
	in = append(in, left, right)
	return hashElements(in...)
}

func hashElements(in ...fr.Element) fr.Element {
	h := mimc.NewMiMC()
	for i := range in {
		b := in[i].Bytes()
		h.Write(b[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

func usernameElement(e entry.Entry) fr.Element {
	var el fr.Element
	el.SetBigInt(e.UsernameAsBigInt())
	return el
}

func balanceElements(e entry.Entry) []fr.Element {
	out := make([]fr.Element, e.Currencies())
	for i := range out {
		out[i].SetBigInt(e.Balance(i))
	}
	return out
}

func cloneNode(n Node) Node {
	return Node{Hash: n.Hash, Sums: append([]fr.Element(nil), n.Sums...)}
}
