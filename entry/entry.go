// Package entry models account entries and synthesizes random populations of them.
package entry

import (
	"fmt"
	"math/big"

	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/errs"
)

// Entry is one account: a username and one balance per tracked asset. It is
// immutable once constructed; accessors hand out copies.
type Entry struct {
	username string
	balances []*big.Int
}

func New(username string, balances []*big.Int) (Entry, error) {
	if len(balances) == 0 {
		return Entry{}, fmt.Errorf("%w: entry %q has no balances", errs.ErrInvalidConfiguration, username)
	}
	cp := make([]*big.Int, len(balances))
	for i, b := range balances {
		if b == nil || b.Sign() < 0 {
			return Entry{}, fmt.Errorf("%w: entry %q balance %d is negative or nil", errs.ErrInvalidConfiguration, username, i)
		}
		cp[i] = new(big.Int).Set(b)
	}
	return Entry{username: username, balances: cp}, nil
}

func (e Entry) Username() string { return e.username }

// UsernameAsBigInt interprets the username bytes as a big-endian integer.
func (e Entry) UsernameAsBigInt() *big.Int {
	return new(big.Int).SetBytes([]byte(e.username))
}

func (e Entry) Currencies() int { return len(e.balances) }

// Balance returns a copy of the i-th balance.
func (e Entry) Balance(i int) *big.Int {
	return new(big.Int).Set(e.balances[i])
}

func (e Entry) Balances() []*big.Int {
	out := make([]*big.Int, len(e.balances))
	for i, b := range e.balances {
		out[i] = new(big.Int).Set(b)
	}
	return out
}

// Asset describes one tracked asset type.
type Asset struct {
	Name  string
	Chain string
}

// DefaultAssets returns n copies of the default asset descriptor.
func DefaultAssets(n int) []Asset {
	out := make([]Asset, n)
	for i := range out {
		out[i] = Asset{Name: consts.DefaultAssetName, Chain: consts.DefaultAssetChain}
	}
	return out
}

// GrandSums totals each asset column over a population.
func GrandSums(entries []Entry) []*big.Int {
	if len(entries) == 0 {
		return nil
	}
	sums := make([]*big.Int, entries[0].Currencies())
	for i := range sums {
		sums[i] = new(big.Int)
	}
	for _, e := range entries {
		for i, b := range e.balances {
			sums[i].Add(sums[i], b)
		}
	}
	return sums
}
