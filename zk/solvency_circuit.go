package zk

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/rangecheck"

	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/entry"
)

// UsernameBits bounds the integer encoding of a username.
const UsernameBits = consts.UsernameLen * 8

// RangeCheckCircuit constrains every username and balance column cell to its bit
// width. Instance is a public zero.
type RangeCheckCircuit struct {
	Bits int `gnark:"-"`

	Usernames []frontend.Variable
	Balances  [][]frontend.Variable // [currency][user]

	Instance frontend.Variable `gnark:",public"`
}

func NewRangeCheckCircuit(users, currencies, nBytes int) *RangeCheckCircuit {
	return &RangeCheckCircuit{
		Bits:      nBytes * 8,
		Usernames: make([]frontend.Variable, users),
		Balances:  newColumns(currencies, users),
	}
}

func (c *RangeCheckCircuit) Define(api frontend.API) error {
	rc := rangecheck.New(api)
	for _, u := range c.Usernames {
		rc.Check(u, UsernameBits)
	}
	for _, col := range c.Balances {
		for _, b := range col {
			rc.Check(b, c.Bits)
		}
	}
	api.AssertIsEqual(c.Instance, 0)
	return nil
}

func NewRangeCheckAssignment(entries []entry.Entry, nBytes int) (*RangeCheckCircuit, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("range-check assignment needs at least one entry")
	}
	out := NewRangeCheckCircuit(len(entries), entries[0].Currencies(), nBytes)
	if err := fillColumns(out.Usernames, out.Balances, entries); err != nil {
		return nil, err
	}
	out.Instance = 0
	return out, nil
}

// SummaCircuit range-checks every cell and exposes the per-asset column totals as
// public inputs. Lookup selects table-based range checks over bit decomposition.
type SummaCircuit struct {
	Bits   int  `gnark:"-"`
	Lookup bool `gnark:"-"`

	Usernames []frontend.Variable
	Balances  [][]frontend.Variable // [currency][user]

	GrandSums []frontend.Variable `gnark:",public"`
}

func NewSummaCircuit(users, currencies, nBytes int, lookup bool) *SummaCircuit {
	return &SummaCircuit{
		Bits:      nBytes * 8,
		Lookup:    lookup,
		Usernames: make([]frontend.Variable, users),
		Balances:  newColumns(currencies, users),
		GrandSums: make([]frontend.Variable, currencies),
	}
}

func (c *SummaCircuit) Define(api frontend.API) error {
	check := func(v frontend.Variable, bits int) { api.ToBinary(v, bits) }
	if c.Lookup {
		rc := rangecheck.New(api)
		check = rc.Check
	}

	for _, u := range c.Usernames {
		check(u, UsernameBits)
	}
	for j, col := range c.Balances {
		sum := frontend.Variable(0)
		for _, b := range col {
			check(b, c.Bits)
			sum = api.Add(sum, b)
		}
		api.AssertIsEqual(sum, c.GrandSums[j])
	}
	return nil
}

func NewSummaAssignment(entries []entry.Entry, nBytes int, lookup bool) (*SummaCircuit, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("summa assignment needs at least one entry")
	}
	out := NewSummaCircuit(len(entries), entries[0].Currencies(), nBytes, lookup)
	if err := fillColumns(out.Usernames, out.Balances, entries); err != nil {
		return nil, err
	}
	for j, s := range entry.GrandSums(entries) {
		out.GrandSums[j] = s
	}
	return out, nil
}

func newColumns(currencies, users int) [][]frontend.Variable {
	cols := make([][]frontend.Variable, currencies)
	for j := range cols {
		cols[j] = make([]frontend.Variable, users)
	}
	return cols
}

func fillColumns(usernames []frontend.Variable, balances [][]frontend.Variable, entries []entry.Entry) error {
	for i, e := range entries {
		if e.Currencies() != len(balances) {
			return fmt.Errorf("entry %d balances: got=%d expected=%d", i, e.Currencies(), len(balances))
		}
		usernames[i] = e.UsernameAsBigInt()
		for j := range balances {
			balances[j][i] = e.Balance(j)
		}
	}
	return nil
}
