package entry

import (
	"fmt"
	"math/big"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/errs"
)

// Options controls population synthesis.
type Options struct {
	Users      int
	Currencies int
	MinBalance uint64 // inclusive
	MaxBalance uint64 // exclusive
	Seed       uint64
	Workers    int // 0 means GOMAXPROCS
}

// Synthesize produces opts.Users entries with random usernames and balances.
//
// Each entry draws from its own PCG stream keyed by (Seed, index), so workers never
// share generator state and the population depends only on the seed, not on how
// the work was partitioned.
func Synthesize(opts Options) ([]Entry, error) {
	if opts.Currencies <= 0 {
		return nil, fmt.Errorf("%w: N_CURRENCIES must be greater than 0", errs.ErrInvalidConfiguration)
	}
	if opts.Users <= 0 {
		return nil, fmt.Errorf("%w: population size must be greater than 0, got %d", errs.ErrInvalidConfiguration, opts.Users)
	}
	if opts.MinBalance == 0 || opts.MaxBalance <= opts.MinBalance {
		return nil, fmt.Errorf(
			"%w: balance range [%d, %d) must be non-empty and exclude zero",
			errs.ErrInvalidConfiguration, opts.MinBalance, opts.MaxBalance,
		)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > opts.Users {
		workers = opts.Users
	}
	chunk := (opts.Users + workers - 1) / workers

	entries := make([]Entry, opts.Users)
	var g errgroup.Group
	for start := 0; start < opts.Users; start += chunk {
		end := min(start+chunk, opts.Users)
		g.Go(func() error {
			for i := start; i < end; i++ {
				entries[i] = randomEntry(newEntryRand(opts.Seed, i), opts)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func newEntryRand(seed uint64, index int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(index)))
}

func randomEntry(r *rand.Rand, opts Options) Entry {
	name := make([]byte, consts.UsernameLen)
	for i := range name {
		name[i] = consts.UsernameAlphabet[r.IntN(len(consts.UsernameAlphabet))]
	}
	span := opts.MaxBalance - opts.MinBalance
	balances := make([]*big.Int, opts.Currencies)
	for i := range balances {
		balances[i] = new(big.Int).SetUint64(opts.MinBalance + r.Uint64N(span))
	}
	return Entry{username: string(name), balances: balances}
}
