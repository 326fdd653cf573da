package main

import (
	"fmt"

	"github.com/summa-dev/summa-bench/backend"
	"github.com/summa-dev/summa-bench/bench"
	"github.com/summa-dev/summa-bench/config"
	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/result"
)

// runnerFunc runs one full benchmark of a variant.
type runnerFunc func(cfg config.Config, opts bench.Options) (result.Result, bench.Trace, error)

var runners = map[consts.Variant]runnerFunc{
	consts.VariantMerkleSumTree: func(cfg config.Config, opts bench.Options) (result.Result, bench.Trace, error) {
		return unpack(bench.Run[backend.MstCircuit, backend.MstKeys, backend.MstCommitment, backend.MstInclusion](
			cfg, backend.NewMerkleSumTree(cfg, opts.Logger), opts))
	},
	consts.VariantUnivariateSum: func(cfg config.Config, opts bench.Options) (result.Result, bench.Trace, error) {
		return unpack(bench.Run[backend.RangeCheckInput, backend.PlonkKeys, backend.ColumnCommitment, backend.ColumnOpening](
			cfg, backend.NewUnivariateSum(cfg, opts.Logger), opts))
	},
	consts.VariantHyperplonk: func(cfg config.Config, opts bench.Options) (result.Result, bench.Trace, error) {
		return unpack(bench.Run[backend.SummaInput, backend.PlonkKeys, backend.ColumnCommitment, backend.ColumnOpening](
			cfg, backend.NewHyperplonk(cfg, opts.Logger), opts))
	},
	consts.VariantHyperplonkRange: func(cfg config.Config, opts bench.Options) (result.Result, bench.Trace, error) {
		return unpack(bench.Run[backend.SummaInput, backend.PlonkKeys, backend.ColumnCommitment, backend.ColumnOpening](
			cfg, backend.NewHyperplonkRange(cfg, opts.Logger), opts))
	},
}

func unpack[P any](out bench.Outcome[P], err error) (result.Result, bench.Trace, error) {
	if err != nil {
		return result.Result{}, bench.Trace{}, err
	}
	return out.Result, out.Trace, nil
}

func runnerFor(v consts.Variant) (runnerFunc, error) {
	r, ok := runners[v]
	if !ok {
		return nil, fmt.Errorf("no backend registered for variant %q", v)
	}
	return r, nil
}
