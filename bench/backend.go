// Package bench drives a proof backend through synthesis, setup, commitment and
// inclusion, timing the two proving phases in isolation.
package bench

import (
	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/entry"
)

// Backend is the phase interface every proof system variant implements.
//
// C is the circuit (or prepared entry data), K the setup artifacts, A the
// commitment artifact and P the inclusion proof. Implementations must reject a
// population whose size differs from their capacity, and an inclusion subject
// outside [0, capacity).
type Backend[C, K, A, P any] interface {
	Variant() consts.Variant
	Init(entries []entry.Entry) (C, error)
	Setup(circuit C, k uint32) (K, error)
	ProveCommitment(keys K, circuit C) (A, error)
	ProveInclusion(artifact A, subject int) (P, error)
}
