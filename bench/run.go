package bench

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/summa-dev/summa-bench/config"
	"github.com/summa-dev/summa-bench/entry"
	"github.com/summa-dev/summa-bench/errs"
	"github.com/summa-dev/summa-bench/result"
)

// subjectStream keeps subject selection off the per-entry generator streams,
// which use the entry index as their stream id.
const subjectStream = math.MaxUint64

type Options struct {
	Clock  clock.Clock
	Logger zerolog.Logger
}

// Outcome is everything a run produced. Proof is kept so callers may verify it
// outside the timed path.
type Outcome[P any] struct {
	Result  result.Result
	Trace   Trace
	Subject int
	Proof   P
}

// ResolveSeed returns seed unchanged unless it is zero, in which case a fresh
// non-zero seed is drawn from the operating system.
func ResolveSeed(seed uint64) (uint64, error) {
	for seed == 0 {
		var buf [8]byte
		if _, err := crand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("draw seed: %w", err)
		}
		seed = binary.LittleEndian.Uint64(buf[:])
	}
	return seed, nil
}

type runner struct {
	state State
	trace Trace
	log   zerolog.Logger
	clk   clock.Clock
}

func (r *runner) advance(to State) {
	next, ok := r.state.next()
	if !ok || next != to {
		panic(fmt.Sprintf("bench: illegal transition %s -> %s", r.state, to))
	}
	r.state = to
	r.trace.States = append(r.trace.States, to)
	r.log.Debug().Stringer("state", to).Msg("state transition")
}

func (r *runner) timed(phase Phase, fn func() error) (Window, error) {
	w := Window{Phase: phase, Start: r.clk.Now()}
	err := fn()
	w.End = r.clk.Now()
	r.trace.Windows = append(r.trace.Windows, w)
	return w, err
}

// Run executes one benchmark of b under cfg. Any error aborts the run; nothing is
// retried and no partial result is returned.
func Run[C, K, A, P any](cfg config.Config, b Backend[C, K, A, P], opts Options) (Outcome[P], error) {
	var zero Outcome[P]
	if err := cfg.Validate(); err != nil {
		return zero, err
	}
	variant := b.Variant()
	users := cfg.Users(variant)
	if users <= 0 {
		return zero, fmt.Errorf("%w: variant %s has no capacity at LEVELS=%d", errs.ErrInvalidConfiguration, variant, cfg.Levels)
	}
	k := cfg.SecurityParameter(variant)
	seed, err := ResolveSeed(cfg.Seed)
	if err != nil {
		return zero, err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	r := &runner{
		state: StateIdle,
		trace: Trace{States: []State{StateIdle}},
		log:   opts.Logger.With().Str("variant", string(variant)).Logger(),
		clk:   clk,
	}
	r.log.Info().
		Int("users", users).
		Int("currencies", cfg.Currencies).
		Uint32("k", k).
		Uint64("seed", seed).
		Msg("starting benchmark")

	entries, err := entry.Synthesize(entry.Options{
		Users:      users,
		Currencies: cfg.Currencies,
		MinBalance: cfg.MinBalance,
		MaxBalance: cfg.MaxBalance,
		Seed:       seed,
		Workers:    cfg.Workers,
	})
	if err != nil {
		return zero, err
	}
	r.advance(StateEntriesReady)

	var (
		circuit C
		keys    K
	)
	setup, err := r.timed(PhaseSetup, func() error {
		var err error
		if circuit, err = b.Init(entries); err != nil {
			return err
		}
		keys, err = b.Setup(circuit, k)
		return err
	})
	if err != nil {
		return zero, err
	}
	r.log.Info().Dur("elapsed", setup.Duration()).Msg("setup complete")
	r.advance(StateCircuitReady)

	var artifact A
	commitment, err := r.timed(PhaseCommitment, func() error {
		var err error
		artifact, err = b.ProveCommitment(keys, circuit)
		return err
	})
	if err != nil {
		return zero, err
	}
	r.log.Info().Int64("ms", commitment.Duration().Milliseconds()).Msg("commitment generated")
	r.advance(StateCommitted)

	subject := rand.New(rand.NewPCG(seed, subjectStream)).IntN(users)
	var proof P
	inclusion, err := r.timed(PhaseInclusion, func() error {
		var err error
		proof, err = b.ProveInclusion(artifact, subject)
		return err
	})
	if err != nil {
		return zero, err
	}
	r.log.Info().Int("subject", subject).Int64("ms", inclusion.Duration().Milliseconds()).Msg("inclusion proof generated")
	r.advance(StateIncluded)

	res := result.New(
		k,
		users,
		cfg.Currencies,
		commitment.Duration().Milliseconds(),
		inclusion.Duration().Milliseconds(),
		seed,
	)
	r.advance(StateDone)

	return Outcome[P]{Result: res, Trace: r.trace, Subject: subject, Proof: proof}, nil
}

// ErrorKind names the sentinel class of err, for logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errs.ErrInvalidConfiguration):
		return "invalid-configuration"
	case errors.Is(err, errs.ErrInvalidSubject):
		return "invalid-subject"
	case errors.Is(err, errs.ErrBackendFailure):
		return "backend-failure"
	case errors.Is(err, errs.ErrIO):
		return "io"
	default:
		return "unknown"
	}
}
