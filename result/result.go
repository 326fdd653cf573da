// Package result records the outcome of one benchmark run.
package result

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/errs"
)

// Result is immutable; build it with New or Load.
type Result struct {
	k                uint32
	users            int
	currencies       int
	commitmentMillis int64
	inclusionMillis  int64
	timeUnit         string
	seed             uint64
}

// record is the on-disk shape.
type record struct {
	K                        uint32 `json:"k"`
	NUsers                   int    `json:"n_users"`
	NCurrencies              int    `json:"n_currencies"`
	CommitmentGenerationTime int64  `json:"commitment_generation_time"`
	InclusionGenerationTime  int64  `json:"inclusion_generation_time"`
	TimeUnit                 string `json:"time_unit"`
	Seed                     uint64 `json:"seed"`
}

// New records durations in milliseconds. Negative durations are clamped to zero.
func New(k uint32, users, currencies int, commitmentMillis, inclusionMillis int64, seed uint64) Result {
	return Result{
		k:                k,
		users:            users,
		currencies:       currencies,
		commitmentMillis: max(commitmentMillis, 0),
		inclusionMillis:  max(inclusionMillis, 0),
		timeUnit:         consts.TimeUnit,
		seed:             seed,
	}
}

func (r Result) K() uint32               { return r.k }
func (r Result) Users() int              { return r.users }
func (r Result) Currencies() int         { return r.currencies }
func (r Result) CommitmentMillis() int64 { return r.commitmentMillis }
func (r Result) InclusionMillis() int64  { return r.inclusionMillis }
func (r Result) TimeUnit() string        { return r.timeUnit }
func (r Result) Seed() uint64            { return r.seed }

// FileName is {variant}_k{k}_u{n_users}_c{n_currencies}.json.
func (r Result) FileName(variant consts.Variant) string {
	return fmt.Sprintf("%s_k%d_u%d_c%d.json", variant, r.k, r.users, r.currencies)
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.record())
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*r = Result{
		k:                rec.K,
		users:            rec.NUsers,
		currencies:       rec.NCurrencies,
		commitmentMillis: rec.CommitmentGenerationTime,
		inclusionMillis:  rec.InclusionGenerationTime,
		timeUnit:         rec.TimeUnit,
		seed:             rec.Seed,
	}
	return nil
}

// Save writes the result as indented JSON, replacing any existing file.
func (r Result) Save(path string) error {
	raw, err := json.MarshalIndent(r.record(), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode result: %w", errs.ErrIO, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", errs.ErrIO, path, err)
	}
	return nil
}

func Load(path string) (Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: read %s: %w", errs.ErrIO, path, err)
	}
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return Result{}, fmt.Errorf("%w: decode %s: %w", errs.ErrIO, path, err)
	}
	return r, nil
}

func (r Result) record() record {
	return record{
		K:                        r.k,
		NUsers:                   r.users,
		NCurrencies:              r.currencies,
		CommitmentGenerationTime: r.commitmentMillis,
		InclusionGenerationTime:  r.inclusionMillis,
		TimeUnit:                 r.timeUnit,
		Seed:                     r.seed,
	}
}
