// Package config resolves run parameters from the environment and validates them
// before any proving work starts.
package config

import (
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/errs"
)

const (
	minLevels = 2
	maxLevels = 26
	maxK      = 28
	maxBytes  = 16
)

// Config is built once at startup and passed by value through the call chain.
type Config struct {
	K          uint32
	Levels     uint32
	Currencies int
	Bytes      int
	MinBalance uint64
	MaxBalance uint64
	Seed       uint64
	Workers    int
	OutputDir  string
	CCSCache   string
	Variants   []consts.Variant
}

func Default() Config {
	return Config{
		K:          consts.DefaultK,
		Levels:     consts.DefaultLevels,
		Currencies: consts.DefaultCurrencies,
		Bytes:      consts.DefaultBytes,
		MinBalance: consts.DefaultMinBalance,
		MaxBalance: consts.DefaultMaxBalance,
		OutputDir:  ".",
		Variants:   append([]consts.Variant(nil), consts.Variants...),
	}
}

// FromEnv overlays environment variables on Default. It does not validate; call
// Validate once flags have been applied.
func FromEnv() (Config, error) {
	cfg := Default()
	var err error

	if cfg.K, err = envUint32("K", cfg.K); err != nil {
		return Config{}, err
	}
	levelsName := "LEVELS"
	if os.Getenv(levelsName) == "" && os.Getenv("N_LEVELS") != "" {
		levelsName = "N_LEVELS"
	}
	if cfg.Levels, err = envUint32(levelsName, cfg.Levels); err != nil {
		return Config{}, err
	}
	if cfg.Currencies, err = envInt("N_CURRENCIES", cfg.Currencies); err != nil {
		return Config{}, err
	}
	if cfg.Bytes, err = envInt("N_BYTES", cfg.Bytes); err != nil {
		return Config{}, err
	}
	if cfg.MinBalance, err = envUint64("MIN_BALANCE", cfg.MinBalance); err != nil {
		return Config{}, err
	}
	if cfg.MaxBalance, err = envUint64("MAX_BALANCE", cfg.MaxBalance); err != nil {
		return Config{}, err
	}
	if cfg.Seed, err = envUint64("SEED", cfg.Seed); err != nil {
		return Config{}, err
	}
	if cfg.Workers, err = envInt("WORKERS", cfg.Workers); err != nil {
		return Config{}, err
	}
	cfg.OutputDir = envOr("OUTPUT_DIR", cfg.OutputDir)
	cfg.CCSCache = strings.TrimSpace(os.Getenv("CCS_CACHE_DIR"))
	if raw := strings.TrimSpace(os.Getenv("VARIANTS")); raw != "" {
		variants, err := consts.ParseVariants(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: VARIANTS: %v", errs.ErrInvalidConfiguration, err)
		}
		cfg.Variants = variants
	}
	return cfg, nil
}

// Validate rejects parameter combinations no backend can run.
func (c Config) Validate() error {
	if c.Currencies <= 0 {
		return invalid("N_CURRENCIES must be greater than 0, got %d", c.Currencies)
	}
	if c.Levels < minLevels || c.Levels > maxLevels {
		return invalid("LEVELS must be within [%d, %d], got %d", minLevels, maxLevels, c.Levels)
	}
	if c.K == 0 || c.K > maxK {
		return invalid("K must be within [1, %d], got %d", maxK, c.K)
	}
	if c.Bytes <= 0 || c.Bytes > maxBytes {
		return invalid("N_BYTES must be within [1, %d], got %d", maxBytes, c.Bytes)
	}
	if c.MinBalance == 0 {
		return invalid("MIN_BALANCE must be greater than 0")
	}
	if c.MaxBalance <= c.MinBalance {
		return invalid("MAX_BALANCE (%d) must exceed MIN_BALANCE (%d)", c.MaxBalance, c.MinBalance)
	}
	if c.Bytes < 8 && bits.Len64(c.MaxBalance-1) > c.Bytes*8 {
		return invalid("MAX_BALANCE-1 (%d) does not fit in %d bytes", c.MaxBalance-1, c.Bytes)
	}
	if c.Workers < 0 {
		return invalid("WORKERS must not be negative, got %d", c.Workers)
	}
	if len(c.Variants) == 0 {
		return invalid("no variants selected")
	}
	for _, v := range c.Variants {
		if _, err := consts.ParseVariant(string(v)); err != nil {
			return invalid("%v", err)
		}
		if c.Users(v) <= 0 {
			return invalid("variant %s has no capacity at LEVELS=%d", v, c.Levels)
		}
		if v == consts.VariantHyperplonkRange && c.Currencies != 1 {
			return invalid("variant %s supports exactly one currency, got %d", v, c.Currencies)
		}
		// The root of a full tree sums 2^LEVELS balances per asset.
		if v == consts.VariantMerkleSumTree && bits.Len64(c.MaxBalance-1)+int(c.Levels) > c.Bytes*8 {
			return invalid("variant %s: sums of 2^%d balances below %d overflow %d bytes",
				v, c.Levels, c.MaxBalance, c.Bytes)
		}
	}
	return nil
}

// Users is the population size the variant's circuit is built for.
func (c Config) Users(v consts.Variant) int {
	return (1 << c.Levels) - v.CapacityOffset()
}

// SecurityParameter is the k reported for a variant. The merkle-sum-tree variant sizes
// its proving circuit with K independently of the tree depth; the polynomial variants
// use LEVELS as the log2 of their evaluation domain.
func (c Config) SecurityParameter(v consts.Variant) uint32 {
	if v == consts.VariantMerkleSumTree {
		return c.K
	}
	return c.Levels
}

// ResultPath joins the output directory with the variant's result file name.
func (c Config) ResultPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errs.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", errs.ErrInvalidConfiguration, name, v)
	}
	return n, nil
}

func envUint64(name string, fallback uint64) (uint64, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an unsigned integer", errs.ErrInvalidConfiguration, name, v)
	}
	return n, nil
}

func envUint32(name string, fallback uint32) (uint32, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an unsigned integer", errs.ErrInvalidConfiguration, name, v)
	}
	return uint32(n), nil
}
