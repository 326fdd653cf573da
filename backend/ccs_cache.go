package backend

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/rs/zerolog"

	"github.com/summa-dev/summa-bench/consts"
)

// loadOrCompileGroth16ConstraintSystem reads the compiled system from cachePath
// when present and valid, otherwise compiles the circuit and stores it there. An
// empty cachePath disables caching. Cache failures are logged, never fatal.
func loadOrCompileGroth16ConstraintSystem(
	log zerolog.Logger,
	cachePath string,
	circuit frontend.Circuit,
) (constraint.ConstraintSystem, error) {
	cachePath = strings.TrimSpace(cachePath)
	if cachePath != "" {
		ccs, err := loadGroth16ConstraintSystem(cachePath)
		if err == nil {
			log.Info().Str("path", cachePath).Msg("groth16 constraint system cache hit")
			return ccs, nil
		}
		log.Debug().Str("path", cachePath).Err(err).Msg("groth16 constraint system cache miss")
	}

	compileStart := time.Now()
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("compile groth16 circuit: %w", err)
	}
	log.Info().
		Dur("elapsed", time.Since(compileStart).Round(time.Millisecond)).
		Int("constraints", ccs.GetNbConstraints()).
		Msg("groth16 constraint system compiled")

	if cachePath != "" {
		if err := storeGroth16ConstraintSystem(cachePath, ccs); err != nil {
			log.Warn().Str("path", cachePath).Err(err).Msg("groth16 constraint system cache write skipped")
		} else {
			log.Info().Str("path", cachePath).Msg("groth16 constraint system cached")
		}
	}
	return ccs, nil
}

func loadGroth16ConstraintSystem(path string) (constraint.ConstraintSystem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ccs := groth16.NewCS(ecc.BN254)
	if _, err := ccs.ReadFrom(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return ccs, nil
}

// storeGroth16ConstraintSystem writes into a uniquely named sibling and renames it
// over path, so concurrent runs sharing a cache directory never read a torn file.
func storeGroth16ConstraintSystem(path string, ccs constraint.ConstraintSystem) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if _, err = ccs.WriteTo(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ccsCachePath names the cache file for one variant's circuit shape inside dir.
// It returns "" when dir is empty.
func ccsCachePath(dir string, v consts.Variant, shape ...int) string {
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s\x00%s", consts.Version, v)
	for _, s := range shape {
		_, _ = fmt.Fprintf(h, "\x00%d", s)
	}
	sum := h.Sum(nil)
	return filepath.Join(dir, fmt.Sprintf("%s_groth16_%s.ccs.bin", v, hex.EncodeToString(sum[:6])))
}
