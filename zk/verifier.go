package zk

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"
)

var ErrVerifierUnavailable = errors.New("verifying key unavailable")

// Verifier checks proofs produced by the benchmark backends. Runs never call it;
// it exists so tests and tooling can confirm that timed work produced valid output.
type Verifier struct {
	groth16VK groth16.VerifyingKey
	plonkVK   plonk.VerifyingKey
}

type VerifierConfig struct {
	Groth16 groth16.VerifyingKey
	Plonk   plonk.VerifyingKey
}

func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if cfg.Groth16 == nil && cfg.Plonk == nil {
		return nil, ErrVerifierUnavailable
	}
	return &Verifier{groth16VK: cfg.Groth16, plonkVK: cfg.Plonk}, nil
}

// VerifyMstInclusion checks a Groth16 inclusion proof against its public leaf hash and root.
func (v *Verifier) VerifyMstInclusion(proof groth16.Proof, leafHash, root fr.Element) error {
	if v.groth16VK == nil {
		return ErrVerifierUnavailable
	}
	pub, err := publicWitness(&MstInclusionCircuit{LeafHash: bigOf(leafHash), Root: bigOf(root)})
	if err != nil {
		return err
	}
	return groth16.Verify(proof, v.groth16VK, pub)
}

// VerifyRangeCheck checks a PLONK range-check proof; its only public input is zero.
func (v *Verifier) VerifyRangeCheck(proof plonk.Proof) error {
	if v.plonkVK == nil {
		return ErrVerifierUnavailable
	}
	pub, err := publicWitness(&RangeCheckCircuit{Instance: 0})
	if err != nil {
		return err
	}
	return plonk.Verify(proof, v.plonkVK, pub)
}

// VerifySumma checks a PLONK summa proof against the claimed per-asset totals.
func (v *Verifier) VerifySumma(proof plonk.Proof, grandSums []*big.Int) error {
	if v.plonkVK == nil {
		return ErrVerifierUnavailable
	}
	if len(grandSums) == 0 {
		return fmt.Errorf("summa verification needs at least one grand sum")
	}
	assignment := &SummaCircuit{GrandSums: make([]frontend.Variable, len(grandSums))}
	for j, s := range grandSums {
		assignment.GrandSums[j] = s
	}
	pub, err := publicWitness(assignment)
	if err != nil {
		return err
	}
	return plonk.Verify(proof, v.plonkVK, pub)
}

func publicWitness(assignment frontend.Circuit) (witness.Witness, error) {
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return nil, fmt.Errorf("public witness: %w", err)
	}
	return w, nil
}
