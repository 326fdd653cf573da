package consts

import (
	"fmt"
	"strings"
)

// Variant names one proof-of-solvency backend construction.
type Variant string

const (
	VariantMerkleSumTree   Variant = "v1"
	VariantUnivariateSum   Variant = "v2"
	VariantHyperplonk      Variant = "v3a"
	VariantHyperplonkRange Variant = "v3c"
)

// Variants lists every known variant in run order.
var Variants = []Variant{
	VariantMerkleSumTree,
	VariantUnivariateSum,
	VariantHyperplonk,
	VariantHyperplonkRange,
}

// CapacityOffset is subtracted from 2^LEVELS to get the number of users a variant's
// circuit holds. The polynomial variants reserve rows for blinding and padding.
func (v Variant) CapacityOffset() int {
	switch v {
	case VariantUnivariateSum:
		return 6
	case VariantHyperplonk:
		return 1
	case VariantHyperplonkRange:
		return 2
	default:
		return 0
	}
}

func (v Variant) Description() string {
	switch v {
	case VariantMerkleSumTree:
		return "merkle-sum-tree + groth16 inclusion"
	case VariantUnivariateSum:
		return "univariate grand sum (plonk + kzg)"
	case VariantHyperplonk:
		return "summa circuit (plonk) + hypercube openings"
	case VariantHyperplonkRange:
		return "summa circuit with lookup range checks + hypercube openings"
	default:
		return "unknown"
	}
}

func ParseVariant(raw string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Variants {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown variant %q (expected v1|v2|v3a|v3c)", raw)
}

func ParseVariants(raw string) ([]Variant, error) {
	parts := strings.Split(raw, ",")
	out := make([]Variant, 0, len(parts))
	seen := make(map[Variant]struct{}, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		v, err := ParseVariant(p)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no valid variants in %q", raw)
	}
	return out, nil
}
