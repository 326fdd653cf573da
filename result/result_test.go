package result

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/errs"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	want := New(4, 4, 1, 17, 230, 99)
	path := filepath.Join(t.TempDir(), want.FileName(consts.VariantMerkleSumTree))

	require.NoError(t, want.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, consts.TimeUnit, got.TimeUnit())
}

func TestSavedShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, New(17, 131066, 2, 1500, 12, 5).Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	require.Equal(t, map[string]any{
		"k":                          float64(17),
		"n_users":                    float64(131066),
		"n_currencies":               float64(2),
		"commitment_generation_time": float64(1500),
		"inclusion_generation_time":  float64(12),
		"time_unit":                  "milliseconds",
		"seed":                       float64(5),
	}, fields)
}

func TestFileName(t *testing.T) {
	r := New(4, 4, 1, 0, 0, 1)
	require.Equal(t, "v1_k4_u4_c1.json", r.FileName(consts.VariantMerkleSumTree))
	require.Equal(t, "v3c_k4_u4_c1.json", r.FileName(consts.VariantHyperplonkRange))
}

func TestNewClampsNegativeDurations(t *testing.T) {
	r := New(1, 1, 1, -5, -1, 0)
	require.Zero(t, r.CommitmentMillis())
	require.Zero(t, r.InclusionMillis())
}

func TestSaveAndLoadReportIOErrors(t *testing.T) {
	dir := t.TempDir()
	err := New(1, 1, 1, 0, 0, 0).Save(filepath.Join(dir, "missing", "out.json"))
	require.ErrorIs(t, err, errs.ErrIO)

	_, err = Load(filepath.Join(dir, "nope.json"))
	require.ErrorIs(t, err, errs.ErrIO)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = Load(bad)
	require.ErrorIs(t, err, errs.ErrIO)
}
