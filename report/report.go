// Package report loads saved benchmark results and formats them into comparison
// tables.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/errs"
	"github.com/summa-dev/summa-bench/result"
)

// fileNamePattern also accepts the host suffix that upload appends.
var fileNamePattern = regexp.MustCompile(`^(v1|v2|v3a|v3c)_k(\d+)_u(\d+)_c(\d+)(?:_[A-Za-z0-9-]+)?\.json$`)

type Row struct {
	Variant consts.Variant
	File    string
	Result  result.Result
}

// Collect loads every result file in dir, skipping files whose names do not
// follow the result naming scheme.
func Collect(dir string) ([]Row, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", errs.ErrIO, dir, err)
	}
	var rows []Row
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		m := fileNamePattern.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		path := filepath.Join(dir, de.Name())
		res, err := result.Load(path)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{Variant: consts.Variant(m[1]), File: de.Name(), Result: res})
	}
	Sort(rows)
	return rows, nil
}

// Sort orders rows by variant, then k, users, currencies and file name.
func Sort(rows []Row) {
	rank := make(map[consts.Variant]int, len(consts.Variants))
	for i, v := range consts.Variants {
		rank[v] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if rank[a.Variant] != rank[b.Variant] {
			return rank[a.Variant] < rank[b.Variant]
		}
		if a.Result.K() != b.Result.K() {
			return a.Result.K() < b.Result.K()
		}
		if a.Result.Users() != b.Result.Users() {
			return a.Result.Users() < b.Result.Users()
		}
		if a.Result.Currencies() != b.Result.Currencies() {
			return a.Result.Currencies() < b.Result.Currencies()
		}
		return a.File < b.File
	})
}

type percentileStat struct {
	P50 float64
	P95 float64
}

type group struct {
	variant    consts.Variant
	k          uint32
	users      int
	currencies int
	commitment []float64
	inclusion  []float64
}

func groupRows(rows []Row) []*group {
	var out []*group
	index := map[string]*group{}
	for _, r := range rows {
		key := fmt.Sprintf("%s/%d/%d/%d", r.Variant, r.Result.K(), r.Result.Users(), r.Result.Currencies())
		g, ok := index[key]
		if !ok {
			g = &group{variant: r.Variant, k: r.Result.K(), users: r.Result.Users(), currencies: r.Result.Currencies()}
			index[key] = g
			out = append(out, g)
		}
		g.commitment = append(g.commitment, float64(r.Result.CommitmentMillis()))
		g.inclusion = append(g.inclusion, float64(r.Result.InclusionMillis()))
	}
	return out
}

// Markdown writes one row per (variant, k, users, currencies) shape with p50 and
// p95 over all results of that shape.
func Markdown(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		return fmt.Errorf("no results to report")
	}
	fmt.Fprintln(w, "## Proof of Solvency Benchmarks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Variant | k | Users | Currencies | Runs | Commitment p50 | Commitment p95 | Inclusion p50 | Inclusion p95 |")
	fmt.Fprintln(w, "|---------|---|-------|------------|------|----------------|----------------|---------------|---------------|")
	for _, g := range groupRows(rows) {
		c := stat(g.commitment)
		i := stat(g.inclusion)
		fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %s | %s | %s | %s |\n",
			g.variant, g.k, g.users, g.currencies, len(g.commitment),
			formatMs(c.P50), formatMs(c.P95), formatMs(i.P50), formatMs(i.P95),
		)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Times in %s.\n", consts.TimeUnit)
	return nil
}

// CSV writes one line per result file.
func CSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	header := []string{
		"variant",
		"file",
		"k",
		"n_users",
		"n_currencies",
		"commitment_generation_time",
		"inclusion_generation_time",
		"time_unit",
		"seed",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			string(r.Variant),
			r.File,
			strconv.FormatUint(uint64(r.Result.K()), 10),
			strconv.Itoa(r.Result.Users()),
			strconv.Itoa(r.Result.Currencies()),
			strconv.FormatInt(r.Result.CommitmentMillis(), 10),
			strconv.FormatInt(r.Result.InclusionMillis(), 10),
			r.Result.TimeUnit(),
			strconv.FormatUint(r.Result.Seed(), 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func stat(values []float64) percentileStat {
	return percentileStat{P50: percentile(values, 0.50), P95: percentile(values, 0.95)}
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	cp := append([]float64(nil), values...)
	sort.Float64s(cp)
	if p <= 0 {
		return cp[0]
	}
	if p >= 1 {
		return cp[len(cp)-1]
	}
	idx := int(math.Ceil(float64(len(cp))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(cp) {
		idx = len(cp) - 1
	}
	return cp[idx]
}

func formatMs(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	return fmt.Sprintf("%.2fs", ms/1000)
}
