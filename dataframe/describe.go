package dataframe

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mizupe/appliedml/pkg/errors"
)

// Summary holds per-column descriptive statistics in the shape of pandas
// DataFrame.describe(): count of non-missing values, mean, sample standard
// deviation, minimum, quartiles and maximum.
type Summary struct {
	Columns []string
	Count   []int
	Mean    []float64
	Std     []float64
	Min     []float64
	Q25     []float64
	Median  []float64
	Q75     []float64
	Max     []float64
}

// Describe computes descriptive statistics for every numeric column,
// skipping missing values. Columns with no observations report NaN for every
// statistic except count.
func (df *DataFrame) Describe() (*Summary, error) {
	names := df.NumericColumns()
	if len(names) == 0 {
		return nil, errors.NewModelError("DataFrame.Describe", "no numeric columns", errors.ErrEmptyData)
	}
	s := &Summary{
		Columns: names,
		Count:   make([]int, len(names)),
		Mean:    make([]float64, len(names)),
		Std:     make([]float64, len(names)),
		Min:     make([]float64, len(names)),
		Q25:     make([]float64, len(names)),
		Median:  make([]float64, len(names)),
		Q75:     make([]float64, len(names)),
		Max:     make([]float64, len(names)),
	}
	for j, name := range names {
		c, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		vals := dropNaN(c.Floats)
		s.Count[j] = len(vals)
		if len(vals) == 0 {
			nan := math.NaN()
			s.Mean[j], s.Std[j], s.Min[j], s.Q25[j], s.Median[j], s.Q75[j], s.Max[j] = nan, nan, nan, nan, nan, nan, nan
			continue
		}
		sort.Float64s(vals)
		s.Mean[j] = stat.Mean(vals, nil)
		s.Std[j] = stat.StdDev(vals, nil)
		s.Min[j] = vals[0]
		s.Max[j] = vals[len(vals)-1]
		s.Q25[j] = Percentile(vals, 0.25)
		s.Median[j] = Percentile(vals, 0.50)
		s.Q75[j] = Percentile(vals, 0.75)
	}
	return s, nil
}

// Percentile returns the p-quantile (0 <= p <= 1) of sorted values using
// linear interpolation between order statistics, matching the default of
// pandas and numpy.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Corr computes the Pearson correlation matrix over the numeric columns,
// using only rows where both columns are observed. Returns the matrix and
// the column order.
func (df *DataFrame) Corr() (*mat.Dense, []string, error) {
	names := df.NumericColumns()
	if len(names) == 0 {
		return nil, nil, errors.NewModelError("DataFrame.Corr", "no numeric columns", errors.ErrEmptyData)
	}
	p := len(names)
	out := mat.NewDense(p, p, nil)
	cols := make([][]float64, p)
	for j, name := range names {
		c, _ := df.Column(name)
		cols[j] = c.Floats
	}
	for a := 0; a < p; a++ {
		out.Set(a, a, 1.0)
		for b := a + 1; b < p; b++ {
			var xs, ys []float64
			for i := range cols[a] {
				if math.IsNaN(cols[a][i]) || math.IsNaN(cols[b][i]) {
					continue
				}
				xs = append(xs, cols[a][i])
				ys = append(ys, cols[b][i])
			}
			r := math.NaN()
			if len(xs) > 1 {
				r = stat.Correlation(xs, ys, nil)
			}
			out.Set(a, b, r)
			out.Set(b, a, r)
		}
	}
	return out, names, nil
}

// Skew computes the adjusted Fisher-Pearson skewness of each numeric column,
// skipping missing values.
func (df *DataFrame) Skew() (map[string]float64, error) {
	names := df.NumericColumns()
	if len(names) == 0 {
		return nil, errors.NewModelError("DataFrame.Skew", "no numeric columns", errors.ErrEmptyData)
	}
	out := make(map[string]float64, len(names))
	for _, name := range names {
		c, _ := df.Column(name)
		vals := dropNaN(c.Floats)
		if len(vals) < 3 {
			out[name] = math.NaN()
			continue
		}
		out[name] = stat.Skew(vals, nil)
	}
	return out, nil
}

// String renders the summary as an aligned table, statistics as rows and
// columns as columns, in the pandas describe layout.
func (s *Summary) String() string {
	rows := []struct {
		label string
		vals  func(j int) string
	}{
		{"count", func(j int) string { return fmt.Sprintf("%d", s.Count[j]) }},
		{"mean", func(j int) string { return fmtStat(s.Mean[j]) }},
		{"std", func(j int) string { return fmtStat(s.Std[j]) }},
		{"min", func(j int) string { return fmtStat(s.Min[j]) }},
		{"25%", func(j int) string { return fmtStat(s.Q25[j]) }},
		{"50%", func(j int) string { return fmtStat(s.Median[j]) }},
		{"75%", func(j int) string { return fmtStat(s.Q75[j]) }},
		{"max", func(j int) string { return fmtStat(s.Max[j]) }},
	}

	widths := make([]int, len(s.Columns))
	for j, name := range s.Columns {
		widths[j] = len(name)
		for _, row := range rows {
			if l := len(row.vals(j)); l > widths[j] {
				widths[j] = l
			}
		}
	}

	var b strings.Builder
	b.WriteString("     ")
	for j, name := range s.Columns {
		fmt.Fprintf(&b, "  %*s", widths[j], name)
	}
	b.WriteByte('\n')
	for _, row := range rows {
		fmt.Fprintf(&b, "%-5s", row.label)
		for j := range s.Columns {
			fmt.Fprintf(&b, "  %*s", widths[j], row.vals(j))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func fmtStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.6g", v)
}

func dropNaN(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
