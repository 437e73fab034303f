// Package dataframe provides a small column-oriented table for tabular
// datasets: named numeric and categorical columns, selection, derived
// features, and descriptive statistics. It is the loading target of the
// dataset package and the feeding side of preprocessing and pipelines.
package dataframe

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/pkg/errors"
)

// ColumnType distinguishes numeric from categorical columns.
type ColumnType int

const (
	// Numeric columns hold float64 values with NaN marking missing entries.
	Numeric ColumnType = iota
	// Categorical columns hold raw string values.
	Categorical
)

func (t ColumnType) String() string {
	if t == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Column is a single named column. Exactly one of Floats and Strings is
// populated, according to Type.
type Column struct {
	Name    string
	Type    ColumnType
	Floats  []float64
	Strings []string
}

// Len returns the number of entries in the column.
func (c *Column) Len() int {
	if c.Type == Numeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// IsNA reports whether the entry at i is missing.
func (c *Column) IsNA(i int) bool {
	if c.Type == Numeric {
		return math.IsNaN(c.Floats[i])
	}
	return c.Strings[i] == ""
}

// DataFrame is an ordered collection of equally sized columns.
type DataFrame struct {
	cols  []Column
	index map[string]int
}

// New builds a DataFrame from columns. All columns must have the same length
// and unique names.
func New(cols ...Column) (*DataFrame, error) {
	if len(cols) == 0 {
		return nil, errors.NewModelError("dataframe.New", "no columns", errors.ErrEmptyData)
	}
	n := cols[0].Len()
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if c.Len() != n {
			return nil, errors.NewDimensionError("dataframe.New", n, c.Len(), 0)
		}
		if _, dup := index[c.Name]; dup {
			return nil, errors.NewValueError("dataframe.New", fmt.Sprintf("duplicate column name %q", c.Name))
		}
		index[c.Name] = i
	}
	return &DataFrame{cols: cols, index: index}, nil
}

// FromMatrix wraps a matrix as a DataFrame of numeric columns. names must
// match the matrix column count.
func FromMatrix(X mat.Matrix, names []string) (*DataFrame, error) {
	r, c := X.Dims()
	if len(names) != c {
		return nil, errors.NewDimensionError("dataframe.FromMatrix", c, len(names), 1)
	}
	cols := make([]Column, c)
	for j := 0; j < c; j++ {
		vals := make([]float64, r)
		for i := 0; i < r; i++ {
			vals[i] = X.At(i, j)
		}
		cols[j] = Column{Name: names[j], Type: Numeric, Floats: vals}
	}
	return New(cols...)
}

// Rows returns the number of rows.
func (df *DataFrame) Rows() int {
	if len(df.cols) == 0 {
		return 0
	}
	return df.cols[0].Len()
}

// Cols returns the number of columns.
func (df *DataFrame) Cols() int { return len(df.cols) }

// Names returns the column names in order.
func (df *DataFrame) Names() []string {
	names := make([]string, len(df.cols))
	for i, c := range df.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (df *DataFrame) Column(name string) (*Column, error) {
	i, ok := df.index[name]
	if !ok {
		return nil, errors.NewValueError("DataFrame.Column", fmt.Sprintf("no column named %q", name))
	}
	return &df.cols[i], nil
}

// NumericColumns returns the names of all numeric columns in order.
func (df *DataFrame) NumericColumns() []string {
	var names []string
	for _, c := range df.cols {
		if c.Type == Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// CategoricalColumns returns the names of all categorical columns in order.
func (df *DataFrame) CategoricalColumns() []string {
	var names []string
	for _, c := range df.cols {
		if c.Type == Categorical {
			names = append(names, c.Name)
		}
	}
	return names
}

// Select returns a new DataFrame containing only the named columns, sharing
// the underlying column data.
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		c, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, *c)
	}
	return New(cols...)
}

// Drop returns a new DataFrame without the named columns.
func (df *DataFrame) Drop(names ...string) (*DataFrame, error) {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := df.index[name]; !ok {
			return nil, errors.NewValueError("DataFrame.Drop", fmt.Sprintf("no column named %q", name))
		}
		drop[name] = true
	}
	var cols []Column
	for _, c := range df.cols {
		if !drop[c.Name] {
			cols = append(cols, c)
		}
	}
	return New(cols...)
}

// Matrix assembles the named numeric columns into a dense matrix. With no
// names given, all numeric columns are used in order.
func (df *DataFrame) Matrix(names ...string) (*mat.Dense, error) {
	if len(names) == 0 {
		names = df.NumericColumns()
	}
	if len(names) == 0 {
		return nil, errors.NewModelError("DataFrame.Matrix", "no numeric columns", errors.ErrEmptyData)
	}
	r := df.Rows()
	out := mat.NewDense(r, len(names), nil)
	for j, name := range names {
		c, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		if c.Type != Numeric {
			return nil, errors.NewValueError("DataFrame.Matrix", fmt.Sprintf("column %q is categorical", name))
		}
		for i := 0; i < r; i++ {
			out.Set(i, j, c.Floats[i])
		}
	}
	return out, nil
}

// Vector returns a numeric column as an n x 1 matrix, the y shape expected
// by estimators.
func (df *DataFrame) Vector(name string) (*mat.Dense, error) {
	c, err := df.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Type != Numeric {
		return nil, errors.NewValueError("DataFrame.Vector", fmt.Sprintf("column %q is categorical", name))
	}
	out := mat.NewDense(len(c.Floats), 1, nil)
	for i, v := range c.Floats {
		out.Set(i, 0, v)
	}
	return out, nil
}

// WithColumn returns a new DataFrame with the column appended, or replaced if
// a column with that name already exists.
func (df *DataFrame) WithColumn(c Column) (*DataFrame, error) {
	if c.Len() != df.Rows() {
		return nil, errors.NewDimensionError("DataFrame.WithColumn", df.Rows(), c.Len(), 0)
	}
	cols := make([]Column, len(df.cols))
	copy(cols, df.cols)
	if i, ok := df.index[c.Name]; ok {
		cols[i] = c
		return New(cols...)
	}
	return New(append(cols, c)...)
}

// Apply derives a new numeric column row-by-row from existing numeric
// columns. The fn receives the row values of the input columns in order.
func (df *DataFrame) Apply(newName string, fn func(vals []float64) float64, inputs ...string) (*DataFrame, error) {
	X, err := df.Matrix(inputs...)
	if err != nil {
		return nil, err
	}
	r, c := X.Dims()
	out := make([]float64, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		out[i] = fn(row)
	}
	return df.WithColumn(Column{Name: newName, Type: Numeric, Floats: out})
}

// MapCategorical converts a categorical column into a numeric one using the
// given label mapping. Values missing from the mapping become NaN and a
// DataConversionWarning is raised.
func (df *DataFrame) MapCategorical(name, newName string, mapping map[string]float64) (*DataFrame, error) {
	c, err := df.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Type != Categorical {
		return nil, errors.NewValueError("DataFrame.MapCategorical", fmt.Sprintf("column %q is not categorical", name))
	}
	vals := make([]float64, len(c.Strings))
	unmapped := 0
	for i, s := range c.Strings {
		v, ok := mapping[strings.ToLower(strings.TrimSpace(s))]
		if !ok {
			vals[i] = math.NaN()
			unmapped++
			continue
		}
		vals[i] = v
	}
	if unmapped > 0 {
		errors.Warn(errors.NewDataConversionWarning("string", "float64",
			fmt.Sprintf("%d values of %q missing from mapping became NaN", unmapped, name)))
	}
	return df.WithColumn(Column{Name: newName, Type: Numeric, Floats: vals})
}

// DropNA returns a new DataFrame with every row containing a missing value
// removed.
func (df *DataFrame) DropNA() (*DataFrame, error) {
	r := df.Rows()
	keep := make([]int, 0, r)
	for i := 0; i < r; i++ {
		ok := true
		for ci := range df.cols {
			if df.cols[ci].IsNA(i) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}
	cols := make([]Column, len(df.cols))
	for ci, c := range df.cols {
		nc := Column{Name: c.Name, Type: c.Type}
		if c.Type == Numeric {
			nc.Floats = make([]float64, len(keep))
			for i, ri := range keep {
				nc.Floats[i] = c.Floats[ri]
			}
		} else {
			nc.Strings = make([]string, len(keep))
			for i, ri := range keep {
				nc.Strings[i] = c.Strings[ri]
			}
		}
		cols[ci] = nc
	}
	return New(cols...)
}

// ValueCounts returns the distinct values of a column and their counts,
// sorted by descending count, ties broken by value. Numeric columns are
// formatted with %g.
func (df *DataFrame) ValueCounts(name string) ([]string, []int, error) {
	c, err := df.Column(name)
	if err != nil {
		return nil, nil, err
	}
	counts := map[string]int{}
	n := c.Len()
	for i := 0; i < n; i++ {
		if c.IsNA(i) {
			continue
		}
		var key string
		if c.Type == Numeric {
			key = fmt.Sprintf("%g", c.Floats[i])
		} else {
			key = c.Strings[i]
		}
		counts[key]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	vals := make([]int, len(keys))
	for i, k := range keys {
		vals[i] = counts[k]
	}
	return keys, vals, nil
}

// GroupMean returns, for each distinct value of the by column, the mean of
// the target numeric column. Groups are sorted by key.
func (df *DataFrame) GroupMean(by, target string) ([]string, []float64, error) {
	bc, err := df.Column(by)
	if err != nil {
		return nil, nil, err
	}
	tc, err := df.Column(target)
	if err != nil {
		return nil, nil, err
	}
	if tc.Type != Numeric {
		return nil, nil, errors.NewValueError("DataFrame.GroupMean", fmt.Sprintf("target %q is not numeric", target))
	}
	sums := map[string]float64{}
	counts := map[string]int{}
	for i := 0; i < df.Rows(); i++ {
		if bc.IsNA(i) || tc.IsNA(i) {
			continue
		}
		var key string
		if bc.Type == Numeric {
			key = fmt.Sprintf("%g", bc.Floats[i])
		} else {
			key = bc.Strings[i]
		}
		sums[key] += tc.Floats[i]
		counts[key]++
	}
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	means := make([]float64, len(keys))
	for i, k := range keys {
		means[i] = sums[k] / float64(counts[k])
	}
	return keys, means, nil
}

// Head renders the first n rows as an aligned text table.
func (df *DataFrame) Head(n int) string {
	if n > df.Rows() {
		n = df.Rows()
	}
	widths := make([]int, len(df.cols))
	cells := make([][]string, n+1)
	cells[0] = df.Names()
	for j, name := range cells[0] {
		widths[j] = len(name)
	}
	for i := 0; i < n; i++ {
		row := make([]string, len(df.cols))
		for j := range df.cols {
			c := &df.cols[j]
			if c.Type == Numeric {
				if math.IsNaN(c.Floats[i]) {
					row[j] = "NaN"
				} else {
					row[j] = fmt.Sprintf("%g", c.Floats[i])
				}
			} else {
				row[j] = c.Strings[i]
			}
			if len(row[j]) > widths[j] {
				widths[j] = len(row[j])
			}
		}
		cells[i+1] = row
	}
	var b strings.Builder
	for _, row := range cells {
		for j, cell := range row {
			if j > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%*s", widths[j], cell)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
