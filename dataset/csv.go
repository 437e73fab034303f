// Package dataset loads the datasets used throughout the library: CSV tables
// into dataframes, IDX-encoded image sets, and cached HTTP downloads of the
// public course datasets (Pima diabetes, UCI Adult income, Fashion-MNIST).
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mizupe/appliedml/dataframe"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pkg/log"
)

// CSVOptions controls CSV parsing.
type CSVOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// HasHeader indicates the first row holds column names. Without a
	// header, columns are named col0, col1, ...
	HasHeader bool
	// NAValues are tokens treated as missing. Defaults to
	// "", "NA", "NaN", "nan", "?" (the Adult income marker).
	NAValues []string
}

// DefaultCSVOptions returns the options used by the course datasets.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Comma:     ',',
		HasHeader: true,
		NAValues:  []string{"", "NA", "NaN", "nan", "?"},
	}
}

// LoadCSV reads a CSV file into a DataFrame. A column becomes numeric when
// every non-missing value parses as a float; otherwise it stays categorical.
// Missing tokens become NaN in numeric columns and "" in categorical ones.
// Ragged rows are an error.
func LoadCSV(path string, opts CSVOptions) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	df, err := ReadCSV(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	lg := log.With("dataset")

	lg.Debug().
		Str("path", path).
		Int(log.SamplesKey, df.Rows()).
		Int(log.FeaturesKey, df.Cols()).
		Msg("loaded CSV")
	return df, nil
}

// ReadCSV parses CSV content from a reader. See LoadCSV.
func ReadCSV(r io.Reader, opts CSVOptions) (*dataframe.DataFrame, error) {
	if opts.Comma == 0 {
		opts.Comma = ','
	}
	if opts.NAValues == nil {
		opts.NAValues = DefaultCSVOptions().NAValues
	}
	na := make(map[string]bool, len(opts.NAValues))
	for _, v := range opts.NAValues {
		na[v] = true
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Comma
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "csv read failed")
	}
	if len(records) == 0 {
		return nil, errors.NewModelError("dataset.ReadCSV", "empty file", errors.ErrEmptyData)
	}

	var header []string
	rows := records
	if opts.HasHeader {
		header = records[0]
		rows = records[1:]
	} else {
		header = make([]string, len(records[0]))
		for j := range header {
			header[j] = fmt.Sprintf("col%d", j)
		}
	}
	if len(rows) == 0 {
		return nil, errors.NewModelError("dataset.ReadCSV", "no data rows", errors.ErrEmptyData)
	}

	nCols := len(header)
	raw := make([][]string, nCols)
	for j := range raw {
		raw[j] = make([]string, len(rows))
	}
	for i, rec := range rows {
		if len(rec) != nCols {
			return nil, errors.NewDimensionError("dataset.ReadCSV", nCols, len(rec), 1)
		}
		for j, v := range rec {
			raw[j][i] = strings.TrimSpace(v)
		}
	}

	cols := make([]dataframe.Column, nCols)
	for j := range cols {
		cols[j] = buildColumn(strings.TrimSpace(header[j]), raw[j], na)
	}
	return dataframe.New(cols...)
}

// buildColumn decides numeric vs categorical: numeric requires every observed
// value to parse, and at least one observed value.
func buildColumn(name string, vals []string, na map[string]bool) dataframe.Column {
	floats := make([]float64, len(vals))
	numeric := true
	observed := 0
	for i, v := range vals {
		if na[v] {
			floats[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			numeric = false
			break
		}
		floats[i] = f
		observed++
	}
	if numeric && observed > 0 {
		return dataframe.Column{Name: name, Type: dataframe.Numeric, Floats: floats}
	}
	strs := make([]string, len(vals))
	for i, v := range vals {
		if na[v] {
			strs[i] = ""
			continue
		}
		strs[i] = v
	}
	return dataframe.Column{Name: name, Type: dataframe.Categorical, Strings: strs}
}
