package cli

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/dataset"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/preprocessing"
)

func newScaleCmd() *cobra.Command {
	var (
		method string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "scale <file.csv>",
		Short: "Scale the numeric columns of a CSV dataset",
		Long: `Scale fits a scaler on the numeric columns of the input and writes the
transformed values as CSV. Methods: standard (zero mean, unit variance),
minmax (range [0, 1]), robust (median and IQR).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := dataset.LoadCSV(args[0], dataset.DefaultCSVOptions())
			if err != nil {
				return err
			}
			names := df.NumericColumns()
			if len(names) == 0 {
				return errors.NewValueError("scale", "no numeric columns in input")
			}
			X, err := df.Matrix(names...)
			if err != nil {
				return err
			}

			var scaler model.Transformer
			switch method {
			case "standard":
				scaler = preprocessing.NewStandardScalerDefault()
			case "minmax":
				scaler = preprocessing.NewMinMaxScalerDefault()
			case "robust":
				scaler = preprocessing.NewRobustScaler()
			default:
				return errors.NewValueError("scale", fmt.Sprintf("unknown method %q", method))
			}

			scaled, err := scaler.FitTransform(X)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return errors.Wrapf(err, "scale: create %s", out)
				}
				defer f.Close()
				w = f
			}
			return writeCSV(w, scaled, names)
		},
	}

	cmd.Flags().StringVar(&method, "method", "standard", "scaling method: standard, minmax or robust")
	cmd.Flags().StringVar(&out, "out", "", "output path, default stdout")
	return cmd
}

func writeCSV(w interface{ Write(p []byte) (int, error) }, X mat.Matrix, header []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "scale: write header")
	}

	r, c := X.Dims()
	record := make([]string, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			record[j] = strconv.FormatFloat(X.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "scale: write row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "scale: flush")
}
