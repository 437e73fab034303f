package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mizupe/appliedml/dataframe"
	"github.com/mizupe/appliedml/dataset"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/visualize"
)

func newDescribeCmd() *cobra.Command {
	var (
		head     int
		corrPNG  string
		histCol  string
		histPNG  string
		histBins int
	)

	cmd := &cobra.Command{
		Use:   "describe <file.csv>",
		Short: "Print summary statistics of a CSV dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := dataset.LoadCSV(args[0], dataset.DefaultCSVOptions())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%d rows x %d columns\n\n", df.Rows(), df.Cols())
			if head > 0 {
				fmt.Fprintln(out, df.Head(head))
			}

			summary, err := df.Describe()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, summary)

			if corrPNG != "" {
				corr, names, err := df.Corr()
				if err != nil {
					return err
				}
				if err := visualize.CorrelationHeatmap(corr, names, "feature correlation", corrPNG); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", corrPNG)
			}

			if histCol != "" {
				values, err := columnValues(df, histCol)
				if err != nil {
					return err
				}
				if err := visualize.Histogram(values, histBins, histCol, histPNG); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", histPNG)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&head, "head", 5, "number of leading rows to print, 0 to skip")
	cmd.Flags().StringVar(&corrPNG, "corr", "", "write a correlation heatmap PNG to this path")
	cmd.Flags().StringVar(&histCol, "hist", "", "column to histogram")
	cmd.Flags().StringVar(&histPNG, "hist-out", "histogram.png", "histogram output path")
	cmd.Flags().IntVar(&histBins, "bins", 10, "histogram bin count")
	return cmd
}

func columnValues(df *dataframe.DataFrame, name string) ([]float64, error) {
	col, err := df.Column(name)
	if err != nil {
		return nil, err
	}
	if col.Type != dataframe.Numeric {
		return nil, errors.NewValueError("describe", "column "+name+" is not numeric")
	}
	values := make([]float64, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		if !col.IsNA(i) {
			values = append(values, col.Floats[i])
		}
	}
	return values, nil
}
