package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/dataset"
	"github.com/mizupe/appliedml/ensemble"
	"github.com/mizupe/appliedml/linear_model"
	"github.com/mizupe/appliedml/metrics"
	"github.com/mizupe/appliedml/model_selection"
	"github.com/mizupe/appliedml/neighbors"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pipeline"
	"github.com/mizupe/appliedml/preprocessing"
	"github.com/mizupe/appliedml/tree"
)

func newTrainCmd() *cobra.Command {
	var (
		modelName string
		target    string
		testSize  float64
		impute    bool
	)

	cmd := &cobra.Command{
		Use:   "train <file.csv>",
		Short: "Train a classifier on a CSV dataset and report test metrics",
		Long: `Train splits the dataset, fits a preprocessing pipeline (optional median
imputation, then standardization) together with the chosen classifier on the
training portion only, and reports accuracy and a per-class report on the
held-out test portion. Models: logreg, forest, tree, knn.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := dataset.LoadCSV(args[0], dataset.DefaultCSVOptions())
			if err != nil {
				return err
			}

			y, err := df.Vector(target)
			if err != nil {
				return err
			}
			features, err := df.Drop(target)
			if err != nil {
				return err
			}
			X, err := features.Matrix(features.NumericColumns()...)
			if err != nil {
				return err
			}

			XTrain, XTest, yTrain, yTest, err := model_selection.TrainTestSplit(X, y, model_selection.SplitOptions{
				TestSize: testSize,
				Seed:     cfg.Seed,
				Stratify: true,
			})
			if err != nil {
				return err
			}

			clf, err := buildClassifier(modelName, cfg.Seed)
			if err != nil {
				return err
			}

			steps := []pipeline.Step{}
			if impute {
				steps = append(steps, pipeline.Step{Name: "imputer", Transformer: preprocessing.NewSimpleImputer(preprocessing.ImputeMedian)})
			}
			steps = append(steps, pipeline.Step{Name: "scaler", Transformer: preprocessing.NewStandardScalerDefault()})

			pipe, err := pipeline.NewWithEstimator("classifier", clf, steps...)
			if err != nil {
				return err
			}
			if err := pipe.Fit(XTrain, yTrain); err != nil {
				return err
			}

			yPred, err := pipe.Predict(XTest)
			if err != nil {
				return err
			}
			acc, err := metrics.Accuracy(yTest, yPred)
			if err != nil {
				return err
			}
			report, err := metrics.ClassificationReport(yTest, yPred)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model:     %s\n", modelName)
			fmt.Fprintf(out, "train:     %d samples\n", rows(XTrain))
			fmt.Fprintf(out, "test:      %d samples\n", rows(XTest))
			fmt.Fprintf(out, "accuracy:  %.4f\n\n", acc)
			fmt.Fprintln(out, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "logreg", "classifier: logreg, forest, tree or knn")
	cmd.Flags().StringVar(&target, "target", "class", "name of the target column")
	cmd.Flags().Float64Var(&testSize, "test-size", 0.2, "held-out fraction")
	cmd.Flags().BoolVar(&impute, "impute", false, "median-impute missing values before scaling")
	return cmd
}

func buildClassifier(name string, seed int64) (model.Estimator, error) {
	switch name {
	case "logreg":
		return linear_model.NewLogisticRegression(linear_model.WithMaxIter(2000)), nil
	case "forest":
		return ensemble.NewRandomForestClassifier(ensemble.WithNEstimators(100), ensemble.WithSeed(seed)), nil
	case "tree":
		return tree.NewDecisionTreeClassifier(tree.WithMaxDepth(8), tree.WithSeed(seed)), nil
	case "knn":
		return neighbors.NewKNeighborsClassifier(neighbors.WithK(5)), nil
	default:
		return nil, errors.NewValueError("train", fmt.Sprintf("unknown model %q", name))
	}
}

func rows(m mat.Matrix) int {
	r, _ := m.Dims()
	return r
}
