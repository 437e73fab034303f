// Package appliedml is a toolkit for applied machine learning in Go: dataset
// loading and exploration, preprocessing, leakage-free pipelines, classical
// classifiers and small feed-forward neural networks.
//
// The API follows scikit-learn conventions: estimators are configured by
// constructors, trained with Fit, and refuse to predict before fitting.
//
// # Packages
//
//   - dataframe: labeled columnar data with summary statistics
//   - dataset: CSV and IDX loading, dataset downloads with caching
//   - preprocessing: scalers, encoders, imputers, normalizers
//   - pipeline: chained transformers with a final estimator
//   - model_selection: train/test splits and cross-validation
//   - metrics: regression and classification metrics
//   - linear_model, neighbors, tree, ensemble: classical models
//   - neural: dense networks with pluggable losses and optimizers
//   - text: bag-of-words and TF-IDF features
//   - visualize: PNG plots of data and training runs
//
// # Example
//
//	df, err := dataset.LoadPimaFile("pima.csv")
//	if err != nil {
//		log.Fatal(err)
//	}
//	X, _ := df.Matrix("glucose", "bmi", "age")
//	y, _ := df.Vector("class")
//
//	XTrain, XTest, yTrain, yTest, _ := model_selection.TrainTestSplit(X, y,
//		model_selection.SplitOptions{TestSize: 0.2, Seed: 42})
//
//	pipe, _ := pipeline.NewWithEstimator("clf",
//		linear_model.NewLogisticRegression(),
//		pipeline.Step{Name: "scale", Transformer: preprocessing.NewStandardScalerDefault()})
//	_ = pipe.Fit(XTrain, yTrain)
//	acc, _ := pipe.Score(XTest, yTest)
package appliedml
