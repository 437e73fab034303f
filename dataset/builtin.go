package dataset

import (
	"context"

	"github.com/mizupe/appliedml/dataframe"
	"github.com/mizupe/appliedml/pkg/errors"
)

// Public mirrors of the course datasets.
const (
	PimaURL = "https://raw.githubusercontent.com/jbrownlee/Datasets/master/pima-indians-diabetes.data.csv"

	AdultURL = "https://archive.ics.uci.edu/ml/machine-learning-databases/adult/adult.data"

	fashionMNISTBase = "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/"
)

// pimaColumns are the attribute names of the Pima Indians diabetes dataset;
// the distributed CSV has no header row.
var pimaColumns = []string{
	"preg", "plas", "pres", "skin", "test", "mass", "pedi", "age", "class",
}

// adultColumns are the attribute names of the UCI Adult income dataset.
var adultColumns = []string{
	"age", "workclass", "fnlwgt", "education", "education-num",
	"marital-status", "occupation", "relationship", "race", "sex",
	"capital-gain", "capital-loss", "hours-per-week", "native-country",
	"income",
}

// LoadPima downloads (or reuses from cacheDir) the Pima Indians diabetes
// dataset and loads it with its canonical column names. All nine columns are
// numeric; "class" is the 0/1 diabetes outcome.
func LoadPima(ctx context.Context, cacheDir string) (*dataframe.DataFrame, error) {
	path, err := Fetch(ctx, PimaURL, cacheDir)
	if err != nil {
		return nil, err
	}
	return LoadPimaFile(path)
}

// LoadPimaFile loads a local copy of the Pima CSV.
func LoadPimaFile(path string) (*dataframe.DataFrame, error) {
	opts := DefaultCSVOptions()
	opts.HasHeader = false
	df, err := LoadCSV(path, opts)
	if err != nil {
		return nil, err
	}
	if df.Cols() != len(pimaColumns) {
		return nil, errors.NewDimensionError("dataset.LoadPimaFile", len(pimaColumns), df.Cols(), 1)
	}
	return renameColumns(df, pimaColumns)
}

// LoadAdult downloads (or reuses from cacheDir) the UCI Adult income dataset.
// Missing values are marked "?" in the source and surface as NA.
func LoadAdult(ctx context.Context, cacheDir string) (*dataframe.DataFrame, error) {
	path, err := Fetch(ctx, AdultURL, cacheDir)
	if err != nil {
		return nil, err
	}
	return LoadAdultFile(path)
}

// LoadAdultFile loads a local copy of the Adult income data file.
func LoadAdultFile(path string) (*dataframe.DataFrame, error) {
	opts := DefaultCSVOptions()
	opts.HasHeader = false
	df, err := LoadCSV(path, opts)
	if err != nil {
		return nil, err
	}
	if df.Cols() != len(adultColumns) {
		return nil, errors.NewDimensionError("dataset.LoadAdultFile", len(adultColumns), df.Cols(), 1)
	}
	return renameColumns(df, adultColumns)
}

// FashionMNISTSpecs returns the download specs of the four Fashion-MNIST
// files (train/test images and labels).
func FashionMNISTSpecs() []FetchSpec {
	files := []string{
		"train-images-idx3-ubyte.gz",
		"train-labels-idx1-ubyte.gz",
		"t10k-images-idx3-ubyte.gz",
		"t10k-labels-idx1-ubyte.gz",
	}
	specs := make([]FetchSpec, len(files))
	for i, f := range files {
		specs[i] = FetchSpec{URL: fashionMNISTBase + f, Filename: f}
	}
	return specs
}

// LoadFashionMNIST downloads (or reuses from cacheDir) Fashion-MNIST and
// returns the train and test sets with labels attached.
func LoadFashionMNIST(ctx context.Context, cacheDir string) (train, test *ImageSet, err error) {
	paths, err := FetchAll(ctx, FashionMNISTSpecs(), cacheDir)
	if err != nil {
		return nil, nil, err
	}
	train, err = LoadImageSet(paths[0], paths[1])
	if err != nil {
		return nil, nil, err
	}
	test, err = LoadImageSet(paths[2], paths[3])
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// FashionMNISTClasses are the label names, index equals the class id.
var FashionMNISTClasses = []string{
	"T-shirt/top", "Trouser", "Pullover", "Dress", "Coat",
	"Sandal", "Shirt", "Sneaker", "Bag", "Ankle boot",
}

func renameColumns(df *dataframe.DataFrame, names []string) (*dataframe.DataFrame, error) {
	cols := make([]dataframe.Column, 0, len(names))
	for i, old := range df.Names() {
		c, err := df.Column(old)
		if err != nil {
			return nil, err
		}
		nc := *c
		nc.Name = names[i]
		cols = append(cols, nc)
	}
	return dataframe.New(cols...)
}
