package model

import (
	"encoding/gob"
	"os"

	"github.com/mizupe/appliedml/pkg/errors"
)

// SaveModel serializes an estimator to a file with encoding/gob. The
// estimator's exported fields (learned parameters, hyperparameters) are
// written; unexported fields such as the fitted flag must be restored by the
// caller's Load implementation.
func SaveModel(m interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create model file %s", filename)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}

	return nil
}

// LoadModel deserializes an estimator previously written by SaveModel into m,
// which must be a pointer to the same concrete type.
func LoadModel(m interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open model file %s", filename)
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(m); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}

	return nil
}
