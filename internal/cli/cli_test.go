package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDescribeCommand(t *testing.T) {
	csv := writeFile(t, "data.csv", "a,b\n1,10\n2,20\n3,30\n4,40\n")
	out, err := runCmd(t, "describe", csv)
	require.NoError(t, err)
	assert.Contains(t, out, "4 rows x 2 columns")
	assert.Contains(t, out, "mean")
	assert.Contains(t, out, "std")
}

func TestDescribeWithPlots(t *testing.T) {
	csv := writeFile(t, "data.csv", "a,b\n1,10\n2,25\n3,28\n4,41\n5,52\n")
	dir := t.TempDir()
	corr := filepath.Join(dir, "corr.png")
	hist := filepath.Join(dir, "hist.png")

	_, err := runCmd(t, "describe", csv, "--corr", corr, "--hist", "a", "--hist-out", hist, "--bins", "3")
	require.NoError(t, err)
	assert.FileExists(t, corr)
	assert.FileExists(t, hist)
}

func TestScaleCommand(t *testing.T) {
	csv := writeFile(t, "data.csv", "x\n0\n5\n10\n")
	out, err := runCmd(t, "scale", csv, "--method", "minmax")
	require.NoError(t, err)
	assert.Contains(t, out, "x")
	assert.Contains(t, out, "0.5")
}

func TestScaleUnknownMethod(t *testing.T) {
	csv := writeFile(t, "data.csv", "x\n1\n2\n")
	_, err := runCmd(t, "scale", csv, "--method", "bogus")
	assert.Error(t, err)
}

func TestTrainCommand(t *testing.T) {
	// Two separable classes, enough samples for a stratified split.
	var b bytes.Buffer
	b.WriteString("f1,f2,class\n")
	for i := 0; i < 10; i++ {
		b.WriteString("0.1,0.2,0\n")
		b.WriteString("5.1,5.2,1\n")
	}
	csv := writeFile(t, "train.csv", b.String())

	out, err := runCmd(t, "train", csv, "--model", "tree", "--target", "class")
	require.NoError(t, err)
	assert.Contains(t, out, "accuracy:")
	assert.Contains(t, out, "macro avg")
}

func TestTrainUnknownModel(t *testing.T) {
	csv := writeFile(t, "train.csv", "f1,class\n1,0\n2,1\n3,0\n4,1\n")
	_, err := runCmd(t, "train", csv, "--model", "nope")
	assert.Error(t, err)
}

func TestTfidfCommand(t *testing.T) {
	docs := writeFile(t, "docs.txt", "the cat sat\nthe dog ran fast\n")
	out, err := runCmd(t, "tfidf", docs, "--top", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "2 documents")
	assert.Contains(t, out, "doc 0:")
	assert.Contains(t, out, "doc 1:")
}

func TestTfidfBuiltinCorpus(t *testing.T) {
	out, err := runCmd(t, "tfidf", "--top", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "8 documents")
	assert.Contains(t, out, "doc 7:")
}

func TestTfidfEmptyFile(t *testing.T) {
	docs := writeFile(t, "docs.txt", "")
	_, err := runCmd(t, "tfidf", docs)
	assert.Error(t, err)
}

func TestFetchUnknownDataset(t *testing.T) {
	_, err := runCmd(t, "fetch", "bogus")
	assert.Error(t, err)
}
