package visualize

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// pngExists checks that path holds a non-empty file starting with the PNG
// signature.
func pngExists(t *testing.T, path string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	sig := make([]byte, 8)
	if _, err := f.Read(sig); err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	want := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	for i := range want {
		if sig[i] != want[i] {
			t.Fatalf("%s is not a PNG", path)
		}
	}
}

func TestHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.png")
	values := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5}
	if err := Histogram(values, 5, "distribution", path); err != nil {
		t.Fatalf("Histogram() error = %v", err)
	}
	pngExists(t, path)

	if err := Histogram(nil, 5, "x", path); err == nil {
		t.Error("Histogram() with empty data expected error")
	}
	if err := Histogram(values, 0, "x", path); err == nil {
		t.Error("Histogram() with zero bins expected error")
	}
}

func TestScatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scatter.png")
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	labels := []int{0, 0, 1, 1}

	if err := Scatter(x, y, labels, "clusters", "x", "y", path); err != nil {
		t.Fatalf("Scatter() error = %v", err)
	}
	pngExists(t, path)

	if err := Scatter(x, y[:2], nil, "t", "x", "y", path); err == nil {
		t.Error("Scatter() with mismatched lengths expected error")
	}
	if err := Scatter(x, y, labels[:1], "t", "x", "y", path); err == nil {
		t.Error("Scatter() with mismatched labels expected error")
	}
}

func TestBox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.png")
	series := map[string][]float64{
		"temp":     {20, 21, 22, 25, 30},
		"humidity": {40, 50, 55, 60, 90},
	}
	if err := Box(series, "features", path); err != nil {
		t.Fatalf("Box() error = %v", err)
	}
	pngExists(t, path)

	if err := Box(nil, "x", path); err == nil {
		t.Error("Box() with no series expected error")
	}
	if err := Box(map[string][]float64{"empty": {}}, "x", path); err == nil {
		t.Error("Box() with an empty series expected error")
	}
}

func TestCorrelationHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corr.png")
	corr := mat.NewDense(2, 2, []float64{1, -0.5, -0.5, 1})

	if err := CorrelationHeatmap(corr, []string{"a", "b"}, "correlation", path); err != nil {
		t.Fatalf("CorrelationHeatmap() error = %v", err)
	}
	pngExists(t, path)

	if err := CorrelationHeatmap(mat.NewDense(2, 3, nil), []string{"a", "b"}, "x", path); err == nil {
		t.Error("CorrelationHeatmap() with non-square matrix expected error")
	}
	if err := CorrelationHeatmap(corr, []string{"a"}, "x", path); err == nil {
		t.Error("CorrelationHeatmap() with wrong name count expected error")
	}
}

func TestLearningCurve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.png")
	histories := map[string][]float64{
		"sgd":  {1.0, 0.7, 0.5, 0.4},
		"adam": {1.0, 0.4, 0.2, 0.1},
	}
	if err := LearningCurve(histories, "optimizers", path); err != nil {
		t.Fatalf("LearningCurve() error = %v", err)
	}
	pngExists(t, path)

	if err := LearningCurve(map[string][]float64{"x": {}}, "t", path); err == nil {
		t.Error("LearningCurve() with empty run expected error")
	}
}
