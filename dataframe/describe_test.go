package dataframe

import (
	"math"
	"strings"
	"testing"
)

func TestDescribe(t *testing.T) {
	df, err := New(
		Column{Name: "x", Type: Numeric, Floats: []float64{1, 2, 3, 4, 5}},
		Column{Name: "y", Type: Numeric, Floats: []float64{2, 4, math.NaN(), 8, 10}},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s, err := df.Describe()
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}

	if s.Count[0] != 5 || s.Count[1] != 4 {
		t.Errorf("Count = %v, want [5 4]", s.Count)
	}
	if math.Abs(s.Mean[0]-3.0) > 1e-12 {
		t.Errorf("Mean[x] = %v, want 3", s.Mean[0])
	}
	// Sample std of 1..5 is sqrt(2.5).
	if math.Abs(s.Std[0]-math.Sqrt(2.5)) > 1e-12 {
		t.Errorf("Std[x] = %v, want %v", s.Std[0], math.Sqrt(2.5))
	}
	if s.Min[0] != 1 || s.Max[0] != 5 {
		t.Errorf("Min/Max[x] = %v/%v, want 1/5", s.Min[0], s.Max[0])
	}
	if s.Median[0] != 3 {
		t.Errorf("Median[x] = %v, want 3", s.Median[0])
	}
	if s.Q25[0] != 2 || s.Q75[0] != 4 {
		t.Errorf("Quartiles[x] = %v/%v, want 2/4", s.Q25[0], s.Q75[0])
	}
	// NaN entries are excluded: mean of {2,4,8,10} = 6.
	if math.Abs(s.Mean[1]-6.0) > 1e-12 {
		t.Errorf("Mean[y] = %v, want 6", s.Mean[1])
	}
}

func TestPercentileInterpolation(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"median of even count", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"lower quartile interpolated", []float64{1, 2, 3, 4}, 0.25, 1.75},
		{"single value", []float64{7}, 0.75, 7},
		{"p0 is min", []float64{3, 5, 9}, 0, 3},
		{"p1 is max", []float64{3, 5, 9}, 1, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestCorr(t *testing.T) {
	df, err := New(
		Column{Name: "a", Type: Numeric, Floats: []float64{1, 2, 3, 4}},
		Column{Name: "b", Type: Numeric, Floats: []float64{2, 4, 6, 8}},
		Column{Name: "c", Type: Numeric, Floats: []float64{4, 3, 2, 1}},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	corr, names, err := df.Corr()
	if err != nil {
		t.Fatalf("Corr() error = %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("Corr() names = %v", names)
	}
	if got := corr.At(0, 0); got != 1 {
		t.Errorf("Corr()[a,a] = %v, want 1", got)
	}
	if got := corr.At(0, 1); math.Abs(got-1) > 1e-12 {
		t.Errorf("Corr()[a,b] = %v, want 1", got)
	}
	if got := corr.At(0, 2); math.Abs(got+1) > 1e-12 {
		t.Errorf("Corr()[a,c] = %v, want -1", got)
	}
	if got := corr.At(2, 0); got != corr.At(0, 2) {
		t.Errorf("Corr() not symmetric: %v != %v", corr.At(2, 0), corr.At(0, 2))
	}
}

func TestSkew(t *testing.T) {
	df, err := New(
		Column{Name: "sym", Type: Numeric, Floats: []float64{1, 2, 3, 4, 5}},
		Column{Name: "short", Type: Numeric, Floats: []float64{1, 2, math.NaN(), math.NaN(), math.NaN()}},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	skews, err := df.Skew()
	if err != nil {
		t.Fatalf("Skew() error = %v", err)
	}
	if math.Abs(skews["sym"]) > 1e-9 {
		t.Errorf("Skew(symmetric) = %v, want ~0", skews["sym"])
	}
	if !math.IsNaN(skews["short"]) {
		t.Errorf("Skew with <3 observations = %v, want NaN", skews["short"])
	}
}

func TestSummaryString(t *testing.T) {
	df, err := New(Column{Name: "x", Type: Numeric, Floats: []float64{1, 2, 3}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s, err := df.Describe()
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	out := s.String()
	for _, want := range []string{"count", "mean", "std", "25%", "50%", "75%", "max"} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary.String() missing %q:\n%s", want, out)
		}
	}
}
