package preprocessing

import (
	"testing"
)

func TestLabelEncoder(t *testing.T) {
	le := NewLabelEncoder()
	codes, err := le.FitTransform([]string{"sun", "rain", "snow", "rain"})
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	// Sorted order: rain=0, snow=1, sun=2.
	want := []int{2, 0, 1, 0}
	for i, w := range want {
		if codes[i] != w {
			t.Errorf("codes[%d] = %d, want %d", i, codes[i], w)
		}
	}

	back, err := le.InverseTransform(codes)
	if err != nil {
		t.Fatalf("InverseTransform() error = %v", err)
	}
	if back[0] != "sun" || back[1] != "rain" {
		t.Errorf("InverseTransform() = %v", back)
	}
}

func TestLabelEncoderUnseen(t *testing.T) {
	le := NewLabelEncoder()
	if err := le.Fit([]string{"a", "b"}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if _, err := le.Transform([]string{"c"}); err == nil {
		t.Error("Transform() with unseen label expected error")
	}
	if _, err := le.InverseTransform([]int{5}); err == nil {
		t.Error("InverseTransform() with out-of-range code expected error")
	}
}

func TestOneHotEncoder(t *testing.T) {
	cols := [][]string{
		{"red", "blue", "red"},
		{"s", "m", "l"},
	}
	oh := NewOneHotEncoder(UnknownError)
	X, err := oh.FitTransform(cols)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	r, c := X.Dims()
	if r != 3 || c != 5 { // {blue,red} + {l,m,s}
		t.Fatalf("dims = (%d, %d), want (3, 5)", r, c)
	}

	// Row 0: red -> col 1 (blue=0, red=1); s -> col 4 (l=2, m=3, s=4).
	wantRow0 := []float64{0, 1, 0, 0, 1}
	for j, w := range wantRow0 {
		if X.At(0, j) != w {
			t.Errorf("[0,%d] = %v, want %v", j, X.At(0, j), w)
		}
	}

	// Each row block is one-hot: every row sums to the number of columns.
	for i := 0; i < r; i++ {
		sum := 0.0
		for j := 0; j < c; j++ {
			sum += X.At(i, j)
		}
		if sum != 2 {
			t.Errorf("row %d sum = %v, want 2", i, sum)
		}
	}
}

func TestOneHotEncoderUnknown(t *testing.T) {
	fit := [][]string{{"a", "b"}}

	t.Run("error policy", func(t *testing.T) {
		oh := NewOneHotEncoder(UnknownError)
		if err := oh.Fit(fit); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		if _, err := oh.Transform([][]string{{"c"}}); err == nil {
			t.Error("Transform() with unseen category expected error")
		}
	})

	t.Run("ignore policy", func(t *testing.T) {
		oh := NewOneHotEncoder(UnknownIgnore)
		if err := oh.Fit(fit); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		X, err := oh.Transform([][]string{{"c"}})
		if err != nil {
			t.Fatalf("Transform() error = %v", err)
		}
		if X.At(0, 0) != 0 || X.At(0, 1) != 0 {
			t.Errorf("unseen category row = [%v %v], want zeros", X.At(0, 0), X.At(0, 1))
		}
	})
}
