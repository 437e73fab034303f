package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRecoverConvertsPanic(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err, "solve")
		panic("singular matrix")
	}

	err := run()
	if err == nil {
		t.Fatal("expected an error after panic")
	}

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PanicError, got %T", err)
	}
	if pe.Operation != "solve" {
		t.Errorf("operation = %q, want %q", pe.Operation, "solve")
	}
	if pe.PanicValue != "singular matrix" {
		t.Errorf("panic value = %v, want %q", pe.PanicValue, "singular matrix")
	}
	if !strings.Contains(err.Error(), "panic in solve") {
		t.Errorf("message %q missing operation context", err.Error())
	}
	if pe.StackTrace == "" {
		t.Error("expected a captured stack trace")
	}
}

func TestRecoverKeepsExistingError(t *testing.T) {
	base := fmt.Errorf("fit failed")
	run := func() (err error) {
		defer Recover(&err, "fit")
		err = base
		panic("index out of range")
	}

	err := run()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, base) {
		t.Error("original error lost when panic was recovered")
	}
	if !strings.Contains(err.Error(), "index out of range") {
		t.Errorf("message %q missing panic value", err.Error())
	}
}

func TestRecoverNoPanic(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err, "predict")
		return nil
	}
	if err := run(); err != nil {
		t.Errorf("expected nil without panic, got %v", err)
	}
}

func TestSafeExecute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		if err := SafeExecute("transform", func() error { return nil }); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("returned error passes through", func(t *testing.T) {
		want := fmt.Errorf("bad input")
		err := SafeExecute("transform", func() error { return want })
		if !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	})

	t.Run("panic becomes PanicError", func(t *testing.T) {
		err := SafeExecute("transform", func() error {
			var xs []float64
			_ = xs[3] // out-of-range access
			return nil
		})
		var pe *PanicError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *PanicError, got %T (%v)", err, err)
		}
		if pe.Operation != "transform" {
			t.Errorf("operation = %q, want %q", pe.Operation, "transform")
		}
	})
}

func TestPanicErrorString(t *testing.T) {
	pe := NewPanicError("score", "boom")
	s := pe.String()
	if !strings.Contains(s, "panic in score: boom") {
		t.Errorf("String() = %q missing header", s)
	}
	if !strings.Contains(s, "Stack trace:") {
		t.Errorf("String() = %q missing stack trace section", s)
	}
	if pe.Unwrap() != nil {
		t.Error("Unwrap should return nil for a bare PanicError")
	}
}
