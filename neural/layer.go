package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer computing a = act(X*W + b).
type Dense struct {
	In         int
	Out        int
	Activation Activation
	Reg        Regularizer

	W *mat.Dense // In x Out
	B *mat.Dense // 1 x Out

	// forward-pass caches used by Backward
	x *mat.Dense
	z *mat.Dense
	a *mat.Dense
}

// NewDense creates a dense layer. reg may be nil for no regularization.
func NewDense(in, out int, act Activation, reg Regularizer) *Dense {
	if reg == nil {
		reg = None{}
	}
	return &Dense{In: in, Out: out, Activation: act, Reg: reg}
}

// init draws Glorot-uniform weights with the given RNG. Biases start at zero.
func (l *Dense) init(rng *rand.Rand) {
	limit := math.Sqrt(6.0 / float64(l.In+l.Out))
	w := make([]float64, l.In*l.Out)
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * limit
	}
	l.W = mat.NewDense(l.In, l.Out, w)
	l.B = mat.NewDense(1, l.Out, nil)
}

// forward computes and caches the layer output for the batch x.
func (l *Dense) forward(x *mat.Dense) *mat.Dense {
	r, _ := x.Dims()
	var z mat.Dense
	z.Mul(x, l.W)
	for i := 0; i < r; i++ {
		for j := 0; j < l.Out; j++ {
			z.Set(i, j, z.At(i, j)+l.B.At(0, j))
		}
	}

	l.x = x
	l.z = &z
	l.a = l.Activation.Forward(&z)
	return l.a
}

// backward consumes dL/dz for this layer, applies the optimizer step to W
// and b, and returns dL/da for the previous layer.
func (l *Dense) backward(delta *mat.Dense, opt Optimizer, id string) *mat.Dense {
	var gradW mat.Dense
	gradW.Mul(l.x.T(), delta)
	gradW.Add(&gradW, l.Reg.Gradient(l.W))

	r, _ := delta.Dims()
	gradB := mat.NewDense(1, l.Out, nil)
	for j := 0; j < l.Out; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += delta.At(i, j)
		}
		gradB.Set(0, j, sum)
	}

	var prev mat.Dense
	prev.Mul(delta, l.W.T())

	opt.Step(id+".w", l.W, &gradW)
	opt.Step(id+".b", l.B, gradB)
	return &prev
}

func (l *Dense) String() string {
	return fmt.Sprintf("Dense(%d, %d, activation=%s)", l.In, l.Out, l.Activation.Name())
}
