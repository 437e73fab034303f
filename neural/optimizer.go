package neural

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Optimizer applies a gradient step to a parameter tensor. Stateful
// optimizers key their per-parameter state by the id string, which stays
// stable across steps for the same tensor.
type Optimizer interface {
	// Name identifies the optimizer, e.g. "adam".
	Name() string

	// Step updates params in place from grads.
	Step(id string, params, grads *mat.Dense)
}

// SGD is plain stochastic gradient descent: w -= lr * g.
type SGD struct {
	LR float64
}

// NewSGD creates an SGD optimizer with the given learning rate.
func NewSGD(lr float64) *SGD { return &SGD{LR: lr} }

func (*SGD) Name() string { return "sgd" }

func (o *SGD) Step(id string, params, grads *mat.Dense) {
	var scaled mat.Dense
	scaled.Scale(o.LR, grads)
	params.Sub(params, &scaled)
}

// Momentum accumulates an exponentially decaying velocity:
// v = mu*v - lr*g; w += v.
type Momentum struct {
	LR float64
	Mu float64

	velocity map[string]*mat.Dense
}

// NewMomentum creates a momentum optimizer. mu is typically 0.9.
func NewMomentum(lr, mu float64) *Momentum {
	return &Momentum{LR: lr, Mu: mu, velocity: map[string]*mat.Dense{}}
}

func (*Momentum) Name() string { return "momentum" }

func (o *Momentum) Step(id string, params, grads *mat.Dense) {
	r, c := params.Dims()
	v, ok := o.velocity[id]
	if !ok {
		v = mat.NewDense(r, c, nil)
		o.velocity[id] = v
	}

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			nv := o.Mu*v.At(i, j) - o.LR*grads.At(i, j)
			v.Set(i, j, nv)
			params.Set(i, j, params.At(i, j)+nv)
		}
	}
}

// Adam keeps per-parameter first and second moment estimates with bias
// correction.
type Adam struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64

	m map[string]*mat.Dense
	v map[string]*mat.Dense
	t map[string]int
}

// NewAdam creates an Adam optimizer with the standard moment decays
// beta1=0.9, beta2=0.999.
func NewAdam(lr float64) *Adam {
	return &Adam{
		LR:    lr,
		Beta1: 0.9,
		Beta2: 0.999,
		Eps:   1e-8,
		m:     map[string]*mat.Dense{},
		v:     map[string]*mat.Dense{},
		t:     map[string]int{},
	}
}

func (*Adam) Name() string { return "adam" }

func (o *Adam) Step(id string, params, grads *mat.Dense) {
	r, c := params.Dims()
	m, ok := o.m[id]
	if !ok {
		m = mat.NewDense(r, c, nil)
		o.m[id] = m
		o.v[id] = mat.NewDense(r, c, nil)
	}
	v := o.v[id]

	o.t[id]++
	t := float64(o.t[id])
	corr1 := 1 - math.Pow(o.Beta1, t)
	corr2 := 1 - math.Pow(o.Beta2, t)

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := grads.At(i, j)
			nm := o.Beta1*m.At(i, j) + (1-o.Beta1)*g
			nv := o.Beta2*v.At(i, j) + (1-o.Beta2)*g*g
			m.Set(i, j, nm)
			v.Set(i, j, nv)

			mHat := nm / corr1
			vHat := nv / corr2
			params.Set(i, j, params.At(i, j)-o.LR*mHat/(math.Sqrt(vHat)+o.Eps))
		}
	}
}
