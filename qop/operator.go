package qop

import (
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

// Operator is a dense square complex matrix in row-major layout.
type Operator struct {
	n    int
	data []complex128
}

func NewOperator(n int) *Operator {
	return &Operator{n: n, data: make([]complex128, n*n)}
}

// NewOperatorFrom builds an n×n operator from row-major data. The slice is
// copied.
func NewOperatorFrom(n int, data []complex128) *Operator {
	if len(data) != n*n {
		panic("qop: operator data length does not match dimension")
	}
	op := NewOperator(n)
	copy(op.data, data)
	return op
}

func Identity(n int) *Operator {
	op := NewOperator(n)
	for i := 0; i < n; i++ {
		op.data[i*n+i] = 1
	}
	return op
}

func (a *Operator) Dim() int { return a.n }

func (a *Operator) At(i, j int) complex128 { return a.data[i*a.n+j] }

func (a *Operator) Set(i, j int, v complex128) { a.data[i*a.n+j] = v }

func (a *Operator) general() cblas128.General {
	return cblas128.General{Rows: a.n, Cols: a.n, Stride: a.n, Data: a.data}
}

func (a *Operator) Clone() *Operator {
	return NewOperatorFrom(a.n, a.data)
}

func (a *Operator) Zero() {
	for i := range a.data {
		a.data[i] = 0
	}
}

func (a *Operator) CopyFrom(src *Operator) {
	copy(a.data, src.data)
}

func (a *Operator) Scale(alpha complex128) {
	for i := range a.data {
		a.data[i] *= alpha
	}
}

// AddScaled adds alpha*other to a in place.
func (a *Operator) AddScaled(alpha complex128, other *Operator) {
	for i := range a.data {
		a.data[i] += alpha * other.data[i]
	}
}

// Apply computes dst = a·src. dst and src must not alias.
func (a *Operator) Apply(dst, src Ket) {
	cblas128.Gemv(blas.NoTrans, 1, a.general(), src.vector(), 0, dst.vector())
}

// MulInto computes dst = a·b. dst must not alias a or b.
func (a *Operator) MulInto(dst, b *Operator) {
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, a.general(), b.general(), 0, dst.general())
}

// Adjoint returns the conjugate transpose of a.
func (a *Operator) Adjoint() *Operator {
	out := NewOperator(a.n)
	for i := 0; i < a.n; i++ {
		for j := 0; j < a.n; j++ {
			out.data[j*a.n+i] = cmplx.Conj(a.data[i*a.n+j])
		}
	}
	return out
}

// norm1 returns the maximum absolute column sum.
func (a *Operator) norm1() float64 {
	max := 0.0
	for j := 0; j < a.n; j++ {
		sum := 0.0
		for i := 0; i < a.n; i++ {
			sum += cmplx.Abs(a.data[i*a.n+j])
		}
		if sum > max {
			max = sum
		}
	}
	return max
}
