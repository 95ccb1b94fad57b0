package qop

import (
	"math/cmplx"

	"gonum.org/v1/gonum/blas/cblas128"
)

// Ket is a dense complex state vector.
type Ket []complex128

func NewKet(dim int) Ket {
	return make(Ket, dim)
}

// BasisKet returns the dim-dimensional canonical basis state |i⟩.
func BasisKet(dim, i int) Ket {
	k := make(Ket, dim)
	k[i] = 1
	return k
}

func (k Ket) Clone() Ket {
	c := make(Ket, len(k))
	copy(c, k)
	return c
}

func (k Ket) CopyFrom(src Ket) {
	copy(k, src)
}

func (k Ket) vector() cblas128.Vector {
	return cblas128.Vector{N: len(k), Inc: 1, Data: k}
}

// Dot returns ⟨k|other⟩, conjugating the receiver.
func (k Ket) Dot(other Ket) complex128 {
	return cblas128.Dotc(k.vector(), other.vector())
}

func (k Ket) Norm() float64 {
	return cblas128.Nrm2(k.vector())
}

// Axpy adds alpha*other to k in place.
func (k Ket) Axpy(alpha complex128, other Ket) {
	cblas128.Axpy(alpha, other.vector(), k.vector())
}

func (k Ket) Scale(alpha complex128) {
	cblas128.Scal(alpha, k.vector())
}

func (k Ket) Zero() {
	for i := range k {
		k[i] = 0
	}
}

func (k Ket) IsValid() bool {
	for _, v := range k {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return false
		}
	}
	return true
}

// Overlap returns |⟨k|other⟩|².
func (k Ket) Overlap(other Ket) float64 {
	d := k.Dot(other)
	re, im := real(d), imag(d)
	return re*re + im*im
}
