// Package storage provides time-indexed snapshot buffers for propagated
// states. One Storage holds every snapshot of one trajectory in a single
// contiguous allocation, reused across iterations.
package storage

import (
	"fmt"

	"github.com/san-kum/krotov/qop"
)

// Storage holds slots·dim complex values; slot n (1-based, 1…slots) is one
// state snapshot. Writes may arrive in any order.
type Storage struct {
	dim   int
	slots int
	data  []complex128
}

func New(slots, dim int) *Storage {
	return &Storage{dim: dim, slots: slots, data: make([]complex128, slots*dim)}
}

func (s *Storage) Slots() int { return s.slots }

func (s *Storage) Dim() int { return s.dim }

func (s *Storage) offset(n int) int {
	if n < 1 || n > s.slots {
		panic(fmt.Sprintf("storage: slot %d out of range [1, %d]", n, s.slots))
	}
	return (n - 1) * s.dim
}

// Write stores a snapshot of psi at slot n.
func (s *Storage) Write(n int, psi qop.Ket) {
	copy(s.data[s.offset(n):], psi[:s.dim])
}

// ReadInto copies slot n into dst.
func (s *Storage) ReadInto(n int, dst qop.Ket) {
	off := s.offset(n)
	copy(dst, s.data[off:off+s.dim])
}

// Read borrows slot n. The view is invalidated by the next Write to n.
func (s *Storage) Read(n int) qop.Ket {
	off := s.offset(n)
	return qop.Ket(s.data[off : off+s.dim])
}
