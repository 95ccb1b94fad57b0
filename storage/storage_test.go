package storage

import (
	"testing"

	"github.com/san-kum/krotov/qop"
)

func TestWriteRead(t *testing.T) {
	s := New(3, 2)
	if s.Slots() != 3 || s.Dim() != 2 {
		t.Fatalf("slots %d dim %d", s.Slots(), s.Dim())
	}

	// Out-of-order writes are fine.
	s.Write(3, qop.Ket{5, 6})
	s.Write(1, qop.Ket{1, 2})
	s.Write(2, qop.Ket{3, 4})

	dst := qop.NewKet(2)
	s.ReadInto(2, dst)
	if dst[0] != 3 || dst[1] != 4 {
		t.Errorf("slot 2: got %v", dst)
	}

	view := s.Read(3)
	if view[0] != 5 || view[1] != 6 {
		t.Errorf("slot 3: got %v", view)
	}
}

func TestReadIntoCopies(t *testing.T) {
	s := New(2, 2)
	s.Write(1, qop.Ket{1, 2})

	dst := qop.NewKet(2)
	s.ReadInto(1, dst)
	s.Write(1, qop.Ket{9, 9})
	if dst[0] != 1 {
		t.Error("ReadInto must copy")
	}
}

func TestReadBorrows(t *testing.T) {
	s := New(2, 2)
	s.Write(1, qop.Ket{1, 2})

	view := s.Read(1)
	s.Write(1, qop.Ket{9, 9})
	if view[0] != 9 {
		t.Error("Read should borrow the backing slot")
	}
}

func TestSlotOutOfRange(t *testing.T) {
	s := New(2, 1)
	for _, n := range []int{0, 3, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("slot %d should panic", n)
				}
			}()
			s.Write(n, qop.Ket{1})
		}()
	}
}
