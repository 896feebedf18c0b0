package rangemap

import (
	"fmt"
	"strings"
	"testing"
)

// dump renders the stored intervals as "[lo,hi)=v" terms.
func dump[V comparable](m *Map[V]) string {
	var parts []string
	m.Ascend(0, ^uint32(0), func(lo, hi uint32, v V) bool {
		parts = append(parts, fmt.Sprintf("[%d,%d)=%v", lo, hi, v))
		return true
	})
	return strings.Join(parts, " ")
}

func TestGetEmpty(t *testing.T) {
	m := New[string]()
	if v, ok := m.Get(3); ok {
		t.Errorf("Get(3) = %q, true; want missing", v)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestSetPartialOverlap(t *testing.T) {
	m := New[string]()
	m.Set(0, 8, "U")
	m.Set(0, 4, "A")
	m.Set(2, 6, "B")

	tests := []struct {
		key  uint32
		want string
	}{
		{0, "A"}, {1, "A"}, {2, "B"}, {3, "B"}, {5, "B"}, {6, "U"}, {7, "U"},
	}
	for _, tt := range tests {
		got, ok := m.Get(tt.key)
		if !ok || got != tt.want {
			t.Errorf("Get(%d) = %q, %v; want %q", tt.key, got, ok, tt.want)
		}
	}
	if got, want := dump(m), "[0,2)=A [2,6)=B [6,8)=U"; got != want {
		t.Errorf("intervals = %s, want %s", got, want)
	}
}

func TestSetInsideSplitsInThree(t *testing.T) {
	m := New[int]()
	m.Set(0, 10, 1)
	m.Set(4, 6, 2)
	if got, want := dump(m), "[0,4)=1 [4,6)=2 [6,10)=1"; got != want {
		t.Errorf("intervals = %s, want %s", got, want)
	}
}

func TestSetMergesEqualNeighbours(t *testing.T) {
	m := New[int]()
	m.Set(0, 10, 1)
	m.Set(4, 6, 2)
	m.Set(4, 6, 1)
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (%s)", m.Len(), dump(m))
	}

	m.Set(10, 12, 1)
	m.Set(14, 16, 1)
	m.Set(12, 14, 1)
	if got, want := dump(m), "[0,16)=1"; got != want {
		t.Errorf("intervals = %s, want %s", got, want)
	}
}

func TestSetCoversSeveralIntervals(t *testing.T) {
	m := New[int]()
	for i := uint32(0); i < 8; i++ {
		m.Set(i, i+1, int(i))
	}
	m.Set(1, 7, 9)
	if got, want := dump(m), "[0,1)=0 [1,7)=9 [7,8)=7"; got != want {
		t.Errorf("intervals = %s, want %s", got, want)
	}
}

func TestSetEmptyIgnored(t *testing.T) {
	m := New[int]()
	m.Set(5, 5, 1)
	m.Set(6, 2, 1)
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestAscendClipped(t *testing.T) {
	m := New[int]()
	m.Set(0, 4, 1)
	m.Set(4, 10, 2)

	var got []string
	m.Ascend(2, 6, func(lo, hi uint32, v int) bool {
		got = append(got, fmt.Sprintf("[%d,%d)=%d", lo, hi, v))
		return true
	})
	if want := "[2,4)=1 [4,6)=2"; strings.Join(got, " ") != want {
		t.Errorf("Ascend(2,6) = %v, want %s", got, want)
	}

	calls := 0
	m.Ascend(0, 10, func(uint32, uint32, int) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Errorf("Ascend stopped after %d calls, want 1", calls)
	}
}
