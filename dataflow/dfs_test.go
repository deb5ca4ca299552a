package dataflow

import (
	"testing"
	"time"

	"github.com/czx-lab/flowrt/pool"
)

func produce(s *DFS[int], values ...int) {
	cur := s
	for _, v := range values {
		cur, _ = cur.LeftShift(v)
	}
	_, _ = cur.LeftShift(0) // end-of-stream sentinel
}

func TestDFSLeftShiftAndGetFirst(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	s := NewDFS[int](p)
	go produce(s, 1, 2, 3)

	cur := s
	var got []int
	for {
		v, ok := cur.GetFirst()
		if !ok {
			t.Fatalf("GetFirst never resolved")
		}
		if cur.IsEmpty() {
			break
		}
		got = append(got, v)
		cur = cur.GetRest()
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("stream produced %v; want [1 2 3]", got)
	}
}

func TestDFSMap(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	s := NewDFS[int](p)
	doubled := s.Map(func(v int) int { return v * 2 })
	go produce(s, 1, 2, 3)

	cur := doubled
	var got []int
	for {
		v, _ := cur.GetFirst()
		if cur.IsEmpty() {
			break
		}
		got = append(got, v)
		cur = cur.GetRest()
	}
	if len(got) != 3 || got[0] != 2 || got[1] != 4 || got[2] != 6 {
		t.Fatalf("mapped stream = %v; want [2 4 6]", got)
	}
}

func TestDFSFilter(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	s := NewDFS[int](p)
	evens := s.Filter(func(v int) bool { return v%2 == 0 })
	go produce(s, 1, 2, 3, 4, 5)

	cur := evens
	var got []int
	for {
		v, _ := cur.GetFirst()
		if cur.IsEmpty() {
			break
		}
		got = append(got, v)
		cur = cur.GetRest()
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Fatalf("filtered stream = %v; want [2 4]", got)
	}
}

func TestDFSReduce(t *testing.T) {
	p := pool.NewGoPool()
	defer p.Release()

	s := NewDFS[int](p)
	sum := s.Reduce(func(acc, v int) int { return acc + v }, 0)
	go produce(s, 1, 2, 3, 4)

	v, ok := sum.GetVal(time.Second)
	if !ok || v != 10 {
		t.Fatalf("Reduce = %v, %v; want 10, true", v, ok)
	}
}
