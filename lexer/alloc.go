package lexer

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Allocator provides the backing storage of Tag.Pairs.
type Allocator interface {
	// Grow returns pairs with room for at least n more elements. The contents
	// of pairs are preserved; the old backing array must not be used again if
	// a new one is returned.
	Grow(pairs []Pair, n int) []Pair

	// Release gives back storage obtained from Grow. Release(nil) is a no-op.
	Release(pairs []Pair)
}

// Heap is the default allocator, it leaves freeing to the garbage collector.
var Heap Allocator = HeapAllocator{}

type HeapAllocator struct{}

func (HeapAllocator) Grow(pairs []Pair, n int) []Pair {
	return slices.Grow(pairs, n)
}

func (HeapAllocator) Release([]Pair) {}

// PanicAllocator panics whenever it would have to allocate. Lexing text and
// tags without attributes never allocates, so it can be used to assert that.
type PanicAllocator struct{}

func (PanicAllocator) Grow(pairs []Pair, n int) []Pair {
	if cap(pairs)-len(pairs) >= n {
		return pairs
	}

	panic("lexer: allocation through PanicAllocator")
}

func (PanicAllocator) Release([]Pair) {}

const minPoolCap = 4

// PoolAllocator recycles pair arrays through a sync.Pool. It is safe for
// concurrent use.
type PoolAllocator struct {
	pool sync.Pool
}

func NewPool() *PoolAllocator {
	return &PoolAllocator{}
}

func (a *PoolAllocator) Grow(pairs []Pair, n int) []Pair {
	if cap(pairs)-len(pairs) >= n {
		return pairs
	}

	need := len(pairs) + n

	var grown []Pair
	if p, ok := a.pool.Get().(*[]Pair); ok && cap(*p) >= need {
		grown = (*p)[:len(pairs)]
	} else {
		if ok {
			a.pool.Put(p)
		}
		grown = make([]Pair, len(pairs), max(need, 2*cap(pairs), minPoolCap))
	}

	copy(grown, pairs)
	a.Release(pairs)

	return grown
}

func (a *PoolAllocator) Release(pairs []Pair) {
	if cap(pairs) == 0 {
		return
	}

	// Drop references into the lexed buffer before recycling.
	pairs = pairs[:cap(pairs)]
	clear(pairs)

	pairs = pairs[:0]
	a.pool.Put(&pairs)
}

// TrackingAllocator counts the backing arrays handed out by Inner that have
// not been released yet. It is safe for concurrent use.
type TrackingAllocator struct {
	Inner Allocator

	mu          sync.Mutex
	outstanding int
	total       int
}

func NewTracking(inner Allocator) *TrackingAllocator {
	if inner == nil {
		inner = Heap
	}

	return &TrackingAllocator{Inner: inner}
}

func (a *TrackingAllocator) Grow(pairs []Pair, n int) []Pair {
	if cap(pairs)-len(pairs) >= n {
		return pairs
	}

	grown := a.Inner.Grow(pairs, n)

	a.mu.Lock()
	defer a.mu.Unlock()

	if cap(pairs) > 0 {
		a.outstanding--
	}
	a.outstanding++
	a.total++

	return grown
}

func (a *TrackingAllocator) Release(pairs []Pair) {
	if cap(pairs) == 0 {
		return
	}

	a.mu.Lock()
	a.outstanding--
	a.mu.Unlock()

	a.Inner.Release(pairs)
}

// Outstanding returns how many arrays are currently held by callers.
func (a *TrackingAllocator) Outstanding() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.outstanding
}

// Total returns how many arrays have been allocated so far.
func (a *TrackingAllocator) Total() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.total
}
