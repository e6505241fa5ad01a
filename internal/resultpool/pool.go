// Package resultpool implements ResultPool from spec.md §4.3: reusable,
// growable buffers for per-file match accumulation.
//
// The design is the free-list idiom used by reposPool / getSlice / clear in
// internal/db/repos_perm.go, generalized from a single fixed-size pool into
// one sync.Pool per rounded-up power-of-two capacity class (spec.md §9:
// "the pool is a set of free lists keyed by rounded-up power-of-two
// capacity"), so a burst of small files doesn't get stuck with a buffer
// sized for the largest file ever searched.
package resultpool

import (
	"sync"

	"github.com/Reino-Barone/GrepCompatible-sub001/internal/result"
)

const numClasses = 24 // capacity classes 2^0 .. 2^23, comfortably above any realistic per-file match count

// Pool hands out Buffers sized for an estimated match count and reclaims
// them once a file's FileResult has been materialized. Pool is internally
// synchronized; rent and a Buffer's Release are safe to call concurrently
// from multiple workers, though any single Buffer is only ever owned by one
// worker at a time.
type Pool struct {
	classes [numClasses]sync.Pool
}

// New returns an empty, ready-to-use Pool.
func New() *Pool {
	return &Pool{}
}

// Buffer is a rented, single-owner accumulator for one file's matches.
// Returning a Buffer twice is an invariant violation (spec.md §4.3: "a
// fatal defect") and panics.
type Buffer struct {
	pool     *Pool
	class    int
	matches  []result.Match
	released bool
}

// Rent acquires a Buffer with capacity >= estimatedSize.
func (p *Pool) Rent(estimatedSize int) *Buffer {
	class := classFor(estimatedSize)
	if v := p.classes[class].Get(); v != nil {
		buf := v.(*Buffer)
		buf.matches = buf.matches[:0]
		buf.released = false
		return buf
	}
	return &Buffer{
		pool:    p,
		class:   class,
		matches: make([]result.Match, 0, 1<<uint(class)),
	}
}

// AddMatch appends m iff maxCount is nil or the buffer has not yet reached
// it. Callers add at most one m per matching line (maxCount counts
// matching lines, not occurrences within a line). It returns whether the
// buffer is now full, signalling the scan loop to stop early (spec.md
// §4.3/§4.5 step e).
func (b *Buffer) AddMatch(m result.Match, maxCount *int) (full bool) {
	if maxCount != nil && len(b.matches) >= *maxCount {
		return true
	}
	b.matches = append(b.matches, m)
	if maxCount != nil {
		return len(b.matches) >= *maxCount
	}
	return false
}

// Len reports how many matches have been added so far.
func (b *Buffer) Len() int { return len(b.matches) }

// Matches returns the matches added so far. The returned slice must not be
// retained past Finish/Release.
func (b *Buffer) Matches() []result.Match { return b.matches }

// Finish materializes an immutable FileResult snapshot from b's contents
// and releases b back to the pool. b must not be used afterwards.
func (b *Buffer) Finish(fileName string) result.FileResult {
	snapshot := make([]result.Match, len(b.matches))
	copy(snapshot, b.matches)
	fr := result.FileResult{
		FileName:     fileName,
		Matches:      snapshot,
		TotalMatches: len(snapshot),
	}
	b.Release()
	return fr
}

// Release returns b to its pool. Safe to call at most once; a second call
// panics, matching the "fatal defect" language of spec.md §4.3.
func (b *Buffer) Release() {
	if b.released {
		panic("resultpool: buffer released twice")
	}
	b.released = true
	for i := range b.matches {
		b.matches[i] = result.Match{}
	}
	b.matches = b.matches[:0]
	b.pool.classes[b.class].Put(b)
}

// classFor returns the index of the smallest power-of-two capacity class
// that is >= n.
func classFor(n int) int {
	class := 0
	capacity := 1
	for capacity < n && class < numClasses-1 {
		capacity <<= 1
		class++
	}
	return class
}
