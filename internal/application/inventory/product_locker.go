package inventory

import (
	"hash/fnv"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// DefaultLockStripes is the number of mutexes shared by all products
const DefaultLockStripes = 64

// ProductLocker serializes check-then-write sequences per product inside this process.
// Products hash onto a fixed set of stripes; stripes are always taken in ascending
// order so two callers locking overlapping product sets cannot deadlock.
// Cross-process safety comes from row locks and version checks in the store.
type ProductLocker struct {
	stripes []sync.Mutex
}

// NewProductLocker creates a locker with n stripes (DefaultLockStripes if n <= 0)
func NewProductLocker(n int) *ProductLocker {
	if n <= 0 {
		n = DefaultLockStripes
	}
	return &ProductLocker{stripes: make([]sync.Mutex, n)}
}

// Lock acquires the stripes covering productIDs and returns the matching unlock func
func (l *ProductLocker) Lock(productIDs ...uuid.UUID) (unlock func()) {
	indexes := l.stripeIndexes(productIDs)
	for _, idx := range indexes {
		l.stripes[idx].Lock()
	}
	return func() {
		for i := len(indexes) - 1; i >= 0; i-- {
			l.stripes[indexes[i]].Unlock()
		}
	}
}

func (l *ProductLocker) stripeIndexes(productIDs []uuid.UUID) []int {
	seen := make(map[int]struct{}, len(productIDs))
	indexes := make([]int, 0, len(productIDs))
	for _, id := range productIDs {
		h := fnv.New32a()
		_, _ = h.Write(id[:])
		idx := int(h.Sum32() % uint32(len(l.stripes)))
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	return indexes
}
