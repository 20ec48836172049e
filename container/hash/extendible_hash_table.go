package hash

import (
	"container/list"

	pair "github.com/notEpsilon/go-pair"
	"github.com/sasha-s/go-deadlock"
)

// HashFunc maps a key to the stable 64-bit hash whose low bits select a directory slot.
type HashFunc[K comparable] func(K) uint64

// hashBucket holds up to maxSize entries which share the low localDepth bits of their hash.
// Multiple directory slots may alias the same bucket.
type hashBucket[K comparable, V any] struct {
	items      *list.List // entries are pair.Pair[K, V]
	maxSize    uint32
	localDepth uint32
}

func newHashBucket[K comparable, V any](maxSize uint32, localDepth uint32) *hashBucket[K, V] {
	return &hashBucket[K, V]{list.New(), maxSize, localDepth}
}

func (b *hashBucket[K, V]) find(key K) (V, bool) {
	for e := b.items.Front(); e != nil; e = e.Next() {
		entry := e.Value.(pair.Pair[K, V])
		if entry.First == key {
			return entry.Second, true
		}
	}
	var notFound V
	return notFound, false
}

func (b *hashBucket[K, V]) remove(key K) bool {
	for e := b.items.Front(); e != nil; e = e.Next() {
		if e.Value.(pair.Pair[K, V]).First == key {
			b.items.Remove(e)
			return true
		}
	}
	return false
}

// insert overwrites the value in place when key already exists. It reports
// false only when the key is absent and the bucket is full.
func (b *hashBucket[K, V]) insert(key K, value V) bool {
	for e := b.items.Front(); e != nil; e = e.Next() {
		if e.Value.(pair.Pair[K, V]).First == key {
			e.Value = pair.Pair[K, V]{First: key, Second: value}
			return true
		}
	}
	if b.isFull() {
		return false
	}
	b.items.PushBack(pair.Pair[K, V]{First: key, Second: value})
	return true
}

func (b *hashBucket[K, V]) isFull() bool {
	return uint32(b.items.Len()) >= b.maxSize
}

// ExtendibleHashTable is an in-memory hash table which grows by directory
// doubling and bucket split instead of full rehash. Buckets never merge.
type ExtendibleHashTable[K comparable, V any] struct {
	globalDepth uint32
	bucketSize  uint32
	numBuckets  uint32
	dir         []*hashBucket[K, V]
	hashFn      HashFunc[K]
	latch       deadlock.Mutex
}

func NewExtendibleHashTable[K comparable, V any](bucketSize uint32, hashFn HashFunc[K]) *ExtendibleHashTable[K, V] {
	ret := &ExtendibleHashTable[K, V]{
		globalDepth: 0,
		bucketSize:  bucketSize,
		numBuckets:  1,
		hashFn:      hashFn,
	}
	ret.dir = append(ret.dir, newHashBucket[K, V](bucketSize, 0))
	return ret
}

// indexOf extracts the directory slot from the low globalDepth bits of the key's hash
func (h *ExtendibleHashTable[K, V]) indexOf(key K) uint64 {
	mask := (uint64(1) << h.globalDepth) - 1
	return h.hashFn(key) & mask
}

func (h *ExtendibleHashTable[K, V]) GetGlobalDepth() uint32 {
	h.latch.Lock()
	defer h.latch.Unlock()
	return h.globalDepth
}

// GetLocalDepth returns the depth of the bucket the dirIndex-th directory slot points at
func (h *ExtendibleHashTable[K, V]) GetLocalDepth(dirIndex uint64) uint32 {
	h.latch.Lock()
	defer h.latch.Unlock()
	return h.dir[dirIndex].localDepth
}

func (h *ExtendibleHashTable[K, V]) GetNumBuckets() uint32 {
	h.latch.Lock()
	defer h.latch.Unlock()
	return h.numBuckets
}

// GetDirSize returns the current directory length (2^globalDepth)
func (h *ExtendibleHashTable[K, V]) GetDirSize() uint64 {
	h.latch.Lock()
	defer h.latch.Unlock()
	return uint64(len(h.dir))
}

// Find locates the value mapped to key
func (h *ExtendibleHashTable[K, V]) Find(key K) (V, bool) {
	h.latch.Lock()
	defer h.latch.Unlock()

	return h.dir[h.indexOf(key)].find(key)
}

// Remove erases the entry of key and reports whether one existed
func (h *ExtendibleHashTable[K, V]) Remove(key K) bool {
	h.latch.Lock()
	defer h.latch.Unlock()

	return h.dir[h.indexOf(key)].remove(key)
}

// Insert maps key to value, overwriting any previous value of key.
// When the target bucket overflows it is split, doubling the directory
// as needed, until the entry fits.
func (h *ExtendibleHashTable[K, V]) Insert(key K, value V) {
	h.latch.Lock()
	defer h.latch.Unlock()

	bucket := h.dir[h.indexOf(key)]
	if bucket.insert(key, value) {
		return
	}

	for bucket.isFull() {
		localDepth := bucket.localDepth
		// every directory slot is distinct for this bucket already,
		// so growing it needs a directory doubling first
		if localDepth == h.globalDepth {
			h.globalDepth++
			oldSize := len(h.dir)
			for i := 0; i < oldSize; i++ {
				h.dir = append(h.dir, h.dir[i])
			}
		}

		localMask := uint64(1) << localDepth
		bucket0 := newHashBucket[K, V](h.bucketSize, localDepth+1)
		bucket1 := newHashBucket[K, V](h.bucketSize, localDepth+1)
		h.numBuckets++

		// entries move to the side selected by the newly significant hash bit
		for e := bucket.items.Front(); e != nil; e = e.Next() {
			entry := e.Value.(pair.Pair[K, V])
			if h.hashFn(entry.First)&localMask != 0 {
				bucket1.insert(entry.First, entry.Second)
			} else {
				bucket0.insert(entry.First, entry.Second)
			}
		}

		// re-point every slot which aliased the old bucket
		for i := h.hashFn(key) & (localMask - 1); i < uint64(len(h.dir)); i += localMask {
			if i&localMask != 0 {
				h.dir[i] = bucket1
			} else {
				h.dir[i] = bucket0
			}
		}

		bucket = h.dir[h.indexOf(key)]
	}
	bucket.insert(key, value)
}
