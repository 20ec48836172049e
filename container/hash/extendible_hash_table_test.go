package hash

import (
	"testing"

	testingpkg "github.com/SpiritDemon-max/bustub-2022fall/testing/testing_assert"
	"github.com/SpiritDemon-max/bustub-2022fall/types"
)

// identity hash makes directory layout deterministic in scenarios
func newIntTable(bucketSize uint32) *ExtendibleHashTable[int, int] {
	return NewExtendibleHashTable[int, int](bucketSize, func(k int) uint64 { return uint64(k) })
}

func TestInsertFindRemove(t *testing.T) {
	table := newIntTable(2)

	table.Insert(1, 10)
	table.Insert(2, 20)
	table.Insert(3, 30)

	val, found := table.Find(1)
	testingpkg.Assert(t, found, "key 1 should be found")
	testingpkg.Equals(t, 10, val)
	val, found = table.Find(2)
	testingpkg.Assert(t, found, "key 2 should be found")
	testingpkg.Equals(t, 20, val)
	val, found = table.Find(3)
	testingpkg.Assert(t, found, "key 3 should be found")
	testingpkg.Equals(t, 30, val)

	_, found = table.Find(4)
	testingpkg.Assert(t, !found, "key 4 was never inserted")

	testingpkg.Assert(t, table.Remove(2), "removing a present key")
	_, found = table.Find(2)
	testingpkg.Assert(t, !found, "key 2 was removed")
	testingpkg.Assert(t, !table.Remove(2), "removing an absent key")
}

func TestInsertOverwritesInPlace(t *testing.T) {
	table := newIntTable(2)

	table.Insert(7, 70)
	table.Insert(7, 77)

	val, found := table.Find(7)
	testingpkg.Assert(t, found, "key 7 should be found")
	testingpkg.Equals(t, 77, val)
	// overwrite must not consume a second slot
	testingpkg.Equals(t, uint32(0), table.GetGlobalDepth())
	testingpkg.Equals(t, uint32(1), table.GetNumBuckets())
}

// keys 0, 4 and 8 share their low two bits, so the third insert has to chain
// splits until bit 2 tells 4 apart from 0 and 8
func TestDirectoryDoublingOnCollidingLowBits(t *testing.T) {
	table := newIntTable(2)

	table.Insert(0, 0)
	table.Insert(4, 0)
	table.Insert(8, 0)

	testingpkg.Equals(t, uint32(3), table.GetGlobalDepth())
	testingpkg.Equals(t, uint32(4), table.GetNumBuckets())
	testingpkg.Equals(t, uint64(8), table.GetDirSize())

	for _, key := range []int{0, 4, 8} {
		_, found := table.Find(key)
		testingpkg.Assert(t, found, "key should survive the split chain")
	}

	checkDirectoryInvariants(t, table)
}

func TestSplitDistributesEntries(t *testing.T) {
	table := newIntTable(2)

	// 0 and 2 fill the first bucket, 1 forces a split on bit 0, and 5 joins
	// 1 and 3 to force a second split on bit 1
	table.Insert(0, 100)
	table.Insert(2, 102)
	table.Insert(1, 101)
	table.Insert(3, 103)
	table.Insert(5, 105)

	for _, key := range []int{0, 1, 2, 3, 5} {
		val, found := table.Find(key)
		testingpkg.Assert(t, found, "every inserted key should be found")
		testingpkg.Equals(t, 100+key, val)
	}

	checkDirectoryInvariants(t, table)
}

func TestBucketsAreNotMergedOnRemove(t *testing.T) {
	table := newIntTable(2)

	for i := 0; i < 16; i++ {
		table.Insert(i, i)
	}
	globalDepth := table.GetGlobalDepth()
	numBuckets := table.GetNumBuckets()

	for i := 0; i < 16; i++ {
		testingpkg.Assert(t, table.Remove(i), "removing a present key")
	}

	// directory state must not shrink back
	testingpkg.Equals(t, globalDepth, table.GetGlobalDepth())
	testingpkg.Equals(t, numBuckets, table.GetNumBuckets())
	checkDirectoryInvariants(t, table)
}

func TestManyKeysWithRealHash(t *testing.T) {
	table := NewExtendibleHashTable[types.PageID, int](4, func(pageID types.PageID) uint64 {
		return GenHashMurMur64(pageID.Serialize())
	})

	const numKeys = 1000
	for i := 0; i < numKeys; i++ {
		table.Insert(types.PageID(i), i)
	}
	for i := 0; i < numKeys; i++ {
		val, found := table.Find(types.PageID(i))
		testingpkg.Assert(t, found, "every inserted key should be found")
		testingpkg.Equals(t, i, val)
	}

	// overwrite every key, the table must keep exactly one entry per key
	for i := 0; i < numKeys; i++ {
		table.Insert(types.PageID(i), 2*i)
	}
	for i := 0; i < numKeys; i++ {
		val, found := table.Find(types.PageID(i))
		testingpkg.Assert(t, found, "overwritten key should be found")
		testingpkg.Equals(t, 2*i, val)
	}

	for i := 0; i < numKeys; i += 2 {
		testingpkg.Assert(t, table.Remove(types.PageID(i)), "removing a present key")
	}
	for i := 0; i < numKeys; i++ {
		_, found := table.Find(types.PageID(i))
		if i%2 == 0 {
			testingpkg.Assert(t, !found, "removed key should miss")
		} else {
			testingpkg.Assert(t, found, "untouched key should hit")
		}
	}
}

// every directory slot must point at a bucket whose depth does not exceed the
// global depth, and each depth-d bucket must be aliased by exactly 2^(g-d)
// slots. Summing 2^depth over all slots therefore gives numBuckets * 2^g.
func checkDirectoryInvariants(t *testing.T, table *ExtendibleHashTable[int, int]) {
	t.Helper()

	globalDepth := table.GetGlobalDepth()
	dirSize := table.GetDirSize()
	testingpkg.Equals(t, uint64(1)<<globalDepth, dirSize)

	sum := uint64(0)
	for i := uint64(0); i < dirSize; i++ {
		localDepth := table.GetLocalDepth(i)
		testingpkg.Assert(t, localDepth <= globalDepth, "local depth exceeds global depth")

		// slots sharing the low localDepth bits alias the same bucket
		buddy := i ^ (uint64(1) << localDepth)
		if localDepth < globalDepth {
			testingpkg.Equals(t, localDepth, table.GetLocalDepth(buddy%dirSize))
		}

		sum += uint64(1) << localDepth
	}
	testingpkg.Equals(t, uint64(table.GetNumBuckets())<<globalDepth, sum)
}
