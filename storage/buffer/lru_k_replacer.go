package buffer

import (
	"container/list"
	"fmt"

	pair "github.com/notEpsilon/go-pair"
	"github.com/sasha-s/go-deadlock"

	"github.com/SpiritDemon-max/bustub-2022fall/common"
	"github.com/SpiritDemon-max/bustub-2022fall/errors"
)

// FrameID is the type for frame id
type FrameID int32

const ErrInvalidFrameID = errors.Error("frame id is outside the range the replacer tracks")
const ErrFrameNotEvictable = errors.Error("cannot remove a frame which is not evictable")

// frameEntry is book-keeping of one tracked frame
type frameEntry struct {
	count     uint64   // accesses recorded so far
	history   []uint64 // last up-to-k access timestamps, oldest first
	evictable bool
	elem      *list.Element // position in historyList or cacheList
}

/**
 * LRUKReplacer picks the victim frame whose K-th most recent access is oldest.
 * Frames accessed fewer than K times have +inf backward K-distance and are
 * victimized first, in FIFO order of their first access. This keeps one-shot
 * scans from flushing the hot set the way plain LRU would.
 */
type LRUKReplacer struct {
	currentTimestamp uint64
	currSize         uint32
	replacerSize     uint32
	k                uint64
	frameTable       map[FrameID]*frameEntry
	historyList      *list.List // pair.Pair[uint64, FrameID]; front = newest first access
	cacheList        *list.List // pair.Pair[uint64, FrameID]; ascending by K-th access timestamp
	latch            deadlock.Mutex
}

// NewLRUKReplacer instantiates a replacer which can track up to numFrames frames
func NewLRUKReplacer(numFrames uint32, k uint32) *LRUKReplacer {
	return &LRUKReplacer{
		replacerSize: numFrames,
		k:            uint64(k),
		frameTable:   make(map[FrameID]*frameEntry),
		historyList:  list.New(),
		cacheList:    list.New(),
	}
}

// RecordAccess marks that frameID has been accessed at a new timestamp.
// The frame enters the history list on its first access and promotes to the
// cache list on its k-th.
func (r *LRUKReplacer) RecordAccess(frameID FrameID) error {
	r.latch.Lock()
	defer r.latch.Unlock()

	if frameID < 0 || uint32(frameID) >= r.replacerSize {
		return fmt.Errorf("%w: %d", ErrInvalidFrameID, frameID)
	}

	entry, ok := r.frameTable[frameID]
	if !ok {
		entry = &frameEntry{evictable: true}
		r.frameTable[frameID] = entry
	}

	r.currentTimestamp++
	entry.history = append(entry.history, r.currentTimestamp)
	entry.count++

	if entry.count == 1 && entry.evictable {
		r.currSize++
	}

	if entry.count < r.k {
		if entry.count == 1 {
			entry.elem = r.historyList.PushFront(pair.Pair[uint64, FrameID]{First: r.currentTimestamp, Second: frameID})
		}
		// otherwise still history phase, position keyed by first access does not move
		return nil
	}

	if entry.count == r.k && r.k > 1 {
		r.historyList.Remove(entry.elem)
	} else if entry.count > r.k {
		r.cacheList.Remove(entry.elem)
	}

	// the oldest retained timestamp is the K-th most recent access
	kth := entry.history[0]
	entry.history = entry.history[1:]

	entry.elem = r.insertCacheOrdered(kth, frameID)
	return nil
}

// insertCacheOrdered places (kth, frameID) keeping cacheList ascending by the
// K-th access timestamp. Timestamps are unique, so no tie handling is needed here.
func (r *LRUKReplacer) insertCacheOrdered(kth uint64, frameID FrameID) *list.Element {
	entry := pair.Pair[uint64, FrameID]{First: kth, Second: frameID}
	for e := r.cacheList.Back(); e != nil; e = e.Prev() {
		if e.Value.(pair.Pair[uint64, FrameID]).First < kth {
			return r.cacheList.InsertAfter(entry, e)
		}
	}
	return r.cacheList.PushFront(entry)
}

// SetEvictable flips whether frameID may be victimized, adjusting the
// evictable-frame count when the flag actually changes.
func (r *LRUKReplacer) SetEvictable(frameID FrameID, setEvictable bool) error {
	r.latch.Lock()
	defer r.latch.Unlock()

	if frameID < 0 || uint32(frameID) >= r.replacerSize {
		return fmt.Errorf("%w: %d", ErrInvalidFrameID, frameID)
	}

	entry, ok := r.frameTable[frameID]
	if !ok {
		entry = &frameEntry{evictable: true}
		r.frameTable[frameID] = entry
	}

	if entry.count > 0 {
		if entry.evictable && !setEvictable {
			r.currSize--
		} else if !entry.evictable && setEvictable {
			r.currSize++
		}
	}
	entry.evictable = setEvictable
	return nil
}

// Evict removes and returns the evictable frame with the largest backward
// K-distance. History-phase frames win over cache-phase ones; the history
// list is scanned oldest-first-access first. ok is false when nothing is evictable.
func (r *LRUKReplacer) Evict() (frameID FrameID, ok bool) {
	r.latch.Lock()
	defer r.latch.Unlock()

	// back of the history list is the oldest first access
	for e := r.historyList.Back(); e != nil; e = e.Prev() {
		victim := e.Value.(pair.Pair[uint64, FrameID]).Second
		entry := r.frameTable[victim]
		if entry.evictable {
			r.historyList.Remove(e)
			r.dropEntry(victim, entry)
			return victim, true
		}
	}

	for e := r.cacheList.Front(); e != nil; e = e.Next() {
		victim := e.Value.(pair.Pair[uint64, FrameID]).Second
		entry := r.frameTable[victim]
		if entry.evictable {
			r.cacheList.Remove(e)
			r.dropEntry(victim, entry)
			return victim, true
		}
	}

	return 0, false
}

func (r *LRUKReplacer) dropEntry(frameID FrameID, entry *frameEntry) {
	entry.history = nil
	entry.count = 0
	entry.elem = nil
	r.currSize--
}

// Remove untracks frameID regardless of its K-distance. Untracked frames are
// a no-op; removing a frame which is not evictable is a caller bug.
func (r *LRUKReplacer) Remove(frameID FrameID) error {
	r.latch.Lock()
	defer r.latch.Unlock()

	if frameID < 0 || uint32(frameID) >= r.replacerSize {
		return fmt.Errorf("%w: %d", ErrInvalidFrameID, frameID)
	}

	entry, ok := r.frameTable[frameID]
	if !ok || entry.count == 0 {
		return nil
	}

	if !entry.evictable {
		return fmt.Errorf("%w: %d", ErrFrameNotEvictable, frameID)
	}

	if entry.count < r.k {
		r.historyList.Remove(entry.elem)
	} else {
		r.cacheList.Remove(entry.elem)
	}
	r.dropEntry(frameID, entry)
	return nil
}

// Size returns the number of evictable tracked frames
func (r *LRUKReplacer) Size() uint32 {
	r.latch.Lock()
	defer r.latch.Unlock()

	return r.currSize
}

// PrintList dumps both lists for debugging
func (r *LRUKReplacer) PrintList() {
	r.latch.Lock()
	defer r.latch.Unlock()

	printStr := fmt.Sprintf("LRUKReplacer currSize:%d |hist:", r.currSize)
	for e := r.historyList.Front(); e != nil; e = e.Next() {
		entry := e.Value.(pair.Pair[uint64, FrameID])
		printStr += fmt.Sprintf("-%d,%d-", entry.First, entry.Second)
	}
	printStr += "|cache:"
	for e := r.cacheList.Front(); e != nil; e = e.Next() {
		entry := e.Value.(pair.Pair[uint64, FrameID])
		printStr += fmt.Sprintf("-%d,%d-", entry.First, entry.Second)
	}
	common.ShPrintf(common.DEBUG_INFO, "%s\n", printStr)
}
