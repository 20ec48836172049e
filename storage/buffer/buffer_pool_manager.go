package buffer

import (
	"fmt"
	"sort"

	"github.com/golang-collections/collections/queue"
	"github.com/ncw/directio"
	"github.com/sasha-s/go-deadlock"

	"github.com/SpiritDemon-max/bustub-2022fall/common"
	"github.com/SpiritDemon-max/bustub-2022fall/container/hash"
	"github.com/SpiritDemon-max/bustub-2022fall/recovery"
	"github.com/SpiritDemon-max/bustub-2022fall/storage/disk"
	"github.com/SpiritDemon-max/bustub-2022fall/storage/page"
	"github.com/SpiritDemon-max/bustub-2022fall/types"
)

// BufferPoolManager mediates between callers and the disk manager through a
// fixed array of frames. Residency is resolved through an extendible hash
// page table and victims are chosen by the LRU-K replacer.
type BufferPoolManager struct {
	diskManager disk.DiskManager
	pages       []*page.Page // index is FrameID
	replacer    *LRUKReplacer
	freeList    *queue.Queue // FrameID values
	pageTable   *hash.ExtendibleHashTable[types.PageID, FrameID]
	nextPageID  types.PageID
	log_manager *recovery.LogManager
	mutex       deadlock.Mutex
}

// NewBufferPoolManager returns a buffer pool manager of poolSize frames whose
// replacer ranks frames by their K-th most recent access
func NewBufferPoolManager(poolSize uint32, diskManager disk.DiskManager, replacerK uint32, logManager *recovery.LogManager) *BufferPoolManager {
	pages := make([]*page.Page, poolSize)
	freeList := queue.New()
	for i := uint32(0); i < poolSize; i++ {
		pages[i] = page.NewFreeFrame()
		freeList.Enqueue(FrameID(i))
	}

	pageTable := hash.NewExtendibleHashTable[types.PageID, FrameID](common.BucketSize, func(pageID types.PageID) uint64 {
		return hash.GenHashMurMur64(pageID.Serialize())
	})
	replacer := NewLRUKReplacer(poolSize, replacerK)

	return &BufferPoolManager{
		diskManager: diskManager,
		pages:       pages,
		replacer:    replacer,
		freeList:    freeList,
		pageTable:   pageTable,
		nextPageID:  0,
		log_manager: logManager,
	}
}

// NewPage pins a vacant frame to a freshly allocated page id and returns it
// zero-cleared. nil means every frame is pinned.
func (b *BufferPoolManager) NewPage() *page.Page {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	frameID, ok := b.acquireFrame()
	if !ok {
		return nil // the buffer is full and nothing is evictable
	}

	pageID := b.allocatePage()
	pg := b.pages[frameID]
	pg.ResetMemory()
	pg.SetPageId(pageID)
	pg.SetIsDirty(false)
	pg.SetPinCount(1)

	b.replacer.RecordAccess(frameID)
	b.replacer.SetEvictable(frameID, false)

	b.pageTable.Insert(pageID, frameID)

	if common.EnableDebug {
		common.ShPrintf(common.DEBUG_INFO, "NewPage: returned pageID: %d\n", pageID)
	}
	return pg
}

// FetchPage returns the requested page pinned, reading it from disk when it
// is not resident. nil means every frame is pinned or the disk read failed,
// for example because the page was deallocated.
func (b *BufferPoolManager) FetchPage(pageID types.PageID) *page.Page {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if frameID, found := b.pageTable.Find(pageID); found {
		pg := b.pages[frameID]
		pg.IncPinCount()
		b.replacer.RecordAccess(frameID)
		b.replacer.SetEvictable(frameID, false)
		if common.EnableDebug {
			common.ShPrintf(common.DEBUG_INFO, "FetchPage: PageId=%d PinCount=%d\n", pg.GetPageId(), pg.PinCount())
		}
		return pg
	}

	frameID, ok := b.acquireFrame()
	if !ok {
		return nil
	}

	pg := b.pages[frameID]
	pg.ResetMemory()
	pg.SetPageId(pageID)
	pg.SetIsDirty(false)
	pg.SetPinCount(1)
	b.pageTable.Insert(pageID, frameID)

	if common.EnableDebug && common.ActiveLogKindSetting&common.CACHE_OUT_IN_INFO > 0 {
		common.ShPrintf(common.DEBUG_INFO, "FetchPage: cache in occurs! requested pageId:%d\n", pageID)
	}

	data := directio.AlignedBlock(common.PageSize)
	if err := b.diskManager.ReadPage(pageID, data); err != nil {
		b.undoFrameAssignment(pageID, frameID)
		if err == types.DeallocatedPageErr {
			// target page was already deallocated
			return nil
		}
		common.ShPrintf(common.ERROR, "FetchPage: ReadPage failed: %v\n", err)
		return nil
	}
	pg.Copy(0, data)

	b.replacer.RecordAccess(frameID)
	b.replacer.SetEvictable(frameID, false)

	return pg
}

// undoFrameAssignment rolls a frame back to the free list after a failed read
func (b *BufferPoolManager) undoFrameAssignment(pageID types.PageID, frameID FrameID) {
	b.pageTable.Remove(pageID)
	pg := b.pages[frameID]
	pg.SetPageId(types.InvalidPageID)
	pg.SetPinCount(0)
	b.replacer.SetEvictable(frameID, true)
	b.replacer.Remove(frameID)
	b.freeList.Enqueue(frameID)
}

// UnpinPage drops one pin of the page. At pin count zero the frame becomes
// evictable. isDirty ORs into the frame's dirty flag, it never clears it.
func (b *BufferPoolManager) UnpinPage(pageID types.PageID, isDirty bool) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	frameID, found := b.pageTable.Find(pageID)
	if !found {
		return false
	}

	pg := b.pages[frameID]
	if pg.PinCount() == 0 {
		return false
	}

	pg.DecPinCount()
	if pg.PinCount() == 0 {
		b.replacer.SetEvictable(frameID, true)
	}
	if isDirty {
		pg.SetIsDirty(true)
	}

	if common.EnableDebug {
		common.ShPrintf(common.DEBUG_INFO, "UnpinPage: PageId=%d PinCount=%d\n", pg.GetPageId(), pg.PinCount())
	}
	return true
}

// FlushPage writes the page through to disk, keeping it resident
func (b *BufferPoolManager) FlushPage(pageID types.PageID) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if !pageID.IsValid() {
		return false
	}

	frameID, found := b.pageTable.Find(pageID)
	if !found {
		return false
	}

	pg := b.pages[frameID]
	data := pg.Data()
	if err := b.diskManager.WritePage(pageID, data[:]); err != nil {
		common.ShPrintf(common.ERROR, "FlushPage: WritePage failed: %v\n", err)
		return false
	}
	pg.SetIsDirty(false)

	return true
}

// FlushAllPages writes every resident page through to disk
func (b *BufferPoolManager) FlushAllPages() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, pg := range b.pages {
		if !pg.GetPageId().IsValid() {
			continue
		}
		if err := b.diskManager.WritePage(pg.GetPageId(), pg.Data()[:]); err != nil {
			common.ShPrintf(common.ERROR, "FlushAllPages: WritePage failed: %v\n", err)
			continue
		}
		pg.SetIsDirty(false)
	}
}

// FlushAllDirtyPages writes every dirty resident page through to disk
func (b *BufferPoolManager) FlushAllDirtyPages() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, pg := range b.pages {
		if !pg.GetPageId().IsValid() || !pg.IsDirty() {
			continue
		}
		if err := b.diskManager.WritePage(pg.GetPageId(), pg.Data()[:]); err != nil {
			common.ShPrintf(common.ERROR, "FlushAllDirtyPages: WritePage failed: %v\n", err)
			return false
		}
		pg.SetIsDirty(false)
	}
	return true
}

// DeletePage evicts the page from the pool and tells the disk manager its id
// is free. Absent pages succeed with nothing to do; pinned pages fail.
func (b *BufferPoolManager) DeletePage(pageID types.PageID) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	frameID, found := b.pageTable.Find(pageID)
	if !found {
		return true
	}

	pg := b.pages[frameID]
	if pg.PinCount() > 0 {
		return false
	}

	if pg.IsDirty() {
		b.flushLog()
		if err := b.diskManager.WritePage(pageID, pg.Data()[:]); err != nil {
			common.ShPrintf(common.ERROR, "DeletePage: WritePage failed: %v\n", err)
			return false
		}
		pg.SetIsDirty(false)
	}

	b.replacer.SetEvictable(frameID, true)
	b.replacer.Remove(frameID)
	b.pageTable.Remove(pageID)
	pg.ResetMemory()
	pg.SetPageId(types.InvalidPageID)
	b.freeList.Enqueue(frameID)

	b.diskManager.DeallocatePage(pageID)

	return true
}

// acquireFrame hands out a frame for a new resident page, preferring the free
// list and falling back to eviction. A dirty victim is written back and its
// page table entry removed before the frame is reused.
func (b *BufferPoolManager) acquireFrame() (FrameID, bool) {
	if b.freeList.Len() > 0 {
		return b.freeList.Dequeue().(FrameID), true
	}

	frameID, ok := b.replacer.Evict()
	if !ok {
		return 0, false
	}

	victim := b.pages[frameID]
	if victim.PinCount() != 0 {
		common.RuntimeStack()
		panic(fmt.Sprintf("BPM::acquireFrame pin count of page to be cached out must be zero!!! pageId:%d PinCount:%d", victim.GetPageId(), victim.PinCount()))
	}

	if common.EnableDebug && common.ActiveLogKindSetting&common.CACHE_OUT_IN_INFO > 0 {
		common.ShPrintf(common.DEBUG_INFO, "BPM::acquireFrame cache out occurs! pageId:%d\n", victim.GetPageId())
	}

	if victim.IsDirty() {
		b.flushLog()
		data := victim.Data()
		if err := b.diskManager.WritePage(victim.GetPageId(), data[:]); err != nil {
			common.RuntimeStack()
			panic(fmt.Sprintf("BPM::acquireFrame write back of page %d failed: %v", victim.GetPageId(), err))
		}
	}

	b.pageTable.Remove(victim.GetPageId())
	return frameID, true
}

// flushLog persists the log ahead of a dirty page write
func (b *BufferPoolManager) flushLog() {
	if b.log_manager != nil {
		b.log_manager.Flush()
	}
}

func (b *BufferPoolManager) allocatePage() types.PageID {
	ret := b.nextPageID
	b.nextPageID++
	return ret
}

// Size returns the number of frames the pool owns
func (b *BufferPoolManager) Size() uint32 {
	return uint32(len(b.pages))
}

// GetPoolSize returns the number of frames the pool owns
func (b *BufferPoolManager) GetPoolSize() uint32 {
	return uint32(len(b.pages))
}

func (b *BufferPoolManager) GetPages() []*page.Page {
	return b.pages
}

func (b *BufferPoolManager) PrintReplacerInternalState() {
	b.replacer.PrintList()
}

// PrintBufferUsageState dumps the pinned residents, sorted by page id
func (b *BufferPoolManager) PrintBufferUsageState(callerAdditionalInfo string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	var pinned []*page.Page
	for _, pg := range b.pages {
		if pg.GetPageId().IsValid() && pg.PinCount() > 0 {
			pinned = append(pinned, pg)
		}
	}
	sort.Slice(pinned, func(i, j int) bool { return pinned[i].GetPageId() < pinned[j].GetPageId() })

	printStr := fmt.Sprintf("BPM::PrintBufferUsageState %s ", callerAdditionalInfo)
	for _, pg := range pinned {
		printStr += fmt.Sprintf("(%d,%d)-", pg.GetPageId(), pg.PinCount())
	}
	common.ShPrintf(common.DEBUG_INFO, "%s\n", printStr)
}
