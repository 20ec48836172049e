package page

import (
	"sync/atomic"

	"github.com/SpiritDemon-max/bustub-2022fall/common"
	"github.com/SpiritDemon-max/bustub-2022fall/types"
)

const SizePageHeader = 8
const OffsetPageStart = 0
const OffsetLSN = 4

/**
 * Page is the basic unit of storage within the database system. Page provides a wrapper for actual data pages being
 * held in main memory. Page also contains book-keeping information that is used by the buffer pool manager, e.g.
 * pin count, dirty flag, page id, etc.
 */
type Page struct {
	id       types.PageID // identifies the page. It is used to find the offset of the page on disk
	pinCount int32        // counts how many goroutines are accessing it
	isDirty  bool         // the page was modified but not flushed
	data     *[common.PageSize]byte
	rwlatch_ common.ReaderWriterLatch
}

// IncPinCount increments pin count
func (p *Page) IncPinCount() {
	atomic.AddInt32(&p.pinCount, 1)
}

// DecPinCount decrements pin count
func (p *Page) DecPinCount() {
	atomic.AddInt32(&p.pinCount, -1)
}

// PinCount returns the pin count
func (p *Page) PinCount() int32 {
	return atomic.LoadInt32(&p.pinCount)
}

// SetPinCount overwrites the pin count. Only the buffer pool manager should do this,
// while it re-initializes a frame for a new resident page.
func (p *Page) SetPinCount(count int32) {
	atomic.StoreInt32(&p.pinCount, count)
}

// GetPageId returns the page id
func (p *Page) GetPageId() types.PageID {
	return p.id
}

// SetPageId overwrites the page id of the frame
func (p *Page) SetPageId(id types.PageID) {
	p.id = id
}

// Data returns the data of the page
func (p *Page) Data() *[common.PageSize]byte {
	return p.data
}

// SetIsDirty sets the isDirty bit
func (p *Page) SetIsDirty(isDirty bool) {
	p.isDirty = isDirty
}

// IsDirty checks if the page is dirty
func (p *Page) IsDirty() bool {
	return p.isDirty
}

// ResetMemory zero-clears the whole page buffer
func (p *Page) ResetMemory() {
	for i := range p.data {
		p.data[i] = 0
	}
}

// Copy copies data to the page's data
func (p *Page) Copy(offset uint32, data []byte) {
	copy(p.data[offset:], data)
}

func (p *Page) WLatch() {
	p.rwlatch_.WLock()
}

func (p *Page) WUnlatch() {
	p.rwlatch_.WUnlock()
}

func (p *Page) RLatch() {
	p.rwlatch_.RLock()
}

func (p *Page) RUnlatch() {
	p.rwlatch_.RUnlock()
}

/** @return the page LSN. */
func (p *Page) GetLSN() types.LSN {
	return types.NewLSNFromBytes(p.data[OffsetLSN : OffsetLSN+types.SizeOfLSN])
}

/** Sets the page LSN. */
func (p *Page) SetLSN(lsn types.LSN) {
	copy(p.data[OffsetLSN:OffsetLSN+types.SizeOfLSN], lsn.Serialize())
}

// New creates a page which already holds loaded content
func New(id types.PageID, isDirty bool, data *[common.PageSize]byte) *Page {
	return &Page{id, int32(1), isDirty, data, common.NewRWLatch()}
}

// NewEmpty creates a new pinned empty page
func NewEmpty(id types.PageID) *Page {
	return &Page{id, int32(1), false, &[common.PageSize]byte{}, common.NewRWLatch()}
}

// NewFreeFrame creates the unpinned vacant frame the buffer pool starts from
func NewFreeFrame() *Page {
	return &Page{types.InvalidPageID, int32(0), false, &[common.PageSize]byte{}, common.NewRWLatch()}
}
