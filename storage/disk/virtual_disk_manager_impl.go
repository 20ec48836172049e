package disk

import (
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dsnet/golib/memfile"
	"github.com/pkg/errors"

	"github.com/SpiritDemon-max/bustub-2022fall/common"
	"github.com/SpiritDemon-max/bustub-2022fall/types"
)

// VirtualDiskManagerImpl keeps the db and log files on memory. Tests which
// must not touch the filesystem use this in place of DiskManagerImpl.
type VirtualDiskManagerImpl struct {
	db           *memfile.File
	fileName     string
	log          *memfile.File
	fileName_log string
	nextPageID   types.PageID
	numWrites    uint64
	size         int64
	numFlushes   uint64
	dbFileMutex  *sync.Mutex
	logFileMutex *sync.Mutex
	deallocedIDs mapset.Set[types.PageID]
}

func NewVirtualDiskManagerImpl(dbFilename string) DiskManager {
	file := memfile.New(make([]byte, 0))

	period_idx := strings.LastIndex(dbFilename, ".")
	logfname_base := dbFilename[:period_idx]
	logfname := logfname_base + "." + "log"

	file_1 := memfile.New(make([]byte, 0))

	return &VirtualDiskManagerImpl{
		db:           file,
		fileName:     dbFilename,
		log:          file_1,
		fileName_log: logfname,
		nextPageID:   0,
		dbFileMutex:  new(sync.Mutex),
		logFileMutex: new(sync.Mutex),
		deallocedIDs: mapset.NewSet[types.PageID](),
	}
}

// ShutDown does nothing, the memory files simply become garbage
func (d *VirtualDiskManagerImpl) ShutDown() {
}

// WritePage writes a page to the memory file
func (d *VirtualDiskManagerImpl) WritePage(pageId types.PageID, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	offset := int64(pageId) * common.PageSize
	d.db.WriteAt(pageData, offset)

	if offset >= d.size {
		d.size = offset + int64(len(pageData))
	}
	d.numWrites += 1

	return nil
}

// ReadPage reads a page from the memory file. Reading a deallocated page
// fails with types.DeallocatedPageErr.
func (d *VirtualDiskManagerImpl) ReadPage(pageID types.PageID, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	if d.deallocedIDs.Contains(pageID) {
		return types.DeallocatedPageErr
	}

	offset := int64(pageID) * common.PageSize

	if offset >= d.size {
		// allocated but never written, hand out a zero-cleared page
		for i := range pageData {
			pageData[i] = 0
		}
		return nil
	}

	if _, err := d.db.ReadAt(pageData, offset); err != nil {
		return errors.Wrapf(err, "read of page %d failed", pageID)
	}
	return nil
}

// AllocatePage allocates a new page
func (d *VirtualDiskManagerImpl) AllocatePage() types.PageID {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	ret := d.nextPageID
	d.nextPageID++
	return ret
}

// DeallocatePage marks the page id free. Ids are not reused.
func (d *VirtualDiskManagerImpl) DeallocatePage(pageID types.PageID) {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	d.deallocedIDs.Add(pageID)
}

// GetNumWrites returns the number of page writes
func (d *VirtualDiskManagerImpl) GetNumWrites() uint64 {
	return d.numWrites
}

// Size returns the size of the memory db file
func (d *VirtualDiskManagerImpl) Size() int64 {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	return d.size
}

func (d *VirtualDiskManagerImpl) RemoveDBFile() {
	// do nothing
}

func (d *VirtualDiskManagerImpl) RemoveLogFile() {
	// do nothing
}

// WriteLog appends to the memory log file
func (d *VirtualDiskManagerImpl) WriteLog(log_data []byte) {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	d.numFlushes += 1
	d.log.Write(log_data)
}

// ReadLog reads from the memory log file starting at offset.
// false means the offset is already past the end.
func (d *VirtualDiskManagerImpl) ReadLog(log_data []byte, offset int32) bool {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	if int64(offset) >= int64(len(d.log.Bytes())) {
		return false
	}

	d.log.ReadAt(log_data, int64(offset))
	return true
}
