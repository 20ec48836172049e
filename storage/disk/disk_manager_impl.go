package disk

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/SpiritDemon-max/bustub-2022fall/common"
	"github.com/SpiritDemon-max/bustub-2022fall/types"
)

// DiskManagerImpl is the disk implementation of DiskManager
type DiskManagerImpl struct {
	db           *os.File
	fileName     string
	log          *os.File
	fileName_log string
	nextPageID   types.PageID
	numWrites    uint64
	size         int64
	flush_log    bool
	numFlushes   uint64
}

// NewDiskManagerImpl returns a DiskManager instance backed by dbFilename and
// a sibling sequential log file
func NewDiskManagerImpl(dbFilename string) DiskManager {
	file, err := os.OpenFile(dbFilename, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		log.Fatalln("can't open db file")
		return nil
	}

	period_idx := strings.LastIndex(dbFilename, ".")
	logfname_base := dbFilename[:period_idx]
	logfname := logfname_base + "." + "log"
	file_1, err := os.OpenFile(logfname, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		log.Fatalln("can't open log file")
		return nil
	}

	fileInfo, err := file.Stat()
	if err != nil {
		log.Fatalln("file info error")
		return nil
	}

	fileInfo_1, err := file_1.Stat()
	if err != nil {
		log.Fatalln("file info error (log file)")
		return nil
	}

	file_1.Seek(fileInfo_1.Size(), io.SeekStart)

	fileSize := fileInfo.Size()
	nPages := fileSize / common.PageSize

	nextPageID := types.PageID(0)
	if nPages > 0 {
		nextPageID = types.PageID(int32(nPages + 1))
	}

	return &DiskManagerImpl{file, dbFilename, file_1, logfname, nextPageID, 0, fileSize, false, 0}
}

// ShutDown closes the database and log files
func (d *DiskManagerImpl) ShutDown() {
	d.db.Close()
	d.log.Close()
}

// WritePage writes a page to the database file
func (d *DiskManagerImpl) WritePage(pageId types.PageID, pageData []byte) error {
	offset := int64(pageId) * common.PageSize
	d.db.Seek(offset, io.SeekStart)
	bytesWritten, err := d.db.Write(pageData)
	if err != nil {
		return errors.Wrapf(err, "write of page %d failed", pageId)
	}

	if bytesWritten != common.PageSize {
		return errors.Errorf("bytes written (%d) of page %d not equals page size", bytesWritten, pageId)
	}

	if offset >= d.size {
		d.size = offset + int64(bytesWritten)
	}

	d.db.Sync()
	d.numWrites += 1
	return nil
}

// ReadPage reads a page from the database file. Reads short of a full page
// zero-fill the remainder, matching the behavior of reading a page which was
// allocated but never written.
func (d *DiskManagerImpl) ReadPage(pageID types.PageID, pageData []byte) error {
	offset := int64(pageID) * common.PageSize

	fileInfo, err := d.db.Stat()
	if err != nil {
		return errors.Wrap(err, "file info error")
	}

	if offset > fileInfo.Size() {
		return errors.Errorf("read of page %d past end of file", pageID)
	}

	d.db.Seek(offset, io.SeekStart)

	bytesRead, err := d.db.Read(pageData)
	if err != nil && err != io.EOF {
		return errors.Wrapf(err, "read of page %d failed", pageID)
	}

	if bytesRead < common.PageSize {
		for i := bytesRead; i < common.PageSize; i++ {
			pageData[i] = 0
		}
	}
	return nil
}

// AllocatePage allocates a new page
// For now just keep an increasing counter
func (d *DiskManagerImpl) AllocatePage() types.PageID {
	ret := d.nextPageID
	d.nextPageID++
	return ret
}

// DeallocatePage deallocates page
// Need bitmap in header page for tracking pages
// This does not actually need to do anything for now.
func (d *DiskManagerImpl) DeallocatePage(pageID types.PageID) {
}

// GetNumWrites returns the number of disk writes
func (d *DiskManagerImpl) GetNumWrites() uint64 {
	return d.numWrites
}

// Size returns the size of the file in disk
func (d *DiskManagerImpl) Size() int64 {
	return d.size
}

// ATTENTION: this method can be called after calling of ShutDown method
func (d *DiskManagerImpl) RemoveDBFile() {
	os.Remove(d.fileName)
}

// ATTENTION: this method can be called after calling of ShutDown method
func (d *DiskManagerImpl) RemoveLogFile() {
	os.Remove(d.fileName_log)
}

/**
 * Write the contents of the log into disk file
 * Only return when sync is done, and only perform sequence write
 */
func (d *DiskManagerImpl) WriteLog(log_data []byte) {
	d.flush_log = true

	d.numFlushes += 1
	_, err := d.log.Write(log_data)
	if err != nil {
		common.ShPrintf(common.ERROR, "I/O error while writing log\n")
		return
	}
	// needs to flush to keep disk file in sync
	d.log.Sync()
	d.flush_log = false
}

/**
* Read the contents of the log into the given memory area
* Reads sequentially, starting at offset bytes into the log file
* @return: false means already reach the end
 */
// Attention: len(log_data) specifies read data length
func (d *DiskManagerImpl) ReadLog(log_data []byte, offset int32) bool {
	if int64(offset) >= d.GetLogFileSize() {
		return false
	}

	d.log.Seek(int64(offset), io.SeekStart)
	readBytes, err := d.log.Read(log_data)
	if err != nil && err != io.EOF {
		common.ShPrintf(common.ERROR, "I/O error at log data reading\n")
		return false
	}

	if readBytes < len(log_data) {
		for i := readBytes; i < len(log_data); i++ {
			log_data[i] = 0
		}
	}

	return true
}

/**
 * Returns the size of the log file, or -1 when it cannot be determined
 */
func (d *DiskManagerImpl) GetLogFileSize() int64 {
	fileInfo, err := d.log.Stat()
	if err != nil {
		return -1
	}

	return fileInfo.Size()
}
