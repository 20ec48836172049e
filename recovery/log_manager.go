package recovery

import (
	"github.com/SpiritDemon-max/bustub-2022fall/common"
	"github.com/SpiritDemon-max/bustub-2022fall/storage/disk"
	"github.com/SpiritDemon-max/bustub-2022fall/types"
)

/**
 * LogManager collects serialized log records on a memory buffer and writes
 * the buffer out through the disk manager's log file. The buffer pool flushes
 * the log before it writes back a dirty page it evicts or deletes. FlushPage,
 * FlushAllPages and FlushAllDirtyPages write pages without flushing the log.
 */
type LogManager struct {
	offset         uint32
	logBufferLSN   types.LSN
	nextLSN        types.LSN
	persistentLSN  types.LSN
	logBuffer      []byte
	flushBuffer    []byte
	latch          common.ReaderWriterLatch
	enabledLogging bool
	diskManager    *disk.DiskManager
}

func NewLogManager(diskManager *disk.DiskManager) *LogManager {
	ret := new(LogManager)
	ret.nextLSN = 0
	ret.persistentLSN = common.InvalidLSN
	ret.diskManager = diskManager
	ret.logBuffer = make([]byte, common.LogBufferSize)
	ret.flushBuffer = make([]byte, common.LogBufferSize)
	ret.latch = common.NewRWLatch()
	ret.offset = 0
	return ret
}

func (log_manager *LogManager) GetNextLSN() types.LSN       { return log_manager.nextLSN }
func (log_manager *LogManager) GetPersistentLSN() types.LSN { return log_manager.persistentLSN }

func (log_manager *LogManager) ActivateLogging()       { log_manager.enabledLogging = true }
func (log_manager *LogManager) DeactivateLogging()     { log_manager.enabledLogging = false }
func (log_manager *LogManager) IsEnabledLogging() bool { return log_manager.enabledLogging }

// Flush swaps the fill buffer out and writes the swapped-out content to the
// log file. Only returns when the disk manager's sync is done.
func (log_manager *LogManager) Flush() {
	if !log_manager.enabledLogging {
		return
	}

	log_manager.latch.WLock()

	lsn := log_manager.logBufferLSN
	offset := log_manager.offset
	log_manager.offset = 0

	// swap the two buffers so record appends do not wait on the write
	tmp_p := log_manager.flushBuffer
	log_manager.flushBuffer = log_manager.logBuffer
	log_manager.logBuffer = tmp_p

	log_manager.latch.WUnlock()

	if offset > 0 {
		(*log_manager.diskManager).WriteLog(log_manager.flushBuffer[:offset])
	}
	log_manager.persistentLSN = lsn
}

// AppendLogRecord copies an already-serialized record into the log buffer and
// assigns it the next sequence number. A full buffer is flushed first.
func (log_manager *LogManager) AppendLogRecord(record []byte) types.LSN {
	if !log_manager.enabledLogging {
		return common.InvalidLSN
	}

	if log_manager.offset+uint32(len(record)) > common.LogBufferSize {
		log_manager.Flush()
	}

	log_manager.latch.WLock()
	defer log_manager.latch.WUnlock()

	lsn := log_manager.nextLSN
	log_manager.nextLSN++
	copy(log_manager.logBuffer[log_manager.offset:], record)
	log_manager.offset += uint32(len(record))
	log_manager.logBufferLSN = lsn
	return lsn
}
