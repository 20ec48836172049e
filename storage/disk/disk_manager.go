package disk

import (
	"github.com/SpiritDemon-max/bustub-2022fall/types"
)

// DiskManager is responsible for interacting with disk
type DiskManager interface {
	ReadPage(types.PageID, []byte) error
	WritePage(types.PageID, []byte) error
	AllocatePage() types.PageID
	DeallocatePage(types.PageID)
	GetNumWrites() uint64
	ShutDown()
	Size() int64
	WriteLog([]byte)
	ReadLog([]byte, int32) bool
	RemoveDBFile()
	RemoveLogFile()
}
