package disk

import (
	"testing"

	"github.com/SpiritDemon-max/bustub-2022fall/common"
	testingpkg "github.com/SpiritDemon-max/bustub-2022fall/testing/testing_assert"
	"github.com/SpiritDemon-max/bustub-2022fall/types"
)

func TestReadWritePage(t *testing.T) {
	dm := NewDiskManagerTest()
	defer dm.ShutDown()

	data := make([]byte, common.PageSize)
	buffer := make([]byte, common.PageSize)

	copy(data, "A test string.")

	dm.ReadPage(0, buffer) // tolerate empty read
	dm.WritePage(0, data)
	testingpkg.Ok(t, dm.ReadPage(0, buffer))
	testingpkg.Equals(t, data, buffer)

	memset(buffer, 0)
	copy(data, "Another test string.")

	dm.WritePage(5, data)
	testingpkg.Ok(t, dm.ReadPage(5, buffer))
	testingpkg.Equals(t, data, buffer)

	// a page between two written ones reads back zero-cleared
	memset(buffer, 'x')
	testingpkg.Ok(t, dm.ReadPage(3, buffer))
	testingpkg.Equals(t, make([]byte, common.PageSize), buffer)

	testingpkg.Equals(t, uint64(2), dm.GetNumWrites())
}

func TestAllocatePage(t *testing.T) {
	dm := NewDiskManagerTest()
	defer dm.ShutDown()

	testingpkg.Equals(t, types.PageID(0), dm.AllocatePage())
	testingpkg.Equals(t, types.PageID(1), dm.AllocatePage())
	testingpkg.Equals(t, types.PageID(2), dm.AllocatePage())
}

func TestVirtualReadWritePage(t *testing.T) {
	dm := NewVirtualDiskManagerImpl("test.db")
	defer dm.ShutDown()

	data := make([]byte, common.PageSize)
	buffer := make([]byte, common.PageSize)

	copy(data, "A test string.")

	dm.WritePage(0, data)
	testingpkg.Ok(t, dm.ReadPage(0, buffer))
	testingpkg.Equals(t, data, buffer)

	// a page which was never written reads back zero-cleared
	memset(buffer, 'x')
	testingpkg.Ok(t, dm.ReadPage(7, buffer))
	testingpkg.Equals(t, make([]byte, common.PageSize), buffer)
}

func TestVirtualDeallocatedPageRead(t *testing.T) {
	dm := NewVirtualDiskManagerImpl("test.db")
	defer dm.ShutDown()

	data := make([]byte, common.PageSize)
	buffer := make([]byte, common.PageSize)
	copy(data, "doomed")

	pageID := dm.AllocatePage()
	dm.WritePage(pageID, data)
	dm.DeallocatePage(pageID)

	err := dm.ReadPage(pageID, buffer)
	testingpkg.Nok(t, err)
	testingpkg.Equals(t, types.DeallocatedPageErr, err)
}

func TestWriteReadLog(t *testing.T) {
	dm := NewDiskManagerTest()
	defer dm.ShutDown()

	logData := []byte("a log record payload")
	dm.WriteLog(logData)

	buffer := make([]byte, len(logData))
	testingpkg.Assert(t, dm.ReadLog(buffer, 0), "log read inside the file must succeed")
	testingpkg.Equals(t, logData, buffer)

	testingpkg.Assert(t, !dm.ReadLog(buffer, int32(len(logData))), "log read past the end must fail")
}

func memset(buffer []byte, value byte) {
	for i := range buffer {
		buffer[i] = value
	}
}
