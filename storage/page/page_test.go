package page

import (
	"testing"

	testingpkg "github.com/SpiritDemon-max/bustub-2022fall/testing/testing_assert"
	"github.com/SpiritDemon-max/bustub-2022fall/types"
)

func TestPinCount(t *testing.T) {
	pg := NewEmpty(types.PageID(0))
	testingpkg.Equals(t, int32(1), pg.PinCount())

	pg.IncPinCount()
	pg.IncPinCount()
	testingpkg.Equals(t, int32(3), pg.PinCount())

	pg.DecPinCount()
	pg.DecPinCount()
	pg.DecPinCount()
	testingpkg.Equals(t, int32(0), pg.PinCount())

	pg.SetPinCount(1)
	testingpkg.Equals(t, int32(1), pg.PinCount())
}

func TestFreeFrameStartsVacant(t *testing.T) {
	pg := NewFreeFrame()
	testingpkg.Equals(t, types.InvalidPageID, pg.GetPageId())
	testingpkg.Equals(t, int32(0), pg.PinCount())
	testingpkg.Assert(t, !pg.IsDirty(), "a vacant frame must not be dirty")
}

func TestResetMemory(t *testing.T) {
	pg := NewEmpty(types.PageID(3))
	pg.Copy(0, []byte("some payload"))
	testingpkg.Equals(t, byte('s'), pg.Data()[0])

	pg.ResetMemory()
	testingpkg.Equals(t, byte(0), pg.Data()[0])
	testingpkg.Equals(t, byte(0), pg.Data()[11])
}

func TestLSNRoundTrip(t *testing.T) {
	pg := NewEmpty(types.PageID(0))
	pg.SetLSN(types.LSN(42))
	testingpkg.Equals(t, types.LSN(42), pg.GetLSN())
}
