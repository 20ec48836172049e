package engine

import (
	"github.com/SpiritDemon-max/bustub-2022fall/recovery"
	"github.com/SpiritDemon-max/bustub-2022fall/storage/buffer"
	"github.com/SpiritDemon-max/bustub-2022fall/storage/disk"
)

// StorageEngineInstance bundles a disk manager, a log manager and the buffer
// pool over them. It is the composition root embedders start from.
type StorageEngineInstance struct {
	disk_manager disk.DiskManager
	log_manager  *recovery.LogManager
	bpm          *buffer.BufferPoolManager
}

func NewStorageEngineInstance(cfg *StorageEngineConfig) *StorageEngineInstance {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var disk_manager disk.DiskManager
	if cfg.UseVirtualDisk {
		disk_manager = disk.NewVirtualDiskManagerImpl(cfg.DBFilename)
	} else {
		disk_manager = disk.NewDiskManagerImpl(cfg.DBFilename)
	}
	log_manager := recovery.NewLogManager(&disk_manager)
	bpm := buffer.NewBufferPoolManager(uint32(cfg.PoolSize), disk_manager, uint32(cfg.ReplacerK), log_manager)

	return &StorageEngineInstance{disk_manager, log_manager, bpm}
}

// NewStorageEngineInstanceForTesting keeps everything on memory
func NewStorageEngineInstanceForTesting() *StorageEngineInstance {
	cfg := DefaultConfig()
	cfg.DBFilename = "test.db"
	cfg.UseVirtualDisk = true
	return NewStorageEngineInstance(cfg)
}

func (si *StorageEngineInstance) GetDiskManager() disk.DiskManager {
	return si.disk_manager
}

func (si *StorageEngineInstance) GetLogManager() *recovery.LogManager {
	return si.log_manager
}

func (si *StorageEngineInstance) GetBufferPoolManager() *buffer.BufferPoolManager {
	return si.bpm
}

// Shutdown flushes dirty pages, closes the disk manager and optionally
// removes the db and log files
func (si *StorageEngineInstance) Shutdown(isRemoveFiles bool) {
	si.bpm.FlushAllDirtyPages()
	si.disk_manager.ShutDown()
	if isRemoveFiles {
		si.disk_manager.RemoveDBFile()
		si.disk_manager.RemoveLogFile()
	}
}
