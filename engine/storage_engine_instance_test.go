package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SpiritDemon-max/bustub-2022fall/common"
)

func TestInstanceLifecycle(t *testing.T) {
	si := NewStorageEngineInstanceForTesting()
	defer si.Shutdown(true)

	bpm := si.GetBufferPoolManager()
	require.NotNil(t, bpm)
	require.Equal(t, uint32(common.BufferPoolMaxFrameNumForTest), bpm.GetPoolSize())

	pg := bpm.NewPage()
	require.NotNil(t, pg)
	pg.Copy(0, []byte("payload"))
	require.True(t, bpm.UnpinPage(pg.GetPageId(), true))

	require.True(t, bpm.FlushPage(pg.GetPageId()))
	require.Greater(t, si.GetDiskManager().GetNumWrites(), uint64(0))
}

func TestLogManagerAppendAndFlush(t *testing.T) {
	si := NewStorageEngineInstanceForTesting()
	defer si.Shutdown(true)

	lm := si.GetLogManager()
	require.False(t, lm.IsEnabledLogging())

	lm.ActivateLogging()
	require.True(t, lm.IsEnabledLogging())

	lsn := lm.AppendLogRecord([]byte("a record"))
	require.GreaterOrEqual(t, int32(lsn), int32(0))
	lm.Flush()
	require.Equal(t, lsn, lm.GetPersistentLSN())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, common.BufferPoolMaxFrameNumForTest, cfg.PoolSize)
	require.Equal(t, common.DefaultReplacerK, cfg.ReplacerK)
	require.False(t, cfg.UseVirtualDisk)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	content := []byte("db_filename: custom.db\npool_size: 64\nuse_virtual_disk: true\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "custom.db", cfg.DBFilename)
	require.Equal(t, 64, cfg.PoolSize)
	require.True(t, cfg.UseVirtualDisk)
	// absent keys fall back to defaults
	require.Equal(t, common.DefaultReplacerK, cfg.ReplacerK)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
