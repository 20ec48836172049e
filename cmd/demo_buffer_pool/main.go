package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/SpiritDemon-max/bustub-2022fall/engine"
	"github.com/SpiritDemon-max/bustub-2022fall/types"
)

// exercises the buffer pool contract end to end against an on-memory disk,
// or against the settings of a YAML config file given as the first argument:
// new pages, write back on eviction, re-fetch and delete
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := engine.DefaultConfig()
	cfg.UseVirtualDisk = true
	cfg.PoolSize = 8
	if len(os.Args) > 1 {
		loaded, err := engine.LoadConfig(os.Args[1])
		if err != nil {
			log.Fatalf("config load failed: %v", err)
		}
		cfg = loaded
	}

	si := engine.NewStorageEngineInstance(cfg)
	defer si.Shutdown(true)
	bpm := si.GetBufferPoolManager()

	log.Infof("buffer pool with %d frames ready", bpm.GetPoolSize())

	// fill the whole pool with fresh pages and stamp each one
	pageIDs := make([]types.PageID, 0, cfg.PoolSize)
	for i := 0; i < cfg.PoolSize; i++ {
		pg := bpm.NewPage()
		if pg == nil {
			log.Fatal("pool handed out no page although frames are free")
		}
		pg.Copy(0, []byte{byte(pg.GetPageId())})
		pageIDs = append(pageIDs, pg.GetPageId())
		log.Infof("created and stamped page %d", pg.GetPageId())
	}

	if pg := bpm.NewPage(); pg != nil {
		log.Fatal("pool handed out a page although every frame is pinned")
	}
	log.Info("pool correctly refused a page while every frame is pinned")

	// release everything dirty, then churn the pool to force write backs
	for _, pageID := range pageIDs {
		bpm.UnpinPage(pageID, true)
	}
	for i := 0; i < cfg.PoolSize; i++ {
		pg := bpm.NewPage()
		log.Infof("churn: created page %d", pg.GetPageId())
		bpm.UnpinPage(pg.GetPageId(), false)
	}

	// the stamped pages must come back from disk intact
	for _, pageID := range pageIDs {
		pg := bpm.FetchPage(pageID)
		if pg == nil {
			log.Fatalf("fetch of page %d failed", pageID)
		}
		if pg.Data()[0] != byte(pageID) {
			log.Fatalf("page %d lost its stamp on the way through disk", pageID)
		}
		log.Infof("page %d round-tripped through disk", pageID)
		bpm.UnpinPage(pageID, false)
	}

	// deleting an unpinned page frees its frame
	if !bpm.DeletePage(pageIDs[0]) {
		log.Fatalf("delete of unpinned page %d failed", pageIDs[0])
	}
	log.Infof("deleted page %d, disk writes so far: %d", pageIDs[0], si.GetDiskManager().GetNumWrites())
}
