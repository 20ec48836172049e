package engine

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/SpiritDemon-max/bustub-2022fall/common"
)

// StorageEngineConfig are the settings of one storage engine instance
type StorageEngineConfig struct {
	DBFilename     string `mapstructure:"db_filename"`
	PoolSize       int    `mapstructure:"pool_size"`
	ReplacerK      int    `mapstructure:"replacer_k"`
	UseVirtualDisk bool   `mapstructure:"use_virtual_disk"`
}

// DefaultConfig returns the settings used when no config file is given
func DefaultConfig() *StorageEngineConfig {
	return &StorageEngineConfig{
		DBFilename:     "storage_engine.db",
		PoolSize:       common.BufferPoolMaxFrameNumForTest,
		ReplacerK:      common.DefaultReplacerK,
		UseVirtualDisk: false,
	}
}

// LoadConfig reads a YAML config file, falling back to defaults for absent keys
func LoadConfig(path string) (*StorageEngineConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := DefaultConfig()
	v.SetDefault("db_filename", defaults.DBFilename)
	v.SetDefault("pool_size", defaults.PoolSize)
	v.SetDefault("replacer_k", defaults.ReplacerK)
	v.SetDefault("use_virtual_disk", defaults.UseVirtualDisk)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg StorageEngineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
