package hash

import (
	"github.com/spaolacci/murmur3"
)

// GenHashMurMur64 generates the stable 64-bit hash which extendible hash directories index by
func GenHashMurMur64(key []byte) uint64 {
	return murmur3.Sum64(key)
}
