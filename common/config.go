package common

var EnableDebug bool = false

const (
	// invalid log sequence number
	InvalidLSN = -1
	// size of a data page in byte
	PageSize = 4096
	// number of log buffer pages
	LogBufferPoolSize = 32
	// size of a log buffer in byte
	LogBufferSize = ((LogBufferPoolSize + 1) * PageSize)
	// max entries of an extendible hash bucket before split
	BucketSize = 50
	// K of the LRU-K replacer when a caller does not choose one
	DefaultReplacerK = 2
	// frame num of buffer pool which tests use
	BufferPoolMaxFrameNumForTest = 32
)

type LogKind int32

const (
	CACHE_OUT_IN_INFO LogKind = 1 << iota
)

// kinds of debug log output which are active when EnableDebug is true
var ActiveLogKindSetting LogKind = CACHE_OUT_IN_INFO

// levels of log output which are written out
var LogLevelSetting LogLevel = INFO | WARN | ERROR | FATAL
