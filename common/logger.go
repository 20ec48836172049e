package common

import (
	"strings"

	"github.com/sirupsen/logrus"
)

type LogLevel int32

const (
	DEBUG_INFO_DETAIL LogLevel = 1
	DEBUG_INFO                 = 2
	RDB_OP_FUNC_CALL           = 4
	DEBUGGING                  = 8
	INFO                       = 16
	WARN                       = 32
	ERROR                      = 64
	FATAL                      = 128
)

var shLogger = newShLogger()

func newShLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.TraceLevel)
	return logger
}

// ShPrintf writes a formatted log line when logLevel is active in LogLevelSetting
func ShPrintf(logLevel LogLevel, fmtStr string, a ...interface{}) {
	if logLevel&LogLevelSetting == 0 {
		return
	}

	fmtStr = strings.TrimSuffix(fmtStr, "\n")
	switch {
	case logLevel >= ERROR:
		shLogger.Errorf(fmtStr, a...)
	case logLevel >= WARN:
		shLogger.Warnf(fmtStr, a...)
	case logLevel >= INFO:
		shLogger.Infof(fmtStr, a...)
	default:
		shLogger.Debugf(fmtStr, a...)
	}
}
