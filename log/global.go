package log

import (
	"context"
	"fmt"
	"os"
)

var (
	global       Logger
	filterLevels = make(map[Level]struct{})
)

func init() {
	global = defaultLogger
}

// SetLogger replace default std logger
func SetLogger(l Logger) {
	global = l
}

// GetLogger returns global logger
func GetLogger() Logger {
	return global
}

// FilterLevel sets not logging level
func FilterLevel(level ...Level) {
	for _, l := range level {
		switch l {
		case LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal:
			filterLevels[l] = struct{}{}
		default:
		}
	}
}

// NewContextLogger returns a FullLogger with context
// and the context only effects on FullLogger
func NewContextLogger(ctx context.Context) FullLogger {
	l, _ := WithContext(ctx, global)
	return &fullLogger{l: l.(*logger)}
}

func Log(level Level, kvs ...interface{}) {
	global.Log(level, kvs...)
}

// globalMsg, globalMsgf, and globalMsgw are the shared bodies behind the
// package-level Debug/Info/Warn/Error/Fatal family, mirroring fullLogger's
// msg/msgf/msgw in log.go.
func globalMsg(level Level, v ...interface{}) {
	global.Log(level, DefaultMsgKey, fmt.Sprint(v...))
}

func globalMsgf(level Level, format string, v ...interface{}) {
	global.Log(level, DefaultMsgKey, fmt.Sprintf(format, v...))
}

func globalMsgw(level Level, kvs ...interface{}) {
	global.Log(level, kvs...)
}

func Debug(v ...interface{})                 { globalMsg(LevelDebug, v...) }
func Debugf(format string, v ...interface{}) { globalMsgf(LevelDebug, format, v...) }
func Debugw(kvs ...interface{})               { globalMsgw(LevelDebug, kvs...) }

func Info(v ...interface{})                 { globalMsg(LevelInfo, v...) }
func Infof(format string, v ...interface{}) { globalMsgf(LevelInfo, format, v...) }
func Infow(kvs ...interface{})               { globalMsgw(LevelInfo, kvs...) }

func Warn(v ...interface{})                 { globalMsg(LevelWarn, v...) }
func Warnf(format string, v ...interface{}) { globalMsgf(LevelWarn, format, v...) }
func Warnw(kvs ...interface{})               { globalMsgw(LevelWarn, kvs...) }

func Error(v ...interface{})                 { globalMsg(LevelError, v...) }
func Errorf(format string, v ...interface{}) { globalMsgf(LevelError, format, v...) }
func Errorw(kvs ...interface{})               { globalMsgw(LevelError, kvs...) }

func Fatal(v ...interface{}) {
	globalMsg(LevelFatal, v...)
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	globalMsgf(LevelFatal, format, v...)
	os.Exit(1)
}

func Fatalw(kvs ...interface{}) {
	globalMsgw(LevelFatal, kvs...)
	os.Exit(1)
}
