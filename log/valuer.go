package log

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Valuer computes a log field's value lazily, from the logger's bound
// context, at the point Log is called rather than at With time.
type Valuer func(ctx context.Context) interface{}

// DefaultTimestamp reports the time Log was called.
var DefaultTimestamp = Valuer(func(_ context.Context) interface{} {
	return time.Now().Format("2006-01-02T15:04:05.000")
})

// DefaultCaller reports the file:line of the call site that triggered the
// log entry, skipping over the logger/fullLogger/global wrapper frames.
var DefaultCaller = Valuer(func(_ context.Context) interface{} {
	_, self, _, ok := runtime.Caller(0)
	if !ok {
		return "???"
	}
	pkgDir := filepath.Dir(self)
	for depth := 1; ; depth++ {
		_, file, line, ok := runtime.Caller(depth)
		if !ok {
			return "???"
		}
		if filepath.Dir(file) == pkgDir && !strings.HasSuffix(file, "_test.go") {
			continue
		}
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
})

func containsValuer(kvs []interface{}) bool {
	for i := 1; i < len(kvs); i += 2 {
		if _, ok := kvs[i].(Valuer); ok {
			return true
		}
	}
	return false
}

func calculateValues(ctx context.Context, keyvals []interface{}) {
	for i := 1; i < len(keyvals); i += 2 {
		if v, ok := keyvals[i].(Valuer); ok {
			keyvals[i] = v(ctx)
		}
	}
}
