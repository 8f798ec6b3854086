package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

var _ Logger = (*stdLogger)(nil)

// stdLogger writes "LEVEL key=val key=val\n" lines to an io.Writer.
type stdLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdLogger builds a Logger that formats each entry as a single line
// and writes it to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Log(level Level, kvs ...interface{}) {
	if len(kvs) == 0 {
		return
	}
	if len(kvs)&1 != 0 {
		kvs = append(kvs, "KEYVALS UNPAIRED")
	}

	buf := &bytes.Buffer{}
	buf.WriteString(level.String())
	for i := 0; i < len(kvs); i += 2 {
		buf.WriteByte(' ')
		fmt.Fprintf(buf, "%v=%v", kvs[i], kvs[i+1])
	}
	buf.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(buf.Bytes())
}
