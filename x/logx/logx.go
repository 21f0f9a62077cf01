// Package logx is a small line logger for boot code.
//
// Lines look like
//
//	[bringup] clocks ready sys_hz=125000000 usb_hz=48000000
//
// Values are formatted without fmt or strconv so the logger is usable on MCU
// builds before the heap is warm. Only a fixed set of value types is supported;
// anything else is printed as "?".
package logx

import (
	"io"

	"gfxpack-go/x/conv"
)

// Output is the writer used by loggers created with a nil writer.
// Set this from the platform bootstrap (e.g. a UART writer).
var Output io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Hex marks a value to be printed as 0xNN.
type Hex uint8

// Logger writes tagged key/value lines. It is not safe for concurrent use;
// boot code is single-threaded.
type Logger struct {
	w   io.Writer
	tag string
	buf []byte
}

// New returns a logger writing to w (or to Output when w is nil).
func New(w io.Writer, tag string) *Logger {
	return &Logger{w: w, tag: tag, buf: make([]byte, 0, 96)}
}

// With returns a logger sharing the writer under a different tag.
func (l *Logger) With(tag string) *Logger {
	if l == nil {
		return nil
	}
	return New(l.w, tag)
}

func (l *Logger) Info(msg string, kv ...any)  { l.line("", msg, kv) }
func (l *Logger) Error(msg string, kv ...any) { l.line("error: ", msg, kv) }

func (l *Logger) line(level, msg string, kv []any) {
	if l == nil {
		return
	}
	b := l.buf[:0]
	b = append(b, '[')
	b = append(b, l.tag...)
	b = append(b, "] "...)
	b = append(b, level...)
	b = append(b, msg...)
	for i := 0; i+1 < len(kv); i += 2 {
		b = append(b, ' ')
		if k, ok := kv[i].(string); ok {
			b = append(b, k...)
		} else {
			b = append(b, '?')
		}
		b = append(b, '=')
		b = appendValue(b, kv[i+1])
	}
	if len(kv)%2 == 1 {
		b = append(b, " !odd="...)
		b = appendValue(b, kv[len(kv)-1])
	}
	b = append(b, '\n')
	l.buf = b

	w := l.w
	if w == nil {
		w = Output
	}
	_, _ = w.Write(b)
}

func appendValue(b []byte, v any) []byte {
	switch x := v.(type) {
	case string:
		return append(b, x...)
	case error:
		if x == nil {
			return append(b, "nil"...)
		}
		return append(b, x.Error()...)
	case bool:
		if x {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case Hex:
		return conv.AppendHex(b, uint32(x), 2)
	case int:
		return conv.AppendInt(b, int64(x))
	case int32:
		return conv.AppendInt(b, int64(x))
	case int64:
		return conv.AppendInt(b, x)
	case uint8:
		return conv.AppendUint(b, uint64(x))
	case uint16:
		return conv.AppendUint(b, uint64(x))
	case uint32:
		return conv.AppendUint(b, uint64(x))
	case uint64:
		return conv.AppendUint(b, x)
	case nil:
		return append(b, "nil"...)
	default:
		return append(b, '?')
	}
}
