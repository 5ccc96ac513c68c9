package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05.000"

// Logger writes levelled, prefixed lines with trailing key=value fields.
// Derived loggers share the writer and its lock.
type Logger struct {
	mu       *sync.Mutex
	out      io.Writer
	level    Level
	prefix   string
	fields   map[string]any
	colorize bool
	caller   bool
	now      func() time.Time
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.out = w }
}

func WithLevel(level Level) Option {
	return func(l *Logger) { l.level = level }
}

func WithPrefix(prefix string) Option {
	return func(l *Logger) { l.prefix = prefix }
}

func WithColors(enabled bool) Option {
	return func(l *Logger) { l.colorize = enabled }
}

// WithCaller toggles the file:line tag. On by default.
func WithCaller(enabled bool) Option {
	return func(l *Logger) { l.caller = enabled }
}

// WithClock replaces the timestamp source, mostly for tests and replays.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

func New(opts ...Option) *Logger {
	l := &Logger{
		mu:       &sync.Mutex{},
		out:      os.Stdout,
		level:    INFO,
		fields:   map[string]any{},
		colorize: true,
		caller:   true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLogger = New()

func SetDefault(l *Logger) { defaultLogger = l }

func Default() *Logger { return defaultLogger }

func (l *Logger) derive(extra int) *Logger {
	n := *l
	n.fields = make(map[string]any, len(l.fields)+extra)
	for k, v := range l.fields {
		n.fields[k] = v
	}
	return &n
}

func (l *Logger) WithField(key string, value any) *Logger {
	n := l.derive(1)
	n.fields[key] = value
	return n
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	n := l.derive(len(fields))
	for k, v := range fields {
		n.fields[k] = v
	}
	return n
}

// WithPrefix replaces the prefix; prefixes do not nest.
func (l *Logger) WithPrefix(prefix string) *Logger {
	n := l.derive(0)
	n.prefix = prefix
	return n
}

func (l *Logger) Enabled(level Level) bool { return level >= l.level }

func (l *Logger) Debug(msg string, args ...any) { l.write(DEBUG, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.write(INFO, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.write(WARN, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.write(ERROR, msg, args) }

// write must be called directly from the level methods so the caller depth holds.
func (l *Logger) write(level Level, msg string, args []any) {
	if !l.Enabled(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var sb strings.Builder
	sb.WriteString(l.now().Format(timeLayout))
	sb.WriteByte(' ')
	sb.WriteString(level.label(l.colorize))
	sb.WriteByte(' ')
	if l.prefix != "" {
		fmt.Fprintf(&sb, "[%s] ", l.prefix)
	}
	if l.caller {
		if _, file, line, ok := runtime.Caller(2); ok {
			fmt.Fprintf(&sb, "[%s:%d] ", filepath.Base(file), line)
		}
	}
	sb.WriteString(msg)
	l.appendFields(&sb)
	sb.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, sb.String())
}

// appendFields writes fields in key order so lines diff cleanly.
func (l *Logger) appendFields(sb *strings.Builder) {
	if len(l.fields) == 0 {
		return
	}
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, " %s=%v", k, l.fields[k])
	}
}

type ctxKey struct{}

// FromContext returns the request- or job-scoped logger, or the default one.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return defaultLogger
}

func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
