package prettylog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
)

var (
	debugColor = color.New(color.FgMagenta)
	infoColor  = color.New(color.FgBlue)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
	msgColor   = color.New(color.FgCyan)
	attrsColor = color.New(color.FgWhite)
)

// Handler writes human-readable colored records, one per line,
// with attributes as indented JSON. ReplaceAttr and AddSource are ignored.
type Handler struct {
	opts  slog.HandlerOptions
	w     io.Writer
	mu    *sync.Mutex
	chain []groupOrAttrs
}

// either a group name or a set of attributes
type groupOrAttrs struct {
	group string
	attrs []slog.Attr
}

func NewHandler(opts *slog.HandlerOptions) *Handler {
	return New(os.Stdout, opts)
}

func New(w io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{w: w, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs())
	current := fields
	for _, g := range h.chain {
		if len(g.group) > 0 {
			sub := make(map[string]any)
			current[g.group] = sub
			current = sub
			continue
		}
		for _, a := range g.attrs {
			addAttr(current, a)
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(current, a)
		return true
	})

	line := fmt.Sprintf("%v %v %v",
		r.Time.Format("[15:04:05.000]"),
		levelColor(r.Level).Sprint(r.Level.String()+":"),
		msgColor.Sprint(r.Message),
	)

	if len(fields) > 0 {
		data, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			data = []byte(fmt.Sprint(fields))
		}
		line += " " + attrsColor.Sprint(string(data))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line+"\n")
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(groupOrAttrs{attrs: attrs})
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if len(name) == 0 {
		return h
	}
	return h.with(groupOrAttrs{group: name})
}

func (h *Handler) with(g groupOrAttrs) *Handler {
	h2 := *h
	h2.chain = make([]groupOrAttrs, len(h.chain)+1)
	copy(h2.chain, h.chain)
	h2.chain[len(h.chain)] = g
	return &h2
}

func levelColor(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return errorColor
	case l >= slog.LevelWarn:
		return warnColor
	case l >= slog.LevelInfo:
		return infoColor
	default:
		return debugColor
	}
}

func addAttr(m map[string]any, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return
		}
		target := m
		if len(a.Key) > 0 {
			target = make(map[string]any, len(attrs))
			m[a.Key] = target
		}
		for _, ga := range attrs {
			addAttr(target, ga)
		}
	case slog.KindTime:
		m[a.Key] = a.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		m[a.Key] = a.Value.Duration().String()
	default:
		v := a.Value.Any()
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		m[a.Key] = v
	}
}
