package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// NewFriendlyErrorHandler renders error records as short console messages:
//
//	Error: failed to fetch pending-approvals
//	  collection: pending-approvals
//	  error: connection refused
func NewFriendlyErrorHandler(w io.Writer) slog.Handler {
	return &friendlyHandler{w: w}
}

type friendlyHandler struct {
	w      io.Writer
	attrs  []slog.Attr
	prefix string
}

func (h *friendlyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *friendlyHandler) Handle(_ context.Context, record slog.Record) error {
	fields := map[string]string{}
	for _, a := range h.attrs {
		fields[h.prefix+a.Key] = valueString(a.Value)
	}
	record.Attrs(func(a slog.Attr) bool {
		fields[h.prefix+a.Key] = valueString(a.Value)
		return true
	})

	summary := strings.TrimSpace(record.Message)
	if summary == "" {
		summary = fields["error"]
	}
	if summary == "" {
		summary = "an unknown error occurred"
	}

	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", summary)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %s: %s\n", k, strings.TrimSpace(fields[k]))
	}

	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *friendlyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rv := *h
	rv.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &rv
}

func (h *friendlyHandler) WithGroup(name string) slog.Handler {
	rv := *h
	rv.prefix = h.prefix + name + "."
	return &rv
}

func valueString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))
		for _, a := range v.Group() {
			parts = append(parts, a.Key+"="+valueString(a.Value))
		}
		return strings.Join(parts, ", ")
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}
