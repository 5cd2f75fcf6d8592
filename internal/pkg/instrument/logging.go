package instrument

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/trace"
)

// SetupLogging installs the default slog logger: JSON on stdout with
// sensitive keys masked, each record tagged with the service, correlation id
// and trace ids, and copied to the OTel log provider when lp is not nil.
func SetupLogging(serviceName, level string, lp *sdklog.LoggerProvider, maskFields []string) {
	slog.SetDefault(slog.New(newHandler(os.Stdout, serviceName, level, lp, maskFields)))
}

func newHandler(w io.Writer, serviceName, level string, lp *sdklog.LoggerProvider, maskFields []string) slog.Handler {
	var out slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       parseLevel(level),
		AddSource:   true,
		ReplaceAttr: renameAttr,
	})
	if lp != nil {
		out = fanout{out, otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(lp))}
	}

	return &maskHandler{
		next:   &contextHandler{Handler: out, service: serviceName},
		masker: NewMasker(maskFields...),
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// renameAttr shortens the built-in keys and rewrites the source to a
// module-relative "internal/...:line". Frames outside internal/ are dropped.
func renameAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		idx := strings.LastIndex(src.File, "/internal/")
		if idx < 0 {
			return slog.Attr{}
		}
		return slog.String("file", src.File[idx+1:]+":"+strconv.Itoa(src.Line))
	}

	return a
}

// contextHandler adds the request scoped attributes carried by ctx.
type contextHandler struct {
	slog.Handler
	service string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.String("service", h.service))
	if cID := GetCorrelationID(ctx); cID != "" {
		r.AddAttrs(slog.String("_cID", cID))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(slog.String("trace_id", sc.TraceID().String()), slog.String("span_id", sc.SpanID().String()))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), service: h.service}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), service: h.service}
}

// maskHandler masks record attributes and attributes bound with With.
type maskHandler struct {
	next   slog.Handler
	masker Masker
}

func (h *maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *maskHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.masker.Attr(a))
		return true
	})
	return h.next.Handle(ctx, masked)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = h.masker.Attr(a)
	}
	return &maskHandler{next: h.next.WithAttrs(out), masker: h.masker}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{next: h.next.WithGroup(name), masker: h.masker}
}

// fanout writes every record to all handlers that accept its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
