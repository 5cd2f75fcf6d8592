package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
)

const (
	maxLoggedBodyBytes = 16 * 1024
	maskedValue        = instrument.MaskedValue
)

// recorder captures the status, size and a bounded copy of the response body.
type recorder struct {
	http.ResponseWriter
	status  int
	written int
	body    bytes.Buffer
	capture bool
	err     error
}

func (rw *recorder) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(p []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	if rw.capture {
		if room := maxLoggedBodyBytes - rw.body.Len(); room > 0 {
			rw.body.Write(p[:min(len(p), room)])
		}
	}

	n, err := rw.ResponseWriter.Write(p)
	rw.written += n
	return n, err
}

// SetError lets the endpoint hand its error to the span.
func (rw *recorder) SetError(err error) { rw.err = err }

func (rw *recorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *recorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

func (rw *recorder) statusCode() int {
	return lo.Ternary(rw.status == 0, http.StatusOK, rw.status)
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// bodyMasker renders request and response bodies for logs with sensitive
// keys replaced.
type bodyMasker struct {
	instrument.Masker
}

func newBodyMasker(cfg config.Config) bodyMasker {
	var fields []string
	if cfg != nil {
		fields = cfg.GetArray("instrument.log_mask_fields")
	}
	return bodyMasker{Masker: instrument.NewMasker(fields...)}
}

func (m bodyMasker) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = lo.Ternary(m.Sensitive(k), maskedValue, h.Get(k))
	}
	return out
}

// body decides by media type what is safe to log. Uploads and HTML pages are
// summarized instead of logged.
func (m bodyMasker) body(contentType string, raw []byte) any {
	if len(raw) == 0 {
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case strings.HasPrefix(mediaType, "multipart/"), mediaType == "application/octet-stream",
		strings.HasPrefix(mediaType, "image/"):
		return "<" + mediaType + " omitted>"
	case mediaType == "text/html":
		return "<html omitted>"
	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			break
		}
		out := make(map[string]any, len(values))
		for k, v := range values {
			out[k] = lo.Ternary[any](m.Sensitive(k), maskedValue, strings.Join(v, ","))
		}
		return out
	}

	var decoded any
	if json.Unmarshal(raw, &decoded) == nil {
		return m.Value(decoded)
	}
	if !utf8.Valid(raw) {
		return "<binary omitted>"
	}
	return string(raw)
}

// peekBody copies up to maxLoggedBodyBytes of the request body and restores it
// for the handler. Multipart uploads are never buffered.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody || strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return nil
	}

	//nolint:errcheck // logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	return head
}

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newHTTPMetrics(meter metric.Meter) httpMetrics {
	var m httpMetrics
	var err error

	if m.requests, err = meter.Int64Counter("http.server.request.count",
		metric.WithDescription("HTTP requests served"), metric.WithUnit("{request}")); err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}
	if m.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("s")); err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return m
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	masker := newBodyMasker(cfg)
	tracer := ins.Tracer("http.server")
	metrics := newHTTPMetrics(ins.Meter("http.server"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := matchedRoutePath(r)

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
					semconv.URLPathKey.String(r.URL.Path),
					semconv.ClientAddressKey.String(r.RemoteAddr),
					semconv.UserAgentOriginalKey.String(r.UserAgent()),
				),
			)
			defer span.End()

			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"route", route,
				"uri", r.RequestURI,
				"client_ip", r.RemoteAddr,
				"headers", masker.headers(r.Header),
				"body", masker.body(r.Header.Get("Content-Type"), peekBody(r)),
			)

			rec := &recorder{ResponseWriter: w, capture: true}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusCode()
			elapsed := time.Since(start)
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}

			span.SetAttributes(attrs...)
			span.SetAttributes(semconv.HTTPResponseBodySizeKey.Int(rec.written))
			if rec.err != nil {
				span.RecordError(rec.err)
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, lo.TernaryF(rec.err != nil,
					func() string { return rec.err.Error() },
					func() string { return http.StatusText(status) }))
			}

			if metrics.requests != nil {
				metrics.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
			}
			if metrics.duration != nil {
				metrics.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
			}

			var respBody any
			if status < http.StatusMultipleChoices || status >= http.StatusBadRequest {
				respBody = masker.body(rec.Header().Get("Content-Type"), rec.body.Bytes())
			}

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", rec.written,
				"latency_ms", elapsed.Milliseconds(),
				"body", respBody,
			)
		})
	}
}
