package instrument

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// MaskedValue replaces every sensitive value.
const MaskedValue = "***"

// DefaultMaskFields are always masked, on top of configured fields.
var DefaultMaskFields = []string{"password", "code", "passcode", "token", "access_token", "secret", "authorization", "cookie", "set-cookie"}

// Masker hides the values of sensitive keys in log attributes, decoded JSON
// documents and header maps. Keys match case-insensitively at any depth.
type Masker struct {
	keys map[string]struct{}
}

// NewMasker returns a Masker for DefaultMaskFields plus fields.
func NewMasker(fields ...string) Masker {
	keys := make(map[string]struct{}, len(DefaultMaskFields)+len(fields))
	for _, list := range [][]string{DefaultMaskFields, fields} {
		for _, f := range list {
			if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
				keys[f] = struct{}{}
			}
		}
	}
	return Masker{keys: keys}
}

// Sensitive reports whether values under key are masked.
func (m Masker) Sensitive(key string) bool {
	_, ok := m.keys[strings.ToLower(key)]
	return ok
}

// Value masks maps and slices recursively; other values pass through.
func (m Masker) Value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.Sensitive(k) {
				out[k] = MaskedValue
				continue
			}
			out[k] = m.Value(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = inner
		}
		return m.Value(out)
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.Value(inner)
		}
		return out
	default:
		return v
	}
}

// JSON masks a JSON object or array. ok is false when raw is not JSON.
func (m Masker) JSON(raw []byte) (masked []byte, ok bool) {
	if len(raw) == 0 || (raw[0] != '{' && raw[0] != '[') {
		return nil, false
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}

	out, err := json.Marshal(m.Value(doc))
	return out, err == nil
}

// Attr masks a log attribute, descending into groups and JSON payloads.
func (m Masker) Attr(a slog.Attr) slog.Attr {
	if m.Sensitive(a.Key) {
		return slog.String(a.Key, MaskedValue)
	}

	a.Value = a.Value.Resolve()
	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = m.Attr(ga)
		}
		a.Value = slog.GroupValue(out...)
	case slog.KindString:
		if out, ok := m.JSON([]byte(a.Value.String())); ok {
			a.Value = slog.StringValue(string(out))
		}
	case slog.KindAny:
		switch val := a.Value.Any().(type) {
		case map[string]any, map[string]string, []any:
			a.Value = slog.AnyValue(m.Value(val))
		case []byte:
			if out, ok := m.JSON(val); ok {
				a.Value = slog.StringValue(string(out))
			}
		}
	}

	return a
}
