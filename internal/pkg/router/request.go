package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
)

// maxJSONBody bounds DecodeBody. Every JSON endpoint takes a handful of fields.
const maxJSONBody = 1 << 20

// Request is what a Handler receives: the http.Request plus the parsing
// helpers every endpoint needs.
type Request struct {
	*http.Request
}

// GetParam returns the named path parameter of the matched route.
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetQuery returns the trimmed query value for key.
func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// GetQueryInt32 parses an optional numeric query value; absent means 0.
func (r *Request) GetQueryInt32(key string) (int32, error) {
	raw := r.GetQuery(key)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, goerror.NewInvalidInput(nil, key, "must be a whole number")
	}

	return int32(n), nil
}

// RawBody returns the body byte for byte, as needed for signature checks.
// Bodies larger than limit are rejected rather than truncated.
func (r *Request) RawBody(limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, goerror.NewInvalidFormat()
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	switch {
	case err != nil:
		return nil, goerror.NewInvalidFormat()
	case int64(len(body)) > limit:
		return nil, goerror.NewInvalidFormat("Request body too large")
	default:
		return body, nil
	}
}

// DecodeBody decodes exactly one JSON document into dst. Unknown fields,
// trailing data and wrongly typed fields are rejected.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return goerror.NewInvalidInput(nil, typeErr.Field, "must be a "+typeErr.Type.Kind().String())
		}
		return goerror.NewInvalidFormat()
	}

	if dec.More() {
		return goerror.NewInvalidFormat()
	}

	return nil
}

// StreamSingleFile returns the multipart part named field without buffering
// the upload. Parts before it are drained; parts after it are left unread.
func (r *Request) StreamSingleFile(field string) (io.ReadCloser, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil, goerror.NewInvalidFormat("Invalid request content-type")
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, goerror.NewInvalidFormat()
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, goerror.NewInvalidInput(nil, field, "file is required")
		}
		if err != nil {
			return nil, goerror.NewInvalidFormat()
		}

		if part.FormName() == field {
			return part, nil
		}

		if err := drain(part); err != nil {
			return nil, goerror.NewInvalidFormat(fmt.Sprintf("Invalid multipart part %q", part.FormName()))
		}
	}
}

func drain(rc io.ReadCloser) error {
	_, err := io.Copy(io.Discard, rc)
	return errors.Join(err, rc.Close())
}
