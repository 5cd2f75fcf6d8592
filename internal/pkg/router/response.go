package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
)

const defaultSuccessMessage = "request has been successfully"

type errorResponse struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Optional behaviours a handler response can implement to shape the envelope.
type (
	statusCoder  interface{ StatusCode() int }
	cookieSetter interface{ Cookies() []*http.Cookie }
	messenger    interface{ Message() string }
	metaCarrier  interface{ Meta() map[string]any }
)

// encodeError writes err as the error envelope. Errors that are not a
// *goerror.Error never leak their text.
func encodeError(w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Message: gerr.Msg(), Error: gerr.Fields()}

	var verr validator.V10ValidationError
	if errors.As(err, &verr) {
		resp.Error = verr.Values()
	}
	if len(resp.Error) == 0 {
		resp.Error = nil
	}

	writeJSON(w, resp, gerr.StatusCode())
}

func encodeSuccess(w http.ResponseWriter, resp any) {
	if c, ok := resp.(cookieSetter); ok {
		for _, cookie := range c.Cookies() {
			http.SetCookie(w, cookie)
		}
	}

	code := http.StatusOK
	if sc, ok := resp.(statusCoder); ok {
		code = sc.StatusCode()
	}

	if resp == nil || code == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	body := successResponse{Message: defaultSuccessMessage, Data: resp}
	if m, ok := resp.(messenger); ok {
		body.Message = m.Message()
	}
	if m, ok := resp.(metaCarrier); ok {
		body.Meta = m.Meta()
	}

	writeJSON(w, body, code)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		slog.Error("server: failed to encode data to json", "error", err)
	}
}
