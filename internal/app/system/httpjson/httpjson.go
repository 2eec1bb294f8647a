// Package httpjson reads and writes the JSON bodies of the API handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/apierr"
)

// OK is the acknowledgement body for mutations that return nothing else.
var OK = map[string]bool{"ok": true}

// Write encodes v with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads at most limit bytes of JSON from r into v. Malformed or
// oversized bodies become apierr BadRequest errors. An empty body leaves v
// untouched.
func Decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	if r.Body == nil {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apierr.Wrap(apierr.KindBadRequest, "Request body too large.", err)
		}
		return apierr.Wrap(apierr.KindBadRequest, "Malformed JSON body.", err)
	}
	return nil
}
