// Package apierr is the error taxonomy shared by the JSON handlers and the
// single place where an error becomes an HTTP status.
//
// Stores return their own sentinels (coursestore.ErrNotFound, ...); handlers
// wrap them with a Kind via New or Wrap and finish with Write. A request
// either gets a success body or exactly one error response, never both.
package apierr

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindConflict
	KindPaymentRequired
	KindUpstream
)

// Sentinels for errors.Is checks against a Kind.
var (
	ErrBadRequest      = &Error{Kind: KindBadRequest, Message: "bad request"}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Message: "not authorized"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "conflict"}
	ErrPaymentRequired = &Error{Kind: KindPaymentRequired, Message: "payment required"}
	ErrUpstream        = &Error{Kind: KindUpstream, Message: "upstream failure"}
)

// Error is a classified failure. Message is safe to show the client;
// Err is the cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New returns a classified error with a client-facing message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap classifies cause under kind with a client-facing message.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// BadRequest, Unauthorized, NotFound, Conflict are shorthands for New.
func BadRequest(msg string) *Error   { return New(KindBadRequest, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }

// Status maps a Kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		// Ownership and self checks answer 400, not 403. Missing sessions
		// never get here; RequireSignedIn answers those with 401.
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindPaymentRequired:
		return http.StatusPaymentRequired
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Write sends err as a plain-text response. Unclassified errors become 500
// with a generic message. 5xx responses are logged at Error with the cause;
// ownership denials at Warn; other client errors at Debug.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = Wrap(KindInternal, "internal error", err)
	}
	status := Status(e.Kind)

	if log != nil {
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.String("message", e.Message),
		}
		if e.Err != nil {
			fields = append(fields, zap.Error(e.Err))
		}
		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case e.Kind == KindUnauthorized:
			log.Warn("request denied", fields...)
		default:
			log.Debug("request rejected", fields...)
		}
	}

	http.Error(w, e.Message, status)
}
