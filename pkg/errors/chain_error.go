package errors

import (
	stderrors "errors"
	"fmt"
)

const (
	CodeNetworkUnavailable = "network_unavailable"
	CodeRejected           = "rejected"
	CodeUserDeclined       = "user_declined"
	CodeLookupFailed       = "lookup_failed"
	CodeTimedOut           = "timed_out"
	CodeNotAuthorized      = "not_authorized"
	CodeInvalidInput       = "invalid_input"
	CodeNotFound           = "not_found"
	CodeInternal           = "internal_error"
)

// ChainError is the single error type surfaced by the marketplace core.
// Callers branch on Code, never on the wrapped backend error text.
type ChainError struct {
	Code    string
	Message string
	Err     error
}

func (e *ChainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// Is matches any *ChainError carrying the same code, so
// errors.Is(err, errors.ErrTimedOut(nil)) works as a kind check.
func (e *ChainError) Is(target error) bool {
	t, ok := target.(*ChainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrNetworkUnavailable = func(err error) *ChainError {
		return &ChainError{Code: CodeNetworkUnavailable, Message: "chain endpoint unreachable", Err: err}
	}
	ErrRejected = func(err error) *ChainError {
		return &ChainError{Code: CodeRejected, Message: "call rejected by the chain", Err: err}
	}
	ErrUserDeclined = func(err error) *ChainError {
		return &ChainError{Code: CodeUserDeclined, Message: "transaction declined in wallet", Err: err}
	}
	ErrLookupFailed = func(err error) *ChainError {
		return &ChainError{Code: CodeLookupFailed, Message: "chain state lookup failed", Err: err}
	}
	ErrTimedOut = func(err error) *ChainError {
		return &ChainError{Code: CodeTimedOut, Message: "expected effect not observed", Err: err}
	}
	ErrNotAuthorized = func(err error) *ChainError {
		return &ChainError{Code: CodeNotAuthorized, Message: "action restricted to the video owner", Err: err}
	}
	ErrInvalidInput = func(err error) *ChainError {
		return &ChainError{Code: CodeInvalidInput, Message: "invalid input", Err: err}
	}
	ErrNotFound = func(err error) *ChainError {
		return &ChainError{Code: CodeNotFound, Message: "record not found", Err: err}
	}
	ErrInternal = func(err error) *ChainError {
		return &ChainError{Code: CodeInternal, Message: "internal error", Err: err}
	}
)

// CodeOf returns the code of the outermost ChainError in err's chain,
// or CodeInternal when there is none.
func CodeOf(err error) string {
	var ce *ChainError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return CodeInternal
}

func HasCode(err error, code string) bool {
	var ce *ChainError
	return stderrors.As(err, &ce) && ce.Code == code
}

// Retryable reports whether the caller may resend a freshly built request.
// Only transport failures qualify; rejected payloads must be rebuilt.
func Retryable(err error) bool {
	return HasCode(err, CodeNetworkUnavailable)
}
