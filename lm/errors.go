package lm

import "errors"

var (
	ErrUnknown         = errors.New("unknown error")
	ErrNoResponse      = errors.New("no response")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidResponse = errors.New("invalid response")
	ErrUnsupported     = errors.New("unsupported")
	ErrAuthentication  = errors.New("authentication error")
	ErrPermission      = errors.New("permission error")
	ErrNotFound        = errors.New("not found")
	ErrRateLimit       = errors.New("rate limit error")
	ErrOverloaded      = errors.New("overloaded")
	ErrInternalServer  = errors.New("internal server error")

	// ErrNotSingleToken is returned by Tokenizer.TokenID when the text does
	// not encode to exactly one token.
	ErrNotSingleToken = errors.New("text is not a single token")
)

// ErrorByStatus maps an HTTP status code returned by a model server to one of
// the sentinel errors above.
func ErrorByStatus(code int) error {
	switch code {
	case 400, 422:
		return ErrInvalidRequest
	case 401:
		return ErrAuthentication
	case 403:
		return ErrPermission
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimit
	case 500, 502:
		return ErrInternalServer
	case 503, 529:
		return ErrOverloaded
	}
	return ErrUnknown
}
