package status

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrBadRequest              = NewError(BadRequest, "bad request")
	ErrBadContentLength        = NewError(BadRequest, "malformed Content-Length value")
	ErrBadChunk                = NewError(BadRequest, "malformed chunk-encoded data")
	ErrBodyTooLarge            = NewError(RequestEntityTooLarge, "request body is too large")
	ErrHeaderFieldsTooLarge    = NewError(RequestHeaderFieldsTooLarge, "too large headers section")
	ErrInternalServerError     = NewError(InternalServerError, "internal server error")
	ErrUnsupportedEncoding     = NewError(NotImplemented, "transfer encoding is not supported")
	ErrMethodNotImplemented    = NewError(NotImplemented, "request method is not supported")
	ErrServiceUnavailable      = NewError(ServiceUnavailable, "service unavailable")
	ErrHTTPVersionNotSupported = NewError(HTTPVersionNotSupported, "HTTP version not supported")
)

// CodeOf extracts the status code carried by err. Errors of other kinds are reported
// as 500 Internal Server Error.
func CodeOf(err error) Code {
	if httpErr, ok := err.(HTTPError); ok {
		return httpErr.Code
	}

	return InternalServerError
}
