package classify

import "fmt"

// ErrorKind tags the reason a URL failed validation.
type ErrorKind int

const (
	KindEmptyInput ErrorKind = iota
	KindMissingScheme
	KindFormatMismatch
	KindUnsupportedService
)

// ValidationError reports why a URL was rejected. Service is only set for
// KindFormatMismatch, naming the service whose domain was recognized.
type ValidationError struct {
	Kind    ErrorKind
	Service string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindEmptyInput:
		return "url must not be empty"
	case KindMissingScheme:
		return "url must start with http:// or https://"
	case KindFormatMismatch:
		return fmt.Sprintf("unrecognized url format for %s, check the link or report the new format", e.Service)
	case KindUnsupportedService:
		return "unsupported video service or malformed url"
	default:
		return "invalid url"
	}
}

// KindOf extracts the error kind, or KindUnsupportedService for foreign errors.
func KindOf(err error) ErrorKind {
	if ve, ok := err.(*ValidationError); ok {
		return ve.Kind
	}
	return KindUnsupportedService
}
