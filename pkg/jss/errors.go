package jss

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Static error kinds. Every error surfaced by this library wraps exactly one
// of these, so callers can dispatch with errors.Is regardless of how much
// context the message carries.
var (
	// ErrMissingConfiguration indicates a required connection setting
	// (server, user, or a password source) was absent from every source.
	ErrMissingConfiguration = errors.New("missing required connection setting")

	// ErrNotConnected indicates an API call was attempted before Connect.
	ErrNotConnected = errors.New("not connected, use Connect first")

	// ErrAuthentication indicates credentials were rejected during the
	// bootstrap version-check call.
	ErrAuthentication = errors.New("incorrect JSS username or password")

	// ErrAuthorization indicates an authenticated call was rejected for
	// insufficient privilege.
	ErrAuthorization = errors.New("insufficient privileges for request")

	// ErrUnsupportedServer indicates the server version is below the
	// minimum this library supports.
	ErrUnsupportedServer = errors.New("unsupported JSS version")

	// ErrResourceNotFound indicates the requested resource path does not
	// exist on the server.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrNoSuchItem indicates a lookup matched no object of the type.
	ErrNoSuchItem = errors.New("no such item")

	// ErrConflict indicates the server refused a write due to a state
	// conflict.
	ErrConflict = errors.New("conflict with existing data")

	// ErrBadRequest indicates the server rejected the request content.
	ErrBadRequest = errors.New("bad request")

	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("internal server error")

	// ErrRequestFailed covers any other non-2xx response.
	ErrRequestFailed = errors.New("request failed")

	// ErrInvalidData indicates caller-supplied data failed local shape
	// validation before any network call.
	ErrInvalidData = errors.New("invalid data")

	// ErrMissingData indicates a required field was absent from caller
	// input.
	ErrMissingData = errors.New("missing data")

	// ErrAlreadyExists indicates an attempted creation collides with an
	// existing unique identifier.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnsupportedOperation indicates the operation is not valid for
	// this resource type or in this context.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// APIError is an error classified from an HTTP response. It retains the
// status code and the best-effort reason text extracted from the body.
type APIError struct {
	Kind       error
	StatusCode int
	Method     string
	Path       string
	Reason     string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%v: %s %s returned HTTP %d", e.Kind, e.Method, e.Path, e.StatusCode)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

// Unwrap exposes the error kind for errors.Is dispatch.
func (e *APIError) Unwrap() error {
	return e.Kind
}

// ClassifyResponse maps a non-2xx HTTP response to its error kind per the
// table in the package documentation. The body is inspected for a
// human-readable reason on 400 and 409 responses.
func ClassifyResponse(method, path string, status int, body []byte) error {
	apiErr := &APIError{
		StatusCode: status,
		Method:     method,
		Path:       path,
	}

	switch {
	case status == http.StatusNotFound:
		apiErr.Kind = ErrResourceNotFound
	case status == http.StatusConflict:
		apiErr.Kind = ErrConflict
		apiErr.Reason = extractReason(body)
	case status == http.StatusBadRequest:
		apiErr.Kind = ErrBadRequest
		apiErr.Reason = extractReason(body)
	case status == http.StatusUnauthorized:
		apiErr.Kind = ErrAuthorization
	case status >= 500 && status <= 599:
		apiErr.Kind = ErrServer
	default:
		apiErr.Kind = ErrRequestFailed
	}

	return apiErr
}

// reasonPattern matches the embedded explanation paragraph in the server's
// HTML-flavored error pages. Message extraction is best-effort only; the
// kind classification above is the contract.
var reasonPattern = regexp.MustCompile(`(?s)<p>(?:Error:\s*)?(.*?)</p>`)

func extractReason(body []byte) string {
	match := reasonPattern.FindSubmatch(body)
	if match == nil {
		trimmed := strings.TrimSpace(string(body))
		if len(trimmed) > 200 {
			trimmed = trimmed[:200]
		}

		return trimmed
	}

	return strings.TrimSpace(string(match[1]))
}

// IsNotFound checks whether the error is a resource-not-found or
// no-such-item error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound) || errors.Is(err, ErrNoSuchItem)
}

// IsConflict checks whether the error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsAuthorization checks whether the error is an authorization failure.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrAuthorization)
}

// IsAuthentication checks whether the error is a credential rejection from
// the bootstrap call.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}
