package shopify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

// HTTPError is a non-200 response from the GraphQL endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("shopify: status %d: %s", e.StatusCode, body)
}

// Transient reports whether the request may succeed when repeated.
func (e *HTTPError) Transient() bool {
	return e.StatusCode >= 500
}

// GraphQLError is a top-level entry of the response "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`

	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// GraphQLErrors is returned when a response carries top-level errors.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ge := range e {
		msgs[i] = ge.Message
	}
	return "shopify: graphql: " + strings.Join(msgs, "; ")
}

// Throttled reports whether any error is a THROTTLED rejection.
func (e GraphQLErrors) Throttled() bool {
	for _, ge := range e {
		if ge.Extensions.Code == "THROTTLED" {
			return true
		}
	}
	return false
}

// throttledError marks a request rejected by the rate limiter before
// execution. It wraps domain.ErrRateLimited.
type throttledError struct {
	cause error
}

func (e *throttledError) Error() string {
	return fmt.Sprintf("%v: %v", domain.ErrRateLimited, e.cause)
}

func (e *throttledError) Unwrap() []error {
	return []error{domain.ErrRateLimited, e.cause}
}

// IsThrottled reports whether err is a throttling rejection.
func IsThrottled(err error) bool {
	var te *throttledError
	return errors.As(err, &te)
}

// transientError marks a failure worth retrying for idempotent queries.
type transientError struct {
	cause error
}

func (e *transientError) Error() string { return e.cause.Error() }

func (e *transientError) Unwrap() error { return e.cause }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
