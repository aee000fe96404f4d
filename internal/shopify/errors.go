package shopify

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/go-faster/errors"
)

var (
	// ErrTransport matches every *TransportError via errors.Is.
	ErrTransport = errors.New("shopify transport error")
	// ErrNoCredentials is returned by NewClient when neither an auth token nor
	// an API key/password pair is configured.
	ErrNoCredentials = errors.New("shopify credentials are required")
)

// TransportError is a failed upstream call: either the request did not
// complete (Err is set) or the upstream answered with a non-2xx status.
type TransportError struct {
	Resource   string
	StatusCode int
	// Body holds the beginning of the upstream error body.
	Body string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("GET %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("GET %s: unexpected status %d %s",
		e.Resource, e.StatusCode, http.StatusText(e.StatusCode),
	)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

const maxSnippet = 512

func snippet(body []byte) string {
	if len(body) <= maxSnippet {
		return string(body)
	}
	cut := maxSnippet
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut])
}
