package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// StatusError is returned for any non 2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if detail := e.Detail(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Detail extracts the backend's own message from a JSON error body. Both
// {"message": "..."} and {"error": "..."} envelopes are understood.
func (e *StatusError) Detail() string {
	if !gjson.ValidBytes(e.Body) {
		return ""
	}
	body := gjson.ParseBytes(e.Body)
	for _, key := range []string{"message", "error", "error.message", "detail"} {
		if r := body.Get(key); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 or 403 from the backend.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) &&
		(se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden)
}
