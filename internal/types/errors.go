package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a well-formed backend response with a non-2xx status. Data holds
// the JSON body exactly as the backend sent it.
type APIError struct {
	StatusCode int             `json:"status"`
	Data       json.RawMessage `json:"data,omitempty"`
	Method     string          `json:"-"`
	Path       string          `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	base := fmt.Sprintf("api error: status %d", e.StatusCode)
	if e.Method != "" {
		base = fmt.Sprintf("api error: %s %s returned %d", e.Method, e.Path, e.StatusCode)
	}
	if msg := e.UserMessage(""); msg != "" {
		return base + ": " + msg
	}
	return base
}

// Is maps well-known statuses onto the package sentinels so callers can use errors.Is
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrServerError:
		return e.StatusCode >= 500
	}
	return false
}

// Field returns the raw value of a top-level key of the error body.
// A missing key, a null value or a non-object body report false.
func (e *APIError) Field(name string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(e.Data, &obj); err != nil {
		return nil, false
	}
	v, ok := obj[name]
	if !ok || isNull(v) {
		return nil, false
	}
	return v, true
}

// Detail returns data.detail, or "" when absent
func (e *APIError) Detail() string {
	return e.text("detail")
}

// Message returns data.message, or "" when absent
func (e *APIError) Message() string {
	return e.text("message")
}

// NonFieldErrors returns data.non_field_errors. A scalar value is returned as a
// single element.
func (e *APIError) NonFieldErrors() []string {
	v, ok := e.Field("non_field_errors")
	if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		if s := firstText(v); s != "" {
			return []string{s}
		}
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := firstText(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FirstFieldError returns the first entry of data.errors in document order.
// When the entry is a list its first element is used.
func (e *APIError) FirstFieldError() (field, message string, ok bool) {
	v, found := e.Field("errors")
	if !found {
		return "", "", false
	}

	dec := json.NewDecoder(bytes.NewReader(v))
	tok, err := dec.Token()
	if err != nil {
		return "", "", false
	}

	delim, isDelim := tok.(json.Delim)
	if !isDelim {
		// errors is a bare string or number
		message = firstText(v)
		return "", message, message != ""
	}

	if delim == '[' {
		message = firstText(v)
		return "", message, message != ""
	}

	if !dec.More() {
		return "", "", false
	}

	keyTok, err := dec.Token()
	if err != nil {
		return "", "", false
	}
	field, _ = keyTok.(string)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return "", "", false
	}

	message = firstText(raw)
	return field, message, message != ""
}

// UserMessage picks the text to show a user: the first field error, then the
// first non_field_errors entry, then detail, then message, then fallback.
func (e *APIError) UserMessage(fallback string) string {
	if _, msg, ok := e.FirstFieldError(); ok {
		return msg
	}
	if nfe := e.NonFieldErrors(); len(nfe) > 0 {
		return nfe[0]
	}
	if d := e.Detail(); d != "" {
		return d
	}
	if m := e.Message(); m != "" {
		return m
	}
	return fallback
}

func (e *APIError) text(name string) string {
	v, ok := e.Field(name)
	if !ok {
		return ""
	}
	return firstText(v)
}

// firstText flattens a JSON value to display text: strings verbatim, lists by
// their first element, anything else as compact JSON.
func firstText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
			return ""
		}
		return firstText(items[0])
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
