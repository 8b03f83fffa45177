package domain

import (
	"errors"
	"net/http"
	"net/url"
)

// ErrAlreadyCompleted is returned when a second response (or error) is attached
// to a transaction whose response facet is already set.
var ErrAlreadyCompleted = errors.New("transaction already completed")

// Transaction represents a single HTTP request/response exchange observed by the
// recording proxy or parsed from an imported trace.
type Transaction struct {
	No             uint64      `json:"transactionNo"`
	Method         string      `json:"method"`
	Protocol       string      `json:"protocol"`
	Hostname       string      `json:"hostname"`
	Pathname       string      `json:"pathname"`
	Href           string      `json:"href"`
	RequestHeaders http.Header `json:"requestHeaders,omitempty"`
	RequestBody    []byte      `json:"requestBody,omitempty"`
	// Response is nil until the forwarded call completes, and stays nil when it failed.
	Response *Response `json:"response,omitempty"`
	HadError bool      `json:"hadError"`
}

// Response is the response facet of a transaction.
//
// Headers are flattened to one value per name and keep the name casing they were
// received with. Body holds the decompressed payload.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       []byte            `json:"body,omitempty"`
}

// Completed reports whether the response facet has been attached or the
// transaction was marked as failed.
func (t Transaction) Completed() bool { return t.Response != nil || t.HadError }

// WithResponse returns a copy of t carrying resp.
func (t Transaction) WithResponse(resp Response) (Transaction, error) {
	if t.Completed() {
		return t, ErrAlreadyCompleted
	}
	t.Response = &resp
	return t, nil
}

// WithError returns a copy of t marked as failed.
func (t Transaction) WithError() (Transaction, error) {
	if t.Completed() {
		return t, ErrAlreadyCompleted
	}
	t.HadError = true
	return t, nil
}

// Header looks a response header up by its exact name.
func (r *Response) Header(name string) (string, bool) {
	if r == nil || r.Headers == nil {
		return "", false
	}
	v, ok := r.Headers[name]
	return v, ok
}

// ContentType returns the content-type as recorded under either of its two
// common spellings, or "" when neither is present.
func (r *Response) ContentType() string {
	if v, ok := r.Header("content-type"); ok && v != "" {
		return v
	}
	if v, ok := r.Header("Content-Type"); ok {
		return v
	}
	return ""
}

// FlattenHeader keeps the first value of every header.
func FlattenHeader(in http.Header) map[string]string {
	out := make(map[string]string, len(in))
	for k, vv := range in {
		if len(vv) == 0 {
			continue
		}
		out[k] = vv[0]
	}
	return out
}

// Pathname returns the escaped path of u, "/" when the URL has none.
func Pathname(u *url.URL) string {
	if p := u.EscapedPath(); p != "" {
		return p
	}
	return "/"
}
