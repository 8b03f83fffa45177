// Package cassette imports recordings stored as multi-document YAML files,
// one request/response entry per document.
package cassette

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/divmain/drydock-scaffold/internal/domain"
)

// Entry is a single recorded request-response entry.
type Entry struct {
	Request  *Request  `yaml:"request"`
	Response *Response `yaml:"response"`
}

type Request struct {
	Method  string            `yaml:"method"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    string            `yaml:"body,omitempty"`
}

type Response struct {
	StatusCode int               `yaml:"status_code"`
	Headers    map[string]string `yaml:"headers,omitempty"`
	Body       string            `yaml:"body,omitempty"`
}

var separator = []byte("\n---\n")

// Load reads the cassette at path.
func Load(path string) ([]*domain.Transaction, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cassette: %w", err)
	}
	txs, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return txs, nil
}

// Decode parses every document of a cassette. Documents without a request or
// response, or whose response has no status code, are skipped; numbering
// follows the remaining entries.
func Decode(b []byte) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for i, doc := range bytes.Split(b, separator) {
		if len(bytes.TrimSpace(doc)) == 0 {
			continue
		}
		var e Entry
		if err := yaml.Unmarshal(doc, &e); err != nil {
			return nil, fmt.Errorf("unmarshal entry %d: %w", i, err)
		}
		if e.Request == nil || e.Response == nil || e.Response.StatusCode <= 0 {
			continue
		}
		u, err := url.Parse(e.Request.URL)
		if err != nil {
			return nil, fmt.Errorf("entry %d: parse url: %w", i, err)
		}
		tx := &domain.Transaction{
			No:             uint64(len(out)),
			Method:         e.Request.Method,
			Protocol:       u.Scheme,
			Hostname:       u.Hostname(),
			Pathname:       domain.Pathname(u),
			Href:           u.String(),
			RequestHeaders: make(http.Header, len(e.Request.Headers)),
			RequestBody:    []byte(e.Request.Body),
			Response: &domain.Response{
				StatusCode: e.Response.StatusCode,
				Headers:    e.Response.Headers,
				Body:       []byte(e.Response.Body),
			},
		}
		for k, v := range e.Request.Headers {
			tx.RequestHeaders.Set(k, v)
		}
		out = append(out, tx)
	}
	return out, nil
}
