// Package har converts HTTP Archive 1.2 documents to and from transactions.
package har

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
	"unicode/utf8"

	"github.com/divmain/drydock-scaffold/internal/domain"
)

// Minimal HAR 1.2 structs; fields not needed for mocking are omitted.
type document struct {
	Log harLog `json:"log"`
}

type harLog struct {
	Version string     `json:"version"`
	Creator harName    `json:"creator"`
	Entries []harEntry `json:"entries"`
}

type harName struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type harEntry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Time            float64     `json:"time"`
	Request         harRequest  `json:"request"`
	Response        harResponse `json:"response"`
}

type harRequest struct {
	Method      string      `json:"method"`
	URL         string      `json:"url"`
	HTTPVersion string      `json:"httpVersion"`
	Headers     []harNVPair `json:"headers"`
	PostData    *harPost    `json:"postData,omitempty"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

type harResponse struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	HTTPVersion string      `json:"httpVersion"`
	Headers     []harNVPair `json:"headers"`
	Content     harContent  `json:"content"`
	RedirectURL string      `json:"redirectURL"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

type harNVPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type harPost struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

type harContent struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// Load reads the HAR file at path.
func Load(path string) ([]*domain.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open har: %w", err)
	}
	defer f.Close()
	txs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return txs, nil
}

// Decode converts every entry of a HAR document into a transaction, numbered by
// entry position. Entries that never got a response (status 0) carry no response.
func Decode(r io.Reader) ([]*domain.Transaction, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode har: %w", err)
	}
	out := make([]*domain.Transaction, 0, len(doc.Log.Entries))
	for i, e := range doc.Log.Entries {
		u, err := url.Parse(e.Request.URL)
		if err != nil {
			return nil, fmt.Errorf("entry %d: parse url: %w", i, err)
		}
		tx := &domain.Transaction{
			No:             uint64(i),
			Method:         e.Request.Method,
			Protocol:       u.Scheme,
			Hostname:       u.Hostname(),
			Pathname:       domain.Pathname(u),
			Href:           u.String(),
			RequestHeaders: make(http.Header, len(e.Request.Headers)),
		}
		// Status 0 marks a blocked or aborted request: no response facet.
		if e.Response.Status > 0 {
			body, err := contentBytes(e.Response.Content)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			tx.Response = &domain.Response{
				StatusCode: e.Response.Status,
				Headers:    foldHeaders(e.Response.Headers),
				Body:       body,
			}
		}
		for _, h := range e.Request.Headers {
			tx.RequestHeaders.Add(h.Name, h.Value)
		}
		if e.Request.PostData != nil {
			tx.RequestBody = []byte(e.Request.PostData.Text)
		}
		out = append(out, tx)
	}
	return out, nil
}

// foldHeaders turns the header list into a map; later duplicates win.
func foldHeaders(list []harNVPair) map[string]string {
	out := make(map[string]string, len(list))
	for _, h := range list {
		out[h.Name] = h.Value
	}
	return out
}

func contentBytes(c harContent) ([]byte, error) {
	if c.Encoding == "base64" {
		b, err := base64.StdEncoding.DecodeString(c.Text)
		if err != nil {
			return nil, fmt.Errorf("decode base64 content: %w", err)
		}
		return b, nil
	}
	return []byte(c.Text), nil
}

// Export writes the completed transactions as a HAR 1.2 document.
func Export(w io.Writer, creator string, txs []domain.Transaction) error {
	entries := make([]harEntry, 0, len(txs))
	for _, tx := range txs {
		if tx.Response == nil {
			continue
		}
		e := harEntry{
			StartedDateTime: time.Now().UTC().Format(time.RFC3339Nano),
			Request: harRequest{
				Method:      tx.Method,
				URL:         tx.Href,
				HTTPVersion: "HTTP/1.1",
				Headers:     make([]harNVPair, 0, len(tx.RequestHeaders)),
				HeadersSize: -1,
				BodySize:    len(tx.RequestBody),
			},
			Response: harResponse{
				Status:      tx.Response.StatusCode,
				StatusText:  http.StatusText(tx.Response.StatusCode),
				HTTPVersion: "HTTP/1.1",
				Headers:     make([]harNVPair, 0, len(tx.Response.Headers)),
				Content:     exportContent(tx.Response),
				HeadersSize: -1,
				BodySize:    len(tx.Response.Body),
			},
		}
		for k, vv := range tx.RequestHeaders {
			for _, v := range vv {
				e.Request.Headers = append(e.Request.Headers, harNVPair{Name: k, Value: v})
			}
		}
		if len(tx.RequestBody) > 0 {
			e.Request.PostData = &harPost{MimeType: tx.RequestHeaders.Get("Content-Type"), Text: string(tx.RequestBody)}
		}
		for k, v := range tx.Response.Headers {
			e.Response.Headers = append(e.Response.Headers, harNVPair{Name: k, Value: v})
		}
		entries = append(entries, e)
	}
	doc := document{Log: harLog{Version: "1.2", Creator: harName{Name: creator, Version: "1.0"}, Entries: entries}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func exportContent(resp *domain.Response) harContent {
	c := harContent{Size: len(resp.Body), MimeType: resp.ContentType()}
	if utf8.Valid(resp.Body) {
		c.Text = string(resp.Body)
	} else {
		c.Text = base64.StdEncoding.EncodeToString(resp.Body)
		c.Encoding = "base64"
	}
	return c
}
