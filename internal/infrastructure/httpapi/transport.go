package httpapi

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/divmain/drydock-scaffold/internal/infrastructure/config"
	http2 "golang.org/x/net/http2"
)

// newTransport centralizes http.Transport creation for forwarded requests.
// Compression is left to the caller so upstream bytes reach the client untouched.
func newTransport(cfg config.Config) *http.Transport {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DisableCompression:    true,
	}
	if cfg.InsecureTLS {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	// HTTP/2 for outbound HTTPS where the upstream offers it; HTTP/1.1 otherwise.
	_ = http2.ConfigureTransport(tr)
	return tr
}

// hopHeaders are meaningful for a single connection only and never forwarded.
var hopHeaders = []string{"Connection", "Proxy-Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization", "Te", "Trailer", "Transfer-Encoding", "Upgrade"}

func removeHopHeaders(h http.Header) {
	for _, k := range hopHeaders {
		h.Del(k)
	}
}

func cloneHeader(h http.Header) http.Header {
	dst := make(http.Header, len(h))
	for k, vv := range h {
		cp := make([]string, len(vv))
		copy(cp, vv)
		dst[k] = cp
	}
	return dst
}

// replaceHeader copies src into dst; names present in both take the src values.
func replaceHeader(dst http.Header, src http.Header) {
	for k, vv := range src {
		cp := make([]string, len(vv))
		copy(cp, vv)
		dst[k] = cp
	}
}
