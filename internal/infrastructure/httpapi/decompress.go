package httpapi

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// BestEffortDecompress gunzips body when contentEncoding names gzip.
//
// Any decompression failure falls back to the raw bytes and reports
// fellBack=true; the failure itself is not an error for the exchange.
// Bodies with any other (or no) encoding are returned unchanged.
func BestEffortDecompress(body []byte, contentEncoding string) (out []byte, fellBack bool) {
	if len(body) == 0 || !strings.Contains(strings.ToLower(contentEncoding), "gzip") {
		return body, false
	}
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return body, true
	}
	defer zr.Close()
	dec, err := io.ReadAll(zr)
	if err != nil {
		return body, true
	}
	return dec, false
}
