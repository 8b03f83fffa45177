package httpapi

import "unicode/utf8"

// bodyPreview renders a body for the admin API. Text is cut at max bytes
// (<= 0 keeps it whole); anything else becomes a short hex dump.
func bodyPreview(b []byte, max int) string {
	if !utf8.Valid(b) {
		return formatBinaryPreview(b, max)
	}
	if max > 0 && len(b) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(b[cut]) {
			cut--
		}
		return string(b[:cut]) + "…"
	}
	return string(b)
}

// formatBinaryPreview returns a short hexdump-like preview for binary data.
func formatBinaryPreview(b []byte, max int) string {
	if max <= 0 || max > len(b) {
		max = len(b)
	}
	if max > 256 {
		max = 256
	}
	const hexdigits = "0123456789ABCDEF"
	out := make([]byte, 0, max*3+16)
	for i := 0; i < max; i++ {
		v := b[i]
		out = append(out, hexdigits[v>>4], hexdigits[v&0x0F])
		if i+1 < max {
			out = append(out, ' ')
		}
	}
	return string(out)
}
