package synth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/divmain/drydock-scaffold/internal/domain"
)

const (
	fixturesDir = "fixtures"
	// Keeps fixture names under common 255-byte file name limits.
	maxFixtureName = 240
)

// EnsureFixturesDir creates dest/fixtures. An existing directory is not an error.
func EnsureFixturesDir(dest string) error {
	err := os.Mkdir(filepath.Join(dest, fixturesDir), 0o755)
	if err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("create fixtures dir: %w", err)
	}
	return nil
}

// FixtureName escapes uniqueName like encodeURIComponent and truncates it to 240 bytes.
func FixtureName(uniqueName string) string {
	escaped := escapeComponent(uniqueName)
	if len(escaped) > maxFixtureName {
		escaped = escaped[:maxFixtureName]
	}
	return escaped
}

// WriteFixture writes one response body below dest/fixtures and returns its
// path relative to dest. JSON routes are re-indented with two spaces; a body
// that is not valid JSON fails the write.
func WriteFixture(route *domain.Route, resp domain.RouteResponse, dest string) (string, error) {
	ext := ".html"
	if route.IsJSON {
		ext = ".json"
	}
	rel := "./" + fixturesDir + "/" + FixtureName(resp.UniqueName) + ext

	body := resp.Body
	if route.IsJSON {
		var err error
		if body, err = indentJSON(resp.Body); err != nil {
			return "", fmt.Errorf("fixture %s: %w", rel, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dest, filepath.FromSlash(rel)), body, 0o644); err != nil {
		return "", fmt.Errorf("write fixture %s: %w", rel, err)
	}
	return rel, nil
}

// indentJSON re-serializes src with two-space indentation, preserving key order.
func indentJSON(src []byte) ([]byte, error) {
	src = bytes.TrimSpace(src)
	if !json.Valid(src) {
		return nil, errors.New("response body is not valid JSON")
	}
	var out bytes.Buffer
	if err := json.Indent(&out, src, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

const upperhex = "0123456789ABCDEF"

// escapeComponent percent-encodes every byte except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func escapeComponent(s string) string {
	var b bytes.Buffer
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreservedComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreservedComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
