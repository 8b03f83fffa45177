package synth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/divmain/drydock-scaffold/internal/domain"
)

func TestEnsureFixturesDirIdempotent(t *testing.T) {
	dest := t.TempDir()
	for i := 0; i < 2; i++ {
		if err := EnsureFixturesDir(dest); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if fi, err := os.Stat(filepath.Join(dest, "fixtures")); err != nil || !fi.IsDir() {
		t.Fatalf("fixtures dir missing: %v", err)
	}
}

func TestEnsureFixturesDirPropagatesOtherErrors(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "does", "not", "exist")
	if err := EnsureFixturesDir(dest); err == nil {
		t.Fatalf("expected error for missing destination")
	}
}

func TestFixtureName(t *testing.T) {
	got := FixtureName("0-GET-api.test/v1/items (all)*!~'")
	want := "0-GET-api.test%2Fv1%2Fitems%20(all)*!~'"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	long := "0-GET-api.test/" + strings.Repeat("segment/", 60)
	name := FixtureName(long)
	if len(name) != 240 {
		t.Fatalf("expected truncation to 240, got %d", len(name))
	}
	if FixtureName(long) != name {
		t.Fatalf("truncation must be deterministic")
	}
}

func TestWriteFixtureJSON(t *testing.T) {
	dest := t.TempDir()
	if err := EnsureFixturesDir(dest); err != nil {
		t.Fatal(err)
	}
	route := &domain.Route{Key: "GET-api.test/a", IsJSON: true}
	resp := route.Add(200, []byte(`{"a":1}`), nil)

	rel, err := WriteFixture(route, resp, dest)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if rel != "./fixtures/0-GET-api.test%2Fa.json" {
		t.Fatalf("relative path: %q", rel)
	}
	b, err := os.ReadFile(filepath.Join(dest, rel))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "{\n  \"a\": 1\n}" {
		t.Fatalf("fixture content: %q", b)
	}
}

func TestWriteFixtureJSONKeepsKeyOrder(t *testing.T) {
	dest := t.TempDir()
	_ = EnsureFixturesDir(dest)
	route := &domain.Route{Key: "GET-h/o", IsJSON: true}
	resp := route.Add(200, []byte(" {\"z\":1,\"a\":[true,null]}\n"), nil)
	rel, err := WriteFixture(route, resp, dest)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(filepath.Join(dest, rel))
	want := "{\n  \"z\": 1,\n  \"a\": [\n    true,\n    null\n  ]\n}"
	if string(b) != want {
		t.Fatalf("got %q", b)
	}
}

func TestWriteFixtureJSONKeepsSourceSpelling(t *testing.T) {
	dest := t.TempDir()
	_ = EnsureFixturesDir(dest)
	route := &domain.Route{Key: "GET-h/n", IsJSON: true}
	resp := route.Add(200, []byte(`{"n":1.0,"s":"caf\u00e9"}`), nil)
	rel, err := WriteFixture(route, resp, dest)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(filepath.Join(dest, rel))
	want := "{\n  \"n\": 1.0,\n  \"s\": \"caf\\u00e9\"\n}"
	if string(b) != want {
		t.Fatalf("got %q want %q", b, want)
	}
}

func TestWriteFixtureHTMLVerbatim(t *testing.T) {
	dest := t.TempDir()
	_ = EnsureFixturesDir(dest)
	route := &domain.Route{Key: "GET-h/page"}
	body := []byte("<html>\n  {not json}\n</html>")
	resp := route.Add(200, body, nil)
	rel, err := WriteFixture(route, resp, dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(rel, ".html") {
		t.Fatalf("extension: %q", rel)
	}
	b, _ := os.ReadFile(filepath.Join(dest, rel))
	if string(b) != string(body) {
		t.Fatalf("body changed: %q", b)
	}
}

func TestWriteFixtureInvalidJSONFails(t *testing.T) {
	dest := t.TempDir()
	_ = EnsureFixturesDir(dest)
	route := &domain.Route{Key: "GET-h/bad", IsJSON: true}
	resp := route.Add(200, []byte("<html>"), nil)
	if _, err := WriteFixture(route, resp, dest); err == nil {
		t.Fatalf("expected invalid JSON to fail")
	}
}
