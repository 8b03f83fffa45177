// Package synth turns recorded transactions into a standalone mock server:
// one fixture file per recorded response plus the server entry point.
package synth

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/divmain/drydock-scaffold/internal/domain"
	"github.com/divmain/drydock-scaffold/internal/synth/codegen"
)

// ErrFixtureCollision is returned when two responses map to the same fixture file.
var ErrFixtureCollision = errors.New("fixture name collision")

// Synthesizer writes mocks into a destination directory. It is not safe to run
// two synthesizers against the same directory at once.
type Synthesizer struct {
	Emitter codegen.Emitter
	Logger  *zerolog.Logger
	// OnFixture is called after every fixture file is written.
	OnFixture func(path string)
}

// WriteMocks synthesizes a Node.js mock server listening on listenAddr.
func WriteMocks(listenAddr, dest string, txs []*domain.Transaction) error {
	return (&Synthesizer{}).Write(listenAddr, dest, txs)
}

// Write groups txs into routes, writes their fixtures and emits the mock module.
func (s *Synthesizer) Write(listenAddr, dest string, txs []*domain.Transaction) error {
	emitter := s.Emitter
	if emitter == nil {
		emitter = codegen.JSEmitter{}
	}
	logger := s.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	routes := GroupRoutes(txs)
	if err := EnsureFixturesDir(dest); err != nil {
		return err
	}

	nodes := make([]codegen.Route, 0, routes.Len())
	fixtures := 0
	// Truncated names can coincide; a second write would replace a fixture.
	owners := make(map[string]string)
	err := routes.Each(func(route *domain.Route) error {
		handlers := make([]codegen.Handler, 0, len(route.Responses))
		for _, resp := range route.Responses {
			if prev, ok := owners[FixtureName(resp.UniqueName)]; ok {
				return fmt.Errorf("%w: %q and %q", ErrFixtureCollision, prev, resp.UniqueName)
			}
			owners[FixtureName(resp.UniqueName)] = resp.UniqueName
			rel, err := WriteFixture(route, resp, dest)
			if err != nil {
				return err
			}
			fixtures++
			if s.OnFixture != nil {
				s.OnFixture(rel)
			}
			handlers = append(handlers, codegen.RenderHandler(resp.UniqueName, rel, route.IsJSON, resp.StatusCode))
		}
		nodes = append(nodes, codegen.RenderRoute(codegen.RouteSpec{
			Name:        route.Key,
			Method:      route.Method,
			Path:        route.Pathname,
			Hostname:    route.Hostname,
			ContentType: route.ContentType(),
			Handlers:    codegen.RenderHandlers(handlers),
		}))
		return nil
	})
	if err != nil {
		return err
	}

	mod, err := codegen.RenderMock(listenAddr, nodes)
	if err != nil {
		return err
	}
	var src bytes.Buffer
	if err := emitter.Emit(&src, mod); err != nil {
		return fmt.Errorf("emit %s: %w", emitter.Filename(), err)
	}
	out := filepath.Join(dest, emitter.Filename())
	if err := os.WriteFile(out, src.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info().Str("dest", dest).Int("routes", routes.Len()).Int("fixtures", fixtures).Str("file", out).Msg("mocks written")
	return nil
}
