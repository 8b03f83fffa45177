// Package codegen holds the intermediate representation of a generated mock
// server and the emitters that turn it into source text.
//
// The Render* constructors are pure; only an Emitter knows the target language.
package codegen

import (
	"fmt"
	"io"
	"net"
	"strconv"
)

// Handler replays one recorded response.
type Handler struct {
	Name        string
	FixturePath string
	IsJSON      bool
	StatusCode  int
}

// HandlerTable lists the handlers of one route in replay order.
type HandlerTable struct {
	Handlers []Handler
}

// Route is one mocked endpoint.
type Route struct {
	Name        string
	Method      string
	Path        string
	Hostname    string
	ContentType string
	Handlers    HandlerTable
}

// Module is the whole generated server.
type Module struct {
	Host   string
	Port   int
	Routes []Route
}

// Emitter serializes a Module into source text.
type Emitter interface {
	// Filename is the entry-point file the emitter's output is written to.
	Filename() string
	Emit(w io.Writer, m Module) error
}

func RenderHandler(name, fixturePath string, isJSON bool, statusCode int) Handler {
	return Handler{Name: name, FixturePath: fixturePath, IsJSON: isJSON, StatusCode: statusCode}
}

func RenderHandlers(handlers []Handler) HandlerTable {
	cp := make([]Handler, len(handlers))
	copy(cp, handlers)
	return HandlerTable{Handlers: cp}
}

// RouteSpec carries the inputs of RenderRoute.
type RouteSpec struct {
	Name        string
	Method      string
	Path        string
	Hostname    string
	ContentType string
	Handlers    HandlerTable
}

func RenderRoute(spec RouteSpec) Route {
	return Route(spec)
}

// RenderMock assembles the module listening on listenAddr ("ip:port").
func RenderMock(listenAddr string, routes []Route) (Module, error) {
	host, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return Module{}, fmt.Errorf("listen address %q: %w", listenAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return Module{}, fmt.Errorf("listen address %q: invalid port", listenAddr)
	}
	cp := make([]Route, len(routes))
	copy(cp, routes)
	return Module{Host: host, Port: port, Routes: cp}, nil
}
