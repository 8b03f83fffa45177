package codegen

import (
	"bytes"
	"encoding/json"
	"io"
	"text/template"
)

// JSEmitter renders a dependency-free Node.js server.
type JSEmitter struct{}

func (JSEmitter) Filename() string { return "mock.js" }

func (JSEmitter) Emit(w io.Writer, m Module) error {
	var buf bytes.Buffer
	if err := jsTemplate.Execute(&buf, m); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// jsString renders s as a double-quoted JavaScript string literal.
func jsString(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var jsTemplate = template.Must(template.New("mock.js").Funcs(template.FuncMap{"js": jsString}).Parse(`"use strict";
// Generated by drydock-scaffold. Replays recorded HTTP responses.

const fs = require("fs");
const http = require("http");
const path = require("path");

const HOST = {{js .Host}};
const PORT = {{.Port}};

const routes = [
{{- range .Routes}}
  {
    name: {{js .Name}},
    method: {{js .Method}},
    hostname: {{js .Hostname}},
    path: {{js .Path}},
    contentType: {{js .ContentType}},
    calls: 0,
    handlers: [
{{- range .Handlers.Handlers}}
      { name: {{js .Name}}, status: {{.StatusCode}}, fixture: {{js .FixturePath}}, json: {{.IsJSON}} },
{{- end}}
    ],
  },
{{- end}}
];

function findRoute(method, hostname, pathname) {
  return routes.find((r) => r.method === method && r.hostname === hostname && r.path === pathname) ||
    routes.find((r) => r.method === method && r.path === pathname);
}

// The nth call to a route replays its nth handler; the last one repeats.
function nextHandler(route) {
  const handler = route.handlers[Math.min(route.calls, route.handlers.length - 1)];
  route.calls++;
  return handler;
}

const server = http.createServer((req, res) => {
  try {
    const url = new URL(req.url, "http://" + (req.headers.host || HOST));
    res.setHeader("Access-Control-Allow-Origin", "*");
    const route = findRoute(req.method, url.hostname, url.pathname);
    if (!route) {
      res.statusCode = 404;
      res.end();
      return;
    }
    const handler = nextHandler(route);
    const body = fs.readFileSync(path.join(__dirname, handler.fixture));
    res.statusCode = handler.status;
    res.setHeader("Content-Type", route.contentType);
    res.end(body);
  } catch (err) {
    console.error("mock server: " + req.method + " " + req.url + ": " + err.message);
    if (res.headersSent) {
      res.destroy();
      return;
    }
    res.statusCode = 500;
    res.end();
  }
});

server.listen(PORT, HOST, () => {
  console.log("mock server listening on http://" + HOST + ":" + PORT + " (" + routes.length + " routes)");
});

module.exports = server;
`))
