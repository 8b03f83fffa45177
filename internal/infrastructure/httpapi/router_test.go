package httpapi_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/divmain/drydock-scaffold/internal/adapters/importers/har"
	"github.com/divmain/drydock-scaffold/internal/adapters/storage/memory"
	"github.com/divmain/drydock-scaffold/internal/domain"
	httpapi "github.com/divmain/drydock-scaffold/internal/infrastructure/httpapi"
	obs "github.com/divmain/drydock-scaffold/internal/infrastructure/observability"
	"github.com/divmain/drydock-scaffold/internal/usecase"
)

func startAdmin(t *testing.T) (*httptest.Server, *usecase.RecordingService, *httpapi.MonitorHub) {
	t.Helper()
	monitor := httpapi.NewMonitorHub()
	svc := usecase.NewRecordingService("sess-1", memory.NewStore(), nil, monitor)
	deps := &httpapi.Deps{
		Cfg:     testConfig(),
		Logger:  obs.NewLoggerTo(io.Discard, "disabled"),
		Metrics: obs.NewMetrics(),
		Svc:     svc,
		Monitor: monitor,
	}
	srv := httptest.NewServer(httpapi.NewAdminRouter(deps))
	t.Cleanup(srv.Close)
	return srv, svc, monitor
}

func seed(t *testing.T, svc *usecase.RecordingService) {
	t.Helper()
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer abc")
	hdr.Set("Accept", "application/json")
	svc.OnRequestStart(domain.Transaction{No: 0, Method: "GET", Hostname: "api.test", Pathname: "/me", Href: "http://api.test/me", RequestHeaders: hdr})
	svc.OnRequestStart(domain.Transaction{No: 1, Method: "GET", Hostname: "api.test", Pathname: "/down", Href: "http://api.test/down"})
	err := svc.OnResponseComplete(context.Background(), domain.Transaction{
		No: 0, Method: "GET", Hostname: "api.test", Pathname: "/me", Href: "http://api.test/me", RequestHeaders: hdr,
		Response: &domain.Response{
			StatusCode: 200,
			Headers:    map[string]string{"Content-Type": "application/json", "Set-Cookie": "sid=1"},
			Body:       []byte(`{"user":"ada","access_token":"xyz"}`),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	svc.OnForwardError(1)
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestAdminHealthAndVersion(t *testing.T) {
	srv, _, _ := startAdmin(t)
	for _, p := range []string{"/healthz", "/readyz", "/metrics"} {
		resp := getJSON(t, srv.URL+p, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: %d", p, resp.StatusCode)
		}
	}
	var v map[string]any
	getJSON(t, srv.URL+"/api/version", &v)
	if v["name"] != "drydock-scaffold" || v["session"] != "sess-1" {
		t.Fatalf("version payload: %v", v)
	}
}

func TestAdminListTransactionsRedacts(t *testing.T) {
	srv, svc, _ := startAdmin(t)
	seed(t, svc)

	var list struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	getJSON(t, srv.URL+"/api/transactions", &list)
	if list.Total != 2 || len(list.Items) != 2 {
		t.Fatalf("list: %+v", list)
	}
	if list.Items[0]["state"] != "completed" || list.Items[1]["state"] != "failed" {
		t.Fatalf("states: %v / %v", list.Items[0]["state"], list.Items[1]["state"])
	}
	reqHdr := list.Items[0]["requestHeaders"].(map[string]any)
	if reqHdr["Authorization"] != "***" || reqHdr["Accept"] != "application/json" {
		t.Fatalf("request headers not redacted: %v", reqHdr)
	}

	getJSON(t, srv.URL+"/api/transactions?state=failed", &list)
	if list.Total != 1 || list.Items[0]["href"] != "http://api.test/down" {
		t.Fatalf("filtered list: %+v", list)
	}

	var one map[string]any
	getJSON(t, srv.URL+"/api/transactions/0", &one)
	if one["responseHeaders"].(map[string]any)["Set-Cookie"] != "***" {
		t.Fatalf("set-cookie not redacted: %v", one["responseHeaders"])
	}
	if body := one["body"].(string); !strings.Contains(body, `"access_token":"***"`) || !strings.Contains(body, `"user":"ada"`) {
		t.Fatalf("body not redacted: %s", body)
	}

	if resp := getJSON(t, srv.URL+"/api/transactions/9", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing transaction status %d", resp.StatusCode)
	}
}

func TestAdminHARExportRoundTrips(t *testing.T) {
	srv, svc, _ := startAdmin(t)
	seed(t, svc)
	resp, err := http.Get(srv.URL + "/api/transactions.har")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	txs, err := har.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode exported HAR: %v", err)
	}
	if len(txs) != 1 || txs[0].Href != "http://api.test/me" || string(txs[0].Response.Body) != `{"user":"ada","access_token":"xyz"}` {
		t.Fatalf("exported entries: %+v", txs)
	}
}

func TestAdminMonitorWebsocket(t *testing.T) {
	srv, svc, monitor := startAdmin(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/monitor/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for monitor.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	sub := monitor.Subscribe()
	defer monitor.Unsubscribe(sub)

	svc.OnRequestStart(domain.Transaction{No: 0, Method: "GET", Href: "http://api.test/"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev domain.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != domain.EventRequestStarted || ev.Session != "sess-1" || ev.Href != "http://api.test/" {
		t.Fatalf("event: %+v", ev)
	}
	select {
	case got := <-sub:
		if got.TransactionNo != 0 || got.Type != domain.EventRequestStarted {
			t.Fatalf("subscriber event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber got nothing")
	}
}

// readSSEEvent reads one "event:/data:" frame from the stream.
func readSSEEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if event != "" || data != "" {
				return event, data
			}
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestAdminTransactionStream(t *testing.T) {
	srv, svc, _ := startAdmin(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/transactions_stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}
	r := bufio.NewReader(resp.Body)

	event, data := readSSEEvent(t, r)
	var hello map[string]any
	if err := json.Unmarshal([]byte(data), &hello); err != nil {
		t.Fatalf("hello data %q: %v", data, err)
	}
	if event != "hello" || hello["session"] != "sess-1" {
		t.Fatalf("hello frame: %s %v", event, hello)
	}

	svc.OnRequestStart(domain.Transaction{No: 0, Method: "POST", Href: "http://api.test/items"})

	event, data = readSSEEvent(t, r)
	if event != domain.EventRequestStarted {
		t.Fatalf("event %q", event)
	}
	var ev domain.Event
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		t.Fatalf("event data %q: %v", data, err)
	}
	if ev.TransactionNo != 0 || ev.Method != "POST" || ev.Href != "http://api.test/items" || ev.Session != "sess-1" {
		t.Fatalf("event payload: %+v", ev)
	}
}
