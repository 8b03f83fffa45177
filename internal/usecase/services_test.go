package usecase_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/google/go-cmp/cmp"

	"github.com/divmain/drydock-scaffold/internal/adapters/storage/memory"
	"github.com/divmain/drydock-scaffold/internal/domain"
	"github.com/divmain/drydock-scaffold/internal/usecase"
)

type recordedRow struct {
	Kind   string
	No     uint64
	Status int
}

type stubReporter struct {
	mu   sync.Mutex
	rows []recordedRow
}

func (r *stubReporter) Request(no uint64, method, href string) {
	r.add(recordedRow{Kind: "request", No: no})
}
func (r *stubReporter) Response(no uint64, status int, href string) {
	r.add(recordedRow{Kind: "response", No: no, Status: status})
}
func (r *stubReporter) Error(no uint64, detail string) { r.add(recordedRow{Kind: "error", No: no}) }
func (r *stubReporter) add(row recordedRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
}

type stubPublisher struct{ events []domain.Event }

func (p *stubPublisher) Publish(ev domain.Event) { p.events = append(p.events, ev) }

func TestRecordingServiceLifecycle(t *testing.T) {
	rep := &stubReporter{}
	pub := &stubPublisher{}
	svc := usecase.NewRecordingService("s1", memory.NewStore(), rep, pub)

	svc.OnRequestStart(domain.Transaction{No: 0, Method: "GET", Href: "http://a.test/x"})
	svc.OnRequestStart(domain.Transaction{No: 1, Method: "GET", Href: "http://b.test/y"})
	err := svc.OnResponseComplete(context.Background(), domain.Transaction{
		No: 0, Method: "GET", Href: "http://a.test/x",
		Response: &domain.Response{StatusCode: 201, Body: []byte("ok")},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	svc.OnForwardError(1)

	wantRows := []recordedRow{
		{Kind: "request", No: 0},
		{Kind: "request", No: 1},
		{Kind: "response", No: 0, Status: 201},
		{Kind: "error", No: 1},
	}
	if diff := cmp.Diff(wantRows, rep.rows); diff != "" {
		t.Fatalf("reporter rows mismatch (-want +got):\n%s", diff)
	}

	txs := svc.Transactions()
	if len(txs) != 2 || txs[0] == nil || txs[1] != nil {
		t.Fatalf("expected completed slot 0 and nil slot 1, got %+v", txs)
	}
	if string(txs[0].Response.Body) != "ok" {
		t.Fatalf("body: %q", txs[0].Response.Body)
	}

	var types []string
	for _, ev := range pub.events {
		if ev.Session != "s1" {
			t.Fatalf("event without session: %+v", ev)
		}
		types = append(types, ev.Type)
	}
	wantTypes := []string{domain.EventRequestStarted, domain.EventRequestStarted, domain.EventResponseCompleted, domain.EventForwardFailed}
	if diff := cmp.Diff(wantTypes, types); diff != "" {
		t.Fatalf("event types mismatch (-want +got):\n%s", diff)
	}
	if pub.events[3].Href != "http://b.test/y" {
		t.Fatalf("forward_failed event should carry href: %+v", pub.events[3])
	}
}

func TestRecordingServiceRejectsSecondResponse(t *testing.T) {
	svc := usecase.NewRecordingService("s", memory.NewStore(), nil, nil)
	svc.OnRequestStart(domain.Transaction{No: 0})
	done := domain.Transaction{No: 0, Response: &domain.Response{StatusCode: 200}}
	if err := svc.OnResponseComplete(context.Background(), done); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := svc.OnResponseComplete(context.Background(), done); err == nil {
		t.Fatalf("second completion should fail")
	}
}

func TestRecordingServiceLogsRepositoryAnomalies(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	svc := usecase.NewRecordingService("s", memory.NewStore(), nil, nil).WithLogger(&logger)

	svc.OnRequestStart(domain.Transaction{No: 4, Href: "http://a.test/"})
	svc.OnRequestStart(domain.Transaction{No: 4, Href: "http://a.test/again"})
	svc.OnForwardError(9)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two warnings, got %q", buf.String())
	}
	if !strings.Contains(lines[0], `"level":"warn"`) || !strings.Contains(lines[0], `"transaction":4`) || !strings.Contains(lines[0], "duplicate") {
		t.Fatalf("duplicate number not reported: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"transaction":9`) || !strings.Contains(lines[1], "unknown") {
		t.Fatalf("unknown failure not reported: %s", lines[1])
	}
	if got, _ := svc.Get(4); got.Href != "http://a.test/" {
		t.Fatalf("first transaction must be kept: %+v", got)
	}
}
