package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/divmain/drydock-scaffold/internal/adapters/importers/har"
	"github.com/divmain/drydock-scaffold/internal/domain"
	"github.com/divmain/drydock-scaffold/pkg/shared/redact"
)

// transactionView is what the admin API exposes: credentials masked, bodies as text when possible.
type transactionView struct {
	No             uint64            `json:"transactionNo"`
	Method         string            `json:"method"`
	Href           string            `json:"href"`
	Hostname       string            `json:"hostname"`
	Pathname       string            `json:"pathname"`
	RequestHeaders map[string]string `json:"requestHeaders,omitempty"`
	State          string            `json:"state"`
	Status         int               `json:"status,omitempty"`
	Headers        map[string]string `json:"responseHeaders,omitempty"`
	Body           string            `json:"body,omitempty"`
	BodySize       int               `json:"bodySize"`
}

// viewOf builds the admin view of tx. A negative previewMax leaves the body out.
func viewOf(tx domain.Transaction, previewMax int) transactionView {
	v := transactionView{
		No:             tx.No,
		Method:         tx.Method,
		Href:           tx.Href,
		Hostname:       tx.Hostname,
		Pathname:       tx.Pathname,
		RequestHeaders: redact.Headers(domain.FlattenHeader(tx.RequestHeaders)),
		State:          "pending",
	}
	switch {
	case tx.HadError:
		v.State = "failed"
	case tx.Response != nil:
		v.State = "completed"
		v.Status = tx.Response.StatusCode
		v.Headers = redact.Headers(tx.Response.Headers)
		v.BodySize = len(tx.Response.Body)
		if previewMax < 0 {
			break
		}
		body := tx.Response.Body
		if strings.Contains(tx.Response.ContentType(), "json") {
			body = []byte(redact.RedactJSON(string(body)))
		}
		v.Body = bodyPreview(body, previewMax)
	}
	return v
}

func (d *Deps) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is supported", nil)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	state := r.URL.Query().Get("state")

	all := d.Svc.Snapshot()
	items := make([]transactionView, 0, limit)
	total := 0
	for _, tx := range all {
		v := viewOf(tx, -1)
		if state != "" && v.State != state {
			continue
		}
		if total >= offset && len(items) < limit {
			items = append(items, v)
		}
		total++
	}
	writeJSON(w, map[string]any{"items": items, "total": total})
}

func (d *Deps) handleTransactionByNo(w http.ResponseWriter, r *http.Request) {
	// path: /api/transactions/{no}
	raw := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	no, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", map[string]any{"path": r.URL.Path})
		return
	}
	tx, ok := d.Svc.Get(no)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "transaction not found", map[string]any{"transactionNo": no})
		return
	}
	writeJSON(w, viewOf(tx, d.Cfg.PreviewMaxBytes))
}

func (d *Deps) handleExportHAR(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=drydock_"+d.Svc.Session()+".har")
	if err := har.Export(w, "drydock-scaffold", d.Svc.Snapshot()); err != nil {
		d.Logger.Error().Err(err).Msg("har export failed")
	}
}

// handleTransactionStream pushes recording events as Server-Sent Events.
func (d *Deps) handleTransactionStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAM_UNSUPPORTED", "stream unsupported", nil)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := d.Monitor.Subscribe()
	defer d.Monitor.Unsubscribe(sub)
	_ = writeSSE(w, flusher, "hello", map[string]any{"session": d.Svc.Session(), "count": d.Svc.Count()})
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := writeSSE(w, flusher, ev.Type, ev); err != nil {
				return
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("event: " + event + "\ndata: " + string(b) + "\n\n")); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
