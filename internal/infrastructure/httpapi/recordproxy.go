package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/divmain/drydock-scaffold/internal/domain"
	"github.com/divmain/drydock-scaffold/internal/infrastructure/config"
	obs "github.com/divmain/drydock-scaffold/internal/infrastructure/observability"
)

// Observer receives the lifecycle of every exchange handled by a RecordingProxy.
//
// OnRequestStart is called before any upstream I/O, in transaction number order.
// Exactly one of OnResponseComplete or OnForwardError follows for each number.
// OnResponseComplete blocks the exchange until the observer is done with it.
type Observer interface {
	OnRequestStart(tx domain.Transaction)
	OnResponseComplete(ctx context.Context, tx domain.Transaction) error
	OnForwardError(transactionNo uint64)
}

var (
	errMissingHost  = errors.New("request carries no target host")
	errSelfForward  = errors.New("request targets the recording proxy itself")
	errBodyTooLarge = errors.New("body exceeds capture limit")
)

// RecordingProxy is a transparent forward proxy that reports every exchange to an Observer.
type RecordingProxy struct {
	cfg       config.Config
	logger    *zerolog.Logger
	metrics   *obs.Metrics
	observer  Observer
	transport http.RoundTripper

	seq     atomic.Uint64
	startMu sync.Mutex

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

func NewRecordingProxy(cfg config.Config, logger *zerolog.Logger, metrics *obs.Metrics, observer Observer) *RecordingProxy {
	return &RecordingProxy{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		observer:  observer,
		transport: newTransport(cfg),
	}
}

// Start binds addr and serves in the background. It returns once the listener is bound.
func (p *RecordingProxy) Start(addr string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.srv != nil {
		return errors.New("recording proxy already started")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           withCORS(p.cfg, p),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	p.srv, p.ln = srv, ln
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error().Err(err).Msg("recording proxy server error")
		}
	}()
	p.logger.Info().Str("addr", ln.Addr().String()).Msg("recording proxy listening")
	return nil
}

// Stop shuts the server down, waiting for in-flight exchanges until ctx is done.
// Stopping a stopped proxy is a no-op.
func (p *RecordingProxy) Stop(ctx context.Context) error {
	p.mu.Lock()
	srv := p.srv
	p.srv = nil
	p.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop recording proxy: %w", err)
	}
	p.logger.Info().Uint64("transactions", p.seq.Load()).Msg("recording proxy stopped")
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (p *RecordingProxy) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ln == nil {
		return ""
	}
	return p.ln.Addr().String()
}

func (p *RecordingProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodConnect {
		writeError(w, http.StatusMethodNotAllowed, "CONNECT_NOT_SUPPORTED", "only plain HTTP requests can be recorded", map[string]any{"target": r.Host})
		return
	}
	p.metrics.InflightRequests.Inc()
	defer p.metrics.InflightRequests.Dec()

	body, bodyErr := readLimited(r.Body, p.cfg.BodyMaxBytes)
	target, targetErr := p.resolveTarget(r)

	p.startMu.Lock()
	no := p.seq.Add(1) - 1
	tx := domain.Transaction{
		No:             no,
		Method:         r.Method,
		Protocol:       target.Scheme,
		Hostname:       target.Hostname(),
		Pathname:       domain.Pathname(target),
		Href:           target.String(),
		RequestHeaders: cloneHeader(r.Header),
		RequestBody:    body,
	}
	p.observer.OnRequestStart(tx)
	p.startMu.Unlock()
	p.metrics.TransactionsTotal.WithLabelValues(r.Method).Inc()

	if err := errors.Join(bodyErr, targetErr); err != nil {
		p.fail(w, no, err)
		return
	}

	resp, raw, err := p.forward(r.Context(), r, target, body)
	if err != nil {
		p.fail(w, no, err)
		return
	}

	// The client sees exactly what the upstream sent.
	removeHopHeaders(resp.Header)
	replaceHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(raw)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	decoded, fellBack := BestEffortDecompress(raw, resp.Header.Get("Content-Encoding"))
	if fellBack {
		p.metrics.DecompressFallbackTotal.Inc()
	}
	tx.Response = &domain.Response{
		StatusCode: resp.StatusCode,
		Headers:    domain.FlattenHeader(resp.Header),
		Body:       decoded,
	}
	if err := p.observer.OnResponseComplete(context.WithoutCancel(r.Context()), tx); err != nil {
		p.logger.Warn().Uint64("transaction", no).Err(err).Msg("response observer failed")
	}
}

// forward sends the request to its original destination and reads the full response.
func (p *RecordingProxy) forward(ctx context.Context, r *http.Request, target *url.URL, body []byte) (*http.Response, []byte, error) {
	if p.cfg.ForwardTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.ForwardTimeout)
		defer cancel()
	}
	outReq, err := http.NewRequestWithContext(ctx, r.Method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	outReq.Header = cloneHeader(r.Header)
	removeHopHeaders(outReq.Header)
	outReq.Host = target.Host
	if len(body) == 0 {
		outReq.Body = http.NoBody
		outReq.ContentLength = 0
	}

	resp, err := p.transport.RoundTrip(outReq)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	raw, err := readLimited(resp.Body, p.cfg.BodyMaxBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("read upstream body: %w", err)
	}
	return resp, raw, nil
}

// fail reports a forward failure and answers the client with an empty 500.
func (p *RecordingProxy) fail(w http.ResponseWriter, no uint64, err error) {
	p.metrics.ForwardErrorsTotal.Inc()
	p.observer.OnForwardError(no)
	p.logger.Error().Uint64("transaction", no).Err(err).Msg("forward failed")
	w.WriteHeader(http.StatusInternalServerError)
}

// resolveTarget derives the destination from the request itself. Absolute-form
// targets are used as-is; origin-form targets are resolved against Host.
func (p *RecordingProxy) resolveTarget(r *http.Request) (*url.URL, error) {
	u := *r.URL
	u.User = nil
	if u.Scheme == "" || u.Host == "" {
		if r.Host == "" {
			return &u, errMissingHost
		}
		u.Scheme = "http"
		u.Host = r.Host
	}
	if p.isSelf(u.Host) {
		return &u, errSelfForward
	}
	return &u, nil
}

func (p *RecordingProxy) isSelf(hostport string) bool {
	self := p.Addr()
	if self == "" {
		return false
	}
	if hostport == self {
		return true
	}
	selfHost, selfPort, err := net.SplitHostPort(self)
	if err != nil {
		return false
	}
	host, port, err := net.SplitHostPort(hostport)
	if err != nil || port != selfPort {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	sip := net.ParseIP(selfHost)
	if ip == nil || sip == nil {
		return false
	}
	return ip.Equal(sip) || (sip.IsUnspecified() && (ip.IsLoopback() || ip.IsUnspecified()))
}

func readLimited(r io.Reader, max int) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	if max <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, int64(max)+1))
	if err != nil {
		return nil, err
	}
	if len(b) > max {
		return nil, fmt.Errorf("%w (%d bytes)", errBodyTooLarge, max)
	}
	return b, nil
}
