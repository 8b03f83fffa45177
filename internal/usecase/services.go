package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/divmain/drydock-scaffold/internal/domain"
)

// Reporter prints a human-readable trail of the recording.
type Reporter interface {
	Request(no uint64, method, href string)
	Response(no uint64, status int, href string)
	Error(no uint64, detail string)
}

// Publisher fans recording events out to live listeners.
type Publisher interface {
	Publish(ev domain.Event)
}

// RecordingService observes the recording proxy and accumulates the
// transactions later handed to the mock synthesizer.
type RecordingService struct {
	session  string
	txs      TransactionRepository
	reporter Reporter
	events   Publisher
	logger   *zerolog.Logger
}

func NewRecordingService(session string, txs TransactionRepository, reporter Reporter, events Publisher) *RecordingService {
	nop := zerolog.Nop()
	return &RecordingService{session: session, txs: txs, reporter: reporter, events: events, logger: &nop}
}

// WithLogger sets where repository anomalies are reported.
func (s *RecordingService) WithLogger(logger *zerolog.Logger) *RecordingService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *RecordingService) Session() string { return s.session }

func (s *RecordingService) OnRequestStart(tx domain.Transaction) {
	if err := s.txs.Begin(tx); err != nil {
		s.logger.Warn().Str("session", s.session).Uint64("transaction", tx.No).Str("href", tx.Href).Err(err).Msg("transaction not stored")
	}
	if s.reporter != nil {
		s.reporter.Request(tx.No, tx.Method, tx.Href)
	}
	s.publish(domain.Event{Type: domain.EventRequestStarted, TransactionNo: tx.No, Method: tx.Method, Href: tx.Href})
}

func (s *RecordingService) OnResponseComplete(ctx context.Context, tx domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.txs.Complete(tx); err != nil {
		return err
	}
	if s.reporter != nil {
		s.reporter.Response(tx.No, tx.Response.StatusCode, tx.Href)
	}
	s.publish(domain.Event{Type: domain.EventResponseCompleted, TransactionNo: tx.No, Method: tx.Method, Href: tx.Href, Status: tx.Response.StatusCode})
	return nil
}

func (s *RecordingService) OnForwardError(no uint64) {
	if err := s.txs.Fail(no); err != nil {
		s.logger.Warn().Str("session", s.session).Uint64("transaction", no).Err(err).Msg("transaction failure not stored")
	}
	href := ""
	if tx, ok := s.txs.Get(no); ok {
		href = tx.Href
	}
	if s.reporter != nil {
		s.reporter.Error(no, "forward failed "+href)
	}
	s.publish(domain.Event{Type: domain.EventForwardFailed, TransactionNo: no, Href: href})
}

// Transactions returns the recorded list indexed by transaction number.
// Failed and unfinished transactions are nil.
func (s *RecordingService) Transactions() []*domain.Transaction {
	return s.txs.List()
}

// Get returns one transaction in whatever state it currently is.
func (s *RecordingService) Get(no uint64) (domain.Transaction, bool) {
	return s.txs.Get(no)
}

// Snapshot returns every transaction seen so far, in number order.
func (s *RecordingService) Snapshot() []domain.Transaction {
	return s.txs.Snapshot()
}

func (s *RecordingService) Count() int { return s.txs.Len() }

func (s *RecordingService) publish(ev domain.Event) {
	if s.events == nil {
		return
	}
	ev.Session = s.session
	ev.Ts = time.Now().UTC()
	s.events.Publish(ev)
}
