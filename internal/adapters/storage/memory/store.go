package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/divmain/drydock-scaffold/internal/domain"
)

var (
	ErrUnknownTransaction   = errors.New("unknown transaction")
	ErrDuplicateTransaction = errors.New("duplicate transaction number")
)

// Store holds transactions in memory for the lifetime of a recording session.
// Slots are indexed by transaction number; numbers that never reached the
// proxy stay empty.
type Store struct {
	mu    sync.RWMutex
	slots []*domain.Transaction
	count int
}

func NewStore() *Store {
	return &Store{slots: make([]*domain.Transaction, 0, 64)}
}

func (s *Store) Begin(tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uint64(len(s.slots)) <= tx.No {
		s.slots = append(s.slots, nil)
	}
	if s.slots[tx.No] != nil {
		return fmt.Errorf("%w: %d", ErrDuplicateTransaction, tx.No)
	}
	cp := tx
	s.slots[tx.No] = &cp
	s.count++
	return nil
}

func (s *Store) Complete(tx domain.Transaction) error {
	if tx.Response == nil {
		return fmt.Errorf("complete transaction %d: missing response", tx.No)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.lookupLocked(tx.No)
	if err != nil {
		return err
	}
	done, err := cur.WithResponse(*tx.Response)
	if err != nil {
		return fmt.Errorf("complete transaction %d: %w", tx.No, err)
	}
	s.slots[tx.No] = &done
	return nil
}

func (s *Store) Fail(no uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.lookupLocked(no)
	if err != nil {
		return err
	}
	failed, err := cur.WithError()
	if err != nil {
		return fmt.Errorf("fail transaction %d: %w", no, err)
	}
	s.slots[no] = &failed
	return nil
}

func (s *Store) Get(no uint64) (domain.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if no >= uint64(len(s.slots)) || s.slots[no] == nil {
		return domain.Transaction{}, false
	}
	return *s.slots[no], true
}

func (s *Store) List() []*domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Transaction, len(s.slots))
	for i, tx := range s.slots {
		if tx == nil || tx.Response == nil {
			continue
		}
		cp := *tx
		out[i] = &cp
	}
	return out
}

func (s *Store) Snapshot() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, 0, s.count)
	for _, tx := range s.slots {
		if tx != nil {
			out = append(out, *tx)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *Store) lookupLocked(no uint64) (domain.Transaction, error) {
	if no >= uint64(len(s.slots)) || s.slots[no] == nil {
		return domain.Transaction{}, fmt.Errorf("%w: %d", ErrUnknownTransaction, no)
	}
	return *s.slots[no], nil
}
