package usecase

import (
	"github.com/divmain/drydock-scaffold/internal/domain"
)

// TransactionRepository keeps the transactions of one recording session,
// addressed by transaction number.
type TransactionRepository interface {
	// Begin stores a transaction whose response facet is not yet known.
	Begin(tx domain.Transaction) error
	// Complete replaces the in-flight transaction with its completed form.
	Complete(tx domain.Transaction) error
	// Fail marks the transaction as errored.
	Fail(no uint64) error
	Get(no uint64) (domain.Transaction, bool)
	// List returns one slot per transaction number; failed and in-flight slots are nil.
	List() []*domain.Transaction
	// Snapshot returns every known transaction, in-flight and failed ones included.
	Snapshot() []domain.Transaction
	Len() int
}
