package expense

import (
	"fmt"

	"github.com/google/uuid"
)

// PersistenceError means an atomic write failed. Nothing from the
// operation was committed; retrying is up to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ReconcileError means a settlement unit of work for ExpenseID was aborted.
// No distribution, rollup or ledger change from the call was committed.
type ReconcileError struct {
	ExpenseID uuid.UUID
	Err       error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconcile expense %s: %v", e.ExpenseID, e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}
