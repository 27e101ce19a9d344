package handle

import (
	"context"
	"regexp"
)

// BeginTransaction opens a transaction on the handle's connection. The
// handle only remembers that a transaction is open so Close can roll it
// back; isolation levels are not tracked.
func (h *Handle) BeginTransaction(ctx context.Context) error {
	_, _, err := h.run(ctx, callSite(1), beginStatement(h.cfg.Driver), nil)
	return err
}

// Commit commits the open transaction.
func (h *Handle) Commit(ctx context.Context) error {
	_, _, err := h.run(ctx, callSite(1), "COMMIT;", nil)
	return err
}

// Rollback aborts the open transaction.
func (h *Handle) Rollback(ctx context.Context) error {
	_, _, err := h.run(ctx, callSite(1), "ROLLBACK;", nil)
	return err
}

var rollbackToSavepoint = regexp.MustCompile(`(?i)^\s*ROLLBACK\s+((TRANSACTION|WORK)\s+)?TO\b`)

// transactionEffect reports whether a successful sql leaves the connection
// inside a transaction. changed is false for statements that neither open
// nor end one.
func transactionEffect(sql string) (open, changed bool) {
	switch leadingKeyword(sql) {
	case "BEGIN", "START":
		return true, true
	case "COMMIT", "END", "ABORT":
		return false, true
	case "ROLLBACK":
		if rollbackToSavepoint.MatchString(sql) {
			return false, false
		}
		return false, true
	}
	return false, false
}
