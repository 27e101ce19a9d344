package handle

import (
	"context"
	"errors"

	"github.com/asaidimu/sqlhandle/pkg/core"
)

// MaxMergeAttempts bounds the UPDATE/INSERT cycles of one Merge.
const MaxMergeAttempts = 10

// Merge applies insert-or-update semantics. The UPDATE runs first; if it
// touches a row the outcome is core.MergeOutcomeUpdate and the INSERT is
// never attempted. Otherwise the INSERT runs, and on success the outcome
// is core.MergeOutcomeInsert. An INSERT that fails, typically because a
// concurrent writer inserted the same key, restarts the cycle. After
// MaxMergeAttempts cycles Merge returns a *core.MergeError.
//
// The two statements are not wrapped in a transaction.
func (h *Handle) Merge(ctx context.Context, pair core.MergePair) (core.MergeOutcome, error) {
	return h.merge(ctx, callSite(1), pair)
}

func (h *Handle) merge(ctx context.Context, caller string, pair core.MergePair) (core.MergeOutcome, error) {
	var lastErr error
	for attempt := 1; attempt <= MaxMergeAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			h.logger.Error("merge cancelled", "attempt", attempt, "error", err)
			return "", err
		}

		_, updated, err := h.run(ctx, caller, pair.UpdateSQL, pair.UpdateParams)
		if err != nil {
			h.logger.Error("merge update failed", "attempt", attempt, "error", err)
			return "", err
		}
		if updated > 0 {
			return core.MergeOutcomeUpdate, nil
		}

		_, inserted, err := h.run(ctx, caller, pair.InsertSQL, pair.InsertParams)
		if err != nil {
			if errors.Is(err, core.ErrConnectionNotOpen) {
				return "", err
			}
			lastErr = err
			h.logger.Warn("merge insert failed, retrying", "attempt", attempt, "error", err)
			continue
		}
		if inserted > 0 {
			return core.MergeOutcomeInsert, nil
		}
		lastErr = nil
	}

	merr := &core.MergeError{Attempts: MaxMergeAttempts, Pair: pair, LastErr: lastErr}
	h.mu.Lock()
	if h.state == stateOpen {
		h.lastErr = merr
	}
	h.mu.Unlock()
	h.logger.Error("merge iteration limit exceeded",
		"update_sql", pair.UpdateSQL,
		"update_params", pair.UpdateParams,
		"insert_sql", pair.InsertSQL,
		"insert_params", pair.InsertParams,
		"caller", caller,
	)
	return "", merr
}
