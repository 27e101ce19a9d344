package handle

import (
	"context"

	"github.com/asaidimu/sqlhandle/pkg/builder"
	"github.com/asaidimu/sqlhandle/pkg/core"
)

// SelectHelper builds a SELECT from opts and runs it.
func (h *Handle) SelectHelper(ctx context.Context, opts core.SelectOptions) ([]core.Row, error) {
	stmt, err := builder.Select(opts)
	if err != nil {
		h.logger.Error("select helper", "table", opts.Table, "error", err)
		return nil, err
	}
	rows, _, err := h.run(ctx, callSite(1), stmt.SQL, stmt.Params)
	return rows, err
}

// InsertHelper builds an INSERT from opts, runs it and returns the number
// of rows inserted.
func (h *Handle) InsertHelper(ctx context.Context, opts core.InsertOptions) (int64, error) {
	stmt, err := builder.Insert(opts)
	if err != nil {
		h.logger.Error("insert helper", "table", opts.Table, "error", err)
		return 0, err
	}
	_, count, err := h.run(ctx, callSite(1), stmt.SQL, stmt.Params)
	return count, err
}

// UpdateHelper builds an UPDATE from opts, runs it and returns the number
// of rows updated.
func (h *Handle) UpdateHelper(ctx context.Context, opts core.UpdateOptions) (int64, error) {
	stmt, err := builder.Update(opts)
	if err != nil {
		h.logger.Error("update helper", "table", opts.Table, "error", err)
		return 0, err
	}
	_, count, err := h.run(ctx, callSite(1), stmt.SQL, stmt.Params)
	return count, err
}

// DeleteHelper builds a DELETE from opts, runs it and returns the number
// of rows deleted.
func (h *Handle) DeleteHelper(ctx context.Context, opts core.DeleteOptions) (int64, error) {
	stmt, err := builder.Delete(opts)
	if err != nil {
		h.logger.Error("delete helper", "table", opts.Table, "error", err)
		return 0, err
	}
	_, count, err := h.run(ctx, callSite(1), stmt.SQL, stmt.Params)
	return count, err
}

// MergeHelper builds the INSERT/UPDATE pair from opts and merges it.
func (h *Handle) MergeHelper(ctx context.Context, opts core.MergeOptions) (core.MergeOutcome, error) {
	pair, err := builder.MergePair(opts)
	if err != nil {
		h.logger.Error("merge helper", "table", opts.Table, "error", err)
		return "", err
	}
	return h.merge(ctx, callSite(1), pair)
}

// WhereHelper is builder.Where.
func (h *Handle) WhereHelper(conds core.Conditions) (core.WhereClause, error) {
	where, err := builder.Where(conds)
	if err != nil {
		h.logger.Error("where helper", "error", err)
		return core.WhereClause{}, err
	}
	return where, nil
}

// OrderByHelper is builder.OrderBy.
func (h *Handle) OrderByHelper(cols []core.OrderColumn) (string, error) {
	orderBy, err := builder.OrderBy(cols)
	if err != nil {
		h.logger.Error("order by helper", "error", err)
		return "", err
	}
	return orderBy, nil
}
