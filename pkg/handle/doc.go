/*
Package handle provides connection handles: exclusive, registry-tracked
database connections with a parameterized query helper, statement builders,
an update-then-insert merge, transactions and row iteration.

A Manager owns the shared pieces (configuration, the driver connector, the
registry of open handles, the idle reaper and the result cache). Handles
are created from it:

	mgr, err := handle.NewManager(cfg, handle.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer mgr.Close()

	h, err := mgr.Open(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	where, _ := h.WhereHelper(core.Conditions{core.Cond("name -like", "h%")})
	rows, err := h.SelectHelper(ctx, core.SelectOptions{
		Table:        "users",
		WhereOptions: core.WhereOptions{Where: &where},
	})

SQL passed to a handle uses '?' placeholders; they are rewritten to the
driver's $1, $2, ... form before execution.

A Handle is not safe for concurrent use. Callers must wait for one call to
return before issuing the next. Merge is not atomic: an UPDATE that misses
followed by an INSERT that loses a race is simply retried, up to ten
times. Wrap the call in BeginTransaction/Commit when that matters.
*/
package handle
