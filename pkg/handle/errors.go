package handle

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/asaidimu/sqlhandle/pkg/core"
)

const genericQueryMessage = "query returned an unexpected result"

// newQueryError normalizes a driver or shape error.
func newQueryError(caller, sql string, params []any, err error) *core.QueryError {
	qerr := &core.QueryError{
		Caller:  caller,
		SQL:     sql,
		Params:  params,
		Message: genericQueryMessage,
		Err:     err,
	}

	var pqErr *pq.Error
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pqErr):
		qerr.Message = pqErr.Message
		qerr.Code = string(pqErr.Code)
	case errors.As(err, &liteErr):
		qerr.Message = liteErr.Error()
		qerr.Code = strconv.Itoa(int(liteErr.ExtendedCode))
	case errors.Is(err, errMalformedResult):
		// keep the generic message
	case err != nil && err.Error() != "":
		qerr.Message = err.Error()
	}
	return qerr
}

// callSite returns "file:line" for the caller skip frames above the
// function that calls callSite.
func callSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// captureStack formats the calling goroutine's stack, skipping frames
// inside this package.
func captureStack() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.Function, "sqlhandle/pkg/handle.") || strings.HasSuffix(frame.File, "_test.go") {
			if frame.Function == "runtime.goexit" {
				break
			}
			fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
