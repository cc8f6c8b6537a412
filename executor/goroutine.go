package executor

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID extracts the calling goroutine's id by parsing the header of
// its own stack trace. It exists purely as a placement heuristic for
// Executor.Execute's "if the caller is itself a worker thread" rule: every
// Device loop registers itself under its goroutine id for the lifetime of
// its run, so a handler that sends to another actor — executing
// synchronously on that same goroutine — lands on the right local deque
// instead of the shared overflow queue. If parsing ever fails, callers fall
// back to the overflow queue, which is always correct, just less local.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	b = bytes.TrimPrefix(b, []byte(prefix))

	idx := bytes.IndexByte(b, ' ')
	if idx < 0 {
		return 0
	}

	id, err := strconv.ParseUint(string(b[:idx]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
