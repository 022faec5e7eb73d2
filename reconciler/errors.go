package reconciler

import "fmt"

// RPCError wraps a transient failure of an upstream RPC call. The main
// loop logs and retries the cycle on RPCError rather than halting.
type RPCError struct {
	Err error
}

func (e *RPCError) Error() string { return fmt.Sprintf("upstream rpc error: %s", e.Err) }
func (e *RPCError) Unwrap() error { return e.Err }

// InternalError is a fatal inconsistency: a malformed upstream response or
// a violated ordering invariant. The main loop propagates it and halts
// the reconciler rather than retrying, since retrying cannot fix a
// structurally wrong response.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return fmt.Sprintf("reconciler internal error: %s", e.Msg) }
