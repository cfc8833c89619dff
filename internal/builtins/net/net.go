// Package net implements the "net" native function package: reachable
// dials a host over TCP, honoring the evaluation's cancellation and
// deadline, and reports the outcome as a policy Transform rather than
// throwing away the diagnostic.
package net

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/funcpkg"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

// DefaultDialTimeout bounds a dial attempt when the binding environment
// supplies no "timeout"; an earlier ctx deadline still cuts it shorter.
const DefaultDialTimeout = 5 * time.Second

// Functions returns the net package's exported functions, keyed the way
// the Linker's world-name census expects: bare identifiers, qualified by
// the host's chosen PackagePath at registration time.
func Functions() funcpkg.Static {
	return funcpkg.Static{
		"reachable": Reachable,
	}
}

// Reachable dials input (a String host, "host:port") and reports
// reachability as a Transform{host, reachable, latency_ms}, plus an "error"
// field when the dial failed. A "timeout" binding
// (Const Integer, milliseconds) overrides DefaultDialTimeout. Reachable
// never returns a RuntimeError for a refused or timed-out connection --
// that is exactly the outcome under test -- only for malformed input or
// evaluation cancellation.
func Reachable(ctx context.Context, input value.RuntimeValue, bindings *polytype.Bindings, ec evalctx.EvalContext) (value.Output, error) {
	if err := evalctx.CheckCancelled(ctx); err != nil {
		return value.Output{}, err
	}
	if input.Kind() != value.KindString {
		return value.Output{}, fmt.Errorf("net::reachable: expected a String host, got %s", input.Kind())
	}
	host := input.AsString()

	timeout := DefaultDialTimeout
	if t, ok := bindings.Lookup("timeout"); ok {
		if c, ok := t.(polytype.Const); ok && c.Value.Kind() == value.KindInteger {
			timeout = time.Duration(c.Value.AsInteger()) * time.Millisecond
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(dialCtx, "tcp", host)
	elapsed := time.Since(start)

	fields := map[string]value.RuntimeValue{
		"host":        value.String(host),
		"latency_ms":  value.Integer(elapsed.Milliseconds()),
		"reachable":   value.Bool(err == nil),
	}
	keys := []string{"host", "reachable", "latency_ms"}
	if err != nil {
		fields["error"] = value.String(err.Error())
		keys = append(keys, "error")
	} else {
		conn.Close()
	}

	return value.Transform(value.Object(keys, fields)), nil
}
