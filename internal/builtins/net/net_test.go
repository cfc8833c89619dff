package net

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

func TestReachableSucceedsAgainstLocalListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	out, err := Reachable(context.Background(), value.String(ln.Addr().String()), nil, evalctx.Background())
	require.NoError(t, err)
	require.True(t, out.IsTransform())

	host, ok := out.Value().Field("reachable")
	require.True(t, ok)
	assert.True(t, host.AsBool())
}

func TestReachableReportsFailureWithoutError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	out, err := Reachable(context.Background(), value.String(addr), nil, evalctx.Background())
	require.NoError(t, err)
	reachable, _ := out.Value().Field("reachable")
	assert.False(t, reachable.AsBool())
	_, hasErr := out.Value().Field("error")
	assert.True(t, hasErr)
}

func TestReachableRejectsNonStringInput(t *testing.T) {
	_, err := Reachable(context.Background(), value.Integer(1), nil, evalctx.Background())
	require.Error(t, err)
}

func TestReachableHonorsTimeoutBinding(t *testing.T) {
	bindings := (*polytype.Bindings)(nil).Push(map[string]polytype.Type{
		"timeout": polytype.Const{Value: value.Integer(10)},
	})

	// 203.0.113.1 is in TEST-NET-3 (RFC 5737), guaranteed unreachable/non-routable.
	out, err := Reachable(context.Background(), value.String("203.0.113.1:81"), bindings, evalctx.Background())
	require.NoError(t, err)
	reachable, _ := out.Value().Field("reachable")
	assert.False(t, reachable.AsBool())
}

func TestReachableRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Reachable(ctx, value.String("127.0.0.1:1"), nil, evalctx.Background())
	require.Error(t, err)
}
