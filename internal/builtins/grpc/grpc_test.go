package grpc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jhump/protoreflect/dynamic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

const echoProto = `syntax = "proto3";
package test;

service Echo {
  rpc Ping (PingRequest) returns (PingReply);
}

message PingRequest {
  string message = 1;
}

message PingReply {
  string message = 1;
  bool ok = 2;
}
`

func writeEchoProto(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "echo.proto")
	require.NoError(t, os.WriteFile(path, []byte(echoProto), 0o644))
	return path
}

func bind(kv map[string]string) *polytype.Bindings {
	frame := map[string]polytype.Type{}
	for k, v := range kv {
		frame[k] = polytype.Const{Value: value.String(v)}
	}
	return (*polytype.Bindings)(nil).Push(frame)
}

func TestInvokeMissingBindingsFailFast(t *testing.T) {
	ctx := context.Background()
	req := value.Object([]string{"message"}, map[string]value.RuntimeValue{"message": value.String("hi")})

	_, err := Invoke(ctx, req, nil, evalctx.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target")
}

func TestLoadProtoParsesAndCachesService(t *testing.T) {
	path := writeEchoProto(t)

	fd, err := loadProto(path)
	require.NoError(t, err)
	require.NotNil(t, fd.FindService("test.Echo"))

	fd2, err := loadProto(path)
	require.NoError(t, err)
	assert.Same(t, fd, fd2)
}

func TestValueToDynamicMessageRoundTrip(t *testing.T) {
	path := writeEchoProto(t)
	fd, err := loadProto(path)
	require.NoError(t, err)

	md := fd.FindMessage("test.PingReply")
	require.NotNil(t, md)

	msg := dynamic.NewMessage(md)
	in := value.Object([]string{"message", "ok"}, map[string]value.RuntimeValue{
		"message": value.String("pong"),
		"ok":      value.Bool(true),
	})
	require.NoError(t, valueToDynamicMessage(in, msg))

	out := dynamicMessageToValue(msg)
	msgField, ok := out.Field("message")
	require.True(t, ok)
	assert.Equal(t, "pong", msgField.AsString())

	okField, ok := out.Field("ok")
	require.True(t, ok)
	assert.True(t, okField.AsBool())
}

func TestInvokeFailsWhenServiceNotFound(t *testing.T) {
	path := writeEchoProto(t)
	bindings := bind(map[string]string{
		"target":    "127.0.0.1:1",
		"protoFile": path,
		"service":   "test.NoSuchService",
		"method":    "Ping",
	})

	req := value.Object(nil, map[string]value.RuntimeValue{})
	_, err := Invoke(context.Background(), req, bindings, evalctx.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service")
}

func TestInvokeFailsWhenUnreachable(t *testing.T) {
	path := writeEchoProto(t)
	bindings := bind(map[string]string{
		"target":    "127.0.0.1:1",
		"protoFile": path,
		"service":   "test.Echo",
		"method":    "Ping",
	})

	req := value.Object([]string{"message"}, map[string]value.RuntimeValue{"message": value.String("hi")})
	_, err := Invoke(context.Background(), req, bindings, evalctx.Background())
	require.Error(t, err)
}
