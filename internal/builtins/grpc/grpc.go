// Package grpc implements the "grpc" native function package: invoke
// performs a dynamic unary gRPC call against a proto service parsed on
// first use, and forwards the decoded response as a policy
// Output::Transform. It parses a .proto file once, dials the target,
// builds a dynamic request message, invokes the method, and decodes the
// dynamic response, via github.com/jhump/protoreflect's
// desc/protoparse/dynamic packages plus google.golang.org/grpc and
// google.golang.org/protobuf.
package grpc

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/funcpkg"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

var (
	fileRegistry      = map[string]*desc.FileDescriptor{}
	fileRegistryMutex sync.RWMutex
)

// Functions returns the grpc package's exported functions.
func Functions() funcpkg.Static {
	return funcpkg.Static{
		"invoke": Invoke,
	}
}

// loadProto parses path (once per process) and caches its FileDescriptor.
func loadProto(path string) (*desc.FileDescriptor, error) {
	fileRegistryMutex.RLock()
	if fd, ok := fileRegistry[path]; ok {
		fileRegistryMutex.RUnlock()
		return fd, nil
	}
	fileRegistryMutex.RUnlock()

	parser := protoparse.Parser{ImportPaths: []string{"."}}
	fds, err := parser.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("parsing proto file %s: %w", path, err)
	}
	if len(fds) == 0 {
		return nil, fmt.Errorf("proto file %s declared no types", path)
	}

	fileRegistryMutex.Lock()
	fileRegistry[path] = fds[0]
	fileRegistryMutex.Unlock()
	return fds[0], nil
}

func lookupBinding(bindings *polytype.Bindings, name string) (string, bool) {
	t, ok := bindings.Lookup(name)
	if !ok {
		return "", false
	}
	c, ok := t.(polytype.Const)
	if !ok || c.Value.Kind() != value.KindString {
		return "", false
	}
	return c.Value.AsString(), true
}

// Invoke calls a unary gRPC method against input (a policy Object carrying
// the request fields). The binding environment must supply "target"
// (host:port), "protoFile" (path to the .proto declaring the service),
// "service" (fully-qualified service name) and "method" (bare method
// name).
func Invoke(ctx context.Context, input value.RuntimeValue, bindings *polytype.Bindings, ec evalctx.EvalContext) (value.Output, error) {
	if err := evalctx.CheckCancelled(ctx); err != nil {
		return value.Output{}, err
	}

	target, ok := lookupBinding(bindings, "target")
	if !ok {
		return value.Output{}, fmt.Errorf("grpc::invoke: missing \"target\" binding")
	}
	protoFile, ok := lookupBinding(bindings, "protoFile")
	if !ok {
		return value.Output{}, fmt.Errorf("grpc::invoke: missing \"protoFile\" binding")
	}
	serviceName, ok := lookupBinding(bindings, "service")
	if !ok {
		return value.Output{}, fmt.Errorf("grpc::invoke: missing \"service\" binding")
	}
	methodName, ok := lookupBinding(bindings, "method")
	if !ok {
		return value.Output{}, fmt.Errorf("grpc::invoke: missing \"method\" binding")
	}

	fd, err := loadProto(protoFile)
	if err != nil {
		return value.Output{}, err
	}
	svc := fd.FindService(serviceName)
	if svc == nil {
		return value.Output{}, fmt.Errorf("grpc::invoke: service %q not found in %s", serviceName, protoFile)
	}
	md := svc.FindMethodByName(methodName)
	if md == nil {
		return value.Output{}, fmt.Errorf("grpc::invoke: method %q not found on service %q", methodName, serviceName)
	}

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return value.Output{}, fmt.Errorf("grpc::invoke: dialing %s: %w", target, err)
	}
	defer conn.Close()

	reqMsg := dynamic.NewMessage(md.GetInputType())
	if err := valueToDynamicMessage(input, reqMsg); err != nil {
		return value.Output{}, fmt.Errorf("grpc::invoke: building request: %w", err)
	}
	respMsg := dynamic.NewMessage(md.GetOutputType())

	methodPath := fmt.Sprintf("/%s/%s", serviceName, methodName)
	if err := conn.Invoke(ctx, methodPath, reqMsg, respMsg); err != nil {
		return value.Output{}, fmt.Errorf("grpc::invoke: rpc %s failed: %w", methodPath, err)
	}

	return value.Transform(dynamicMessageToValue(respMsg)), nil
}

// valueToDynamicMessage copies an Object RuntimeValue's fields onto msg,
// matched by declared field name. Unknown fields are ignored.
func valueToDynamicMessage(v value.RuntimeValue, msg *dynamic.Message) error {
	if v.Kind() != value.KindObject {
		return fmt.Errorf("expected an Object, got %s", v.Kind())
	}
	_, fields := v.AsObject()
	for name, fv := range fields {
		fdesc := msg.GetMessageDescriptor().FindFieldByName(name)
		if fdesc == nil {
			continue
		}
		pv, err := valueToProtoField(fv, fdesc)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if pv != nil {
			msg.SetField(fdesc, pv)
		}
	}
	return nil
}

func valueToProtoField(v value.RuntimeValue, fdesc *desc.FieldDescriptor) (interface{}, error) {
	if fdesc.IsRepeated() {
		if v.Kind() != value.KindList {
			return nil, fmt.Errorf("expected a List for repeated field %s", fdesc.GetName())
		}
		items := v.AsList()
		out := make([]interface{}, 0, len(items))
		for _, item := range items {
			pv, err := valueToProtoScalar(item, fdesc)
			if err != nil {
				return nil, err
			}
			out = append(out, pv)
		}
		return out, nil
	}
	return valueToProtoScalar(v, fdesc)
}

func valueToProtoScalar(v value.RuntimeValue, fdesc *desc.FieldDescriptor) (interface{}, error) {
	switch fdesc.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32, descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return int32(v.AsInteger()), nil
	case descriptorpb.FieldDescriptorProto_TYPE_INT64, descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return v.AsInteger(), nil
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32, descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return uint32(v.AsInteger()), nil
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64, descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return uint64(v.AsInteger()), nil
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		f, _ := asFloat(v)
		return float32(f), nil
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		f, _ := asFloat(v)
		return f, nil
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return v.AsBool(), nil
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return v.AsString(), nil
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return []byte(v.AsString()), nil
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		nested := dynamic.NewMessage(fdesc.GetMessageType())
		if err := valueToDynamicMessage(v, nested); err != nil {
			return nil, err
		}
		return nested, nil
	default:
		return nil, fmt.Errorf("unsupported field type %v", fdesc.GetType())
	}
}

func asFloat(v value.RuntimeValue) (float64, bool) {
	switch v.Kind() {
	case value.KindInteger:
		return float64(v.AsInteger()), true
	case value.KindDecimal:
		f, _ := v.AsDecimal().Float64()
		return f, true
	default:
		return 0, false
	}
}

// dynamicMessageToValue converts a decoded response message into a
// policy Object RuntimeValue, keyed (and ordered) by declared field name.
func dynamicMessageToValue(msg *dynamic.Message) value.RuntimeValue {
	descFields := msg.GetMessageDescriptor().GetFields()
	keys := make([]string, 0, len(descFields))
	fields := make(map[string]value.RuntimeValue, len(descFields))
	for _, fdesc := range descFields {
		keys = append(keys, fdesc.GetName())
		fields[fdesc.GetName()] = protoFieldToValue(msg.GetField(fdesc), fdesc)
	}
	sort.Strings(keys)
	return value.Object(keys, fields)
}

func protoFieldToValue(v interface{}, fdesc *desc.FieldDescriptor) value.RuntimeValue {
	if fdesc.IsRepeated() {
		items, ok := v.([]interface{})
		if !ok {
			return value.List(nil)
		}
		out := make([]value.RuntimeValue, len(items))
		for i, item := range items {
			out[i] = protoScalarToValue(item, fdesc)
		}
		return value.List(out)
	}
	return protoScalarToValue(v, fdesc)
}

func protoScalarToValue(v interface{}, fdesc *desc.FieldDescriptor) value.RuntimeValue {
	switch t := v.(type) {
	case int32:
		return value.Integer(int64(t))
	case int64:
		return value.Integer(t)
	case uint32:
		return value.Integer(int64(t))
	case uint64:
		return value.Integer(int64(t))
	case float32:
		return value.DecimalFromFloat(float64(t))
	case float64:
		return value.DecimalFromFloat(t)
	case bool:
		return value.Bool(t)
	case string:
		return value.String(t)
	case []byte:
		return value.String(string(t))
	case *dynamic.Message:
		return dynamicMessageToValue(t)
	default:
		if fdesc.GetEnumType() != nil {
			if n, ok := v.(int32); ok {
				if ev := fdesc.GetEnumType().FindValueByNumber(n); ev != nil {
					return value.String(ev.GetName())
				}
			}
		}
		return value.Null()
	}
}
