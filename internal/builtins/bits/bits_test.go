package bits

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

func fieldsBinding(fields map[string]int64) *polytype.Bindings {
	widths := map[string]polytype.Type{}
	for name, width := range fields {
		widths[name] = polytype.Const{Value: value.Integer(width)}
	}
	bound := polytype.Bound{Generic: polytype.Anything{}, Bindings: widths}
	return (*polytype.Bindings)(nil).Push(map[string]polytype.Type{"fields": bound})
}

func TestDecodeSplitsByteIntoDeclaredFields(t *testing.T) {
	// 0b10110010 -> high nibble 1011 (11), low nibble 0010 (2)
	raw := []byte{0b10110010}
	input := value.String(base64.StdEncoding.EncodeToString(raw))
	bindings := fieldsBinding(map[string]int64{"high": 4, "low": 4})

	out, err := Decode(context.Background(), input, bindings, evalctx.Background())
	require.NoError(t, err)
	require.True(t, out.IsTransform())

	high, ok := out.Value().Field("high")
	require.True(t, ok)
	assert.Equal(t, int64(11), high.AsInteger())

	low, ok := out.Value().Field("low")
	require.True(t, ok)
	assert.Equal(t, int64(2), low.AsInteger())
}

func TestDecodeRejectsInvalidBase64(t *testing.T) {
	bindings := fieldsBinding(map[string]int64{"a": 8})
	_, err := Decode(context.Background(), value.String("not base64!!"), bindings, evalctx.Background())
	require.Error(t, err)
}

func TestDecodeRejectsNonStringInput(t *testing.T) {
	bindings := fieldsBinding(map[string]int64{"a": 8})
	_, err := Decode(context.Background(), value.Integer(1), bindings, evalctx.Background())
	require.Error(t, err)
}

func TestDecodeFailsOnInsufficientBits(t *testing.T) {
	raw := []byte{0xFF}
	input := value.String(base64.StdEncoding.EncodeToString(raw))
	bindings := fieldsBinding(map[string]int64{"wide": 32})

	_, err := Decode(context.Background(), input, bindings, evalctx.Background())
	require.Error(t, err)
}

func TestDecodeRequiresFieldsBinding(t *testing.T) {
	input := value.String(base64.StdEncoding.EncodeToString([]byte{1, 2}))
	_, err := Decode(context.Background(), input, nil, evalctx.Background())
	require.Error(t, err)
}
