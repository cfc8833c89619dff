package policy

import (
	"encoding/json"
	"fmt"

	"github.com/vectorpath/policyengine/internal/value"
)

// toRuntimeValue accepts any host Go value representable as JSON (structs,
// maps, slices, primitives, or an already-decoded interface{} tree) and
// converts it into the RuntimeValue domain via a JSON round-trip, so a
// host never has to hand-build RuntimeValue literals for ordinary data.
func toRuntimeValue(input interface{}) (value.RuntimeValue, error) {
	if rv, ok := input.(value.RuntimeValue); ok {
		return rv, nil
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return value.RuntimeValue{}, fmt.Errorf("policy: marshaling input: %w", err)
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return value.RuntimeValue{}, fmt.Errorf("policy: decoding input: %w", err)
	}
	return value.FromJSON(decoded), nil
}
