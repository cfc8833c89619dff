// Package builtins collects the host-registerable native function
// packages shipped with this module, under the package paths a host
// registers them at.
package builtins

import (
	"github.com/vectorpath/policyengine/internal/builtins/bits"
	"github.com/vectorpath/policyengine/internal/builtins/grpc"
	"github.com/vectorpath/policyengine/internal/builtins/net"
	"github.com/vectorpath/policyengine/internal/funcpkg"
)

// Standard returns every ships-with-the-module function package, keyed by
// the package path a CompilationUnit's `use` declarations reference.
func Standard() map[string]funcpkg.FunctionPackage {
	return map[string]funcpkg.FunctionPackage{
		"net":  net.Functions(),
		"grpc": grpc.Functions(),
		"bits": bits.Functions(),
	}
}
