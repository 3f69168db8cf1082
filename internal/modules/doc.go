// Package modules is the statically enumerated catalog of operation modules.
//
// A module is a named group of related read-only operations. Each module id
// maps to a Constructor that, given a Binding, produces the mcp-go server tools
// for that module. Operations are declared as tables (name, path, parameters)
// and compiled into tools with a shared GET handler, so adding an endpoint is
// a table edit rather than new code.
//
// The credential is resolved when an operation is called, not when the module
// is built: a module constructed without any credential is valid, and its
// operations report a descriptive error until one is supplied.
package modules
