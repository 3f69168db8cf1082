// Package factory turns a client configuration into a ready protocol server.
//
// ResolveMode picks one of three operating modes from the client
// configuration. The first rule that matches wins:
//
//  1. DYNAMIC_TOOL_DISCOVERY is true: DYNAMIC_DISCOVERY.
//  2. TOOL_SETS lists at least one name: STATIC_SUBSET.
//  3. Otherwise: ALL_OPERATIONS.
//
// Factory.Create builds the server for a mode. In ALL_OPERATIONS every catalog
// module is registered up front. In STATIC_SUBSET only the modules of the
// named toolsets are registered; unknown names are dropped with a warning. In
// DYNAMIC_DISCOVERY only the enable, disable and status meta-operations are
// registered and a per-client dynamic.Manager owns the rest.
//
// Operations read their credential at call time: the client's explicit
// credential if it supplied one, otherwise the process default. A server with
// no credential is still built; its operations report the missing credential
// when called.
package factory
