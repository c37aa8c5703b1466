// Package jss provides types, interfaces, and helpers for working with the
// Jamf Pro classic (JSSResource) API.
//
// # Overview
//
// The jss package defines the Connection interface, the connection-scoped
// list cache, the typed error taxonomy, and the generic Object mapper that
// turns raw REST payloads into validated, lifecycle-aware resource objects.
// A concrete Connection implementation is provided by the jssclient package,
// which wires configuration resolution, transport, and authentication. Most
// consumers should import jssclient to construct a connection and then work
// through the operations exposed here.
//
// Getting a connection
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/casperdev-io/jss-client/pkg/jss"
//	  "github.com/casperdev-io/jss-client/pkg/jssclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  conn, err := jssclient.New(ctx, &jss.Config{
//	    Server:   "jss.example.com",
//	    User:     "apiuser",
//	    Password: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  cat, err := jss.FetchObject(ctx, conn, jss.TypeCategory, map[string]interface{}{"name": "Testing"})
//	  if err != nil { log.Fatal(err) }
//	  _ = cat
//	}
//
// # Multiple connections
//
// jssclient keeps a process-wide registry of named connections with exactly
// one designated active. Operations that do not name a connection explicitly
// run through the active one; callers that work against several servers pass
// connection handles explicitly.
//
// # Errors
//
// Errors wrap one of the static kinds in errors.go (ErrNoSuchItem,
// ErrConflict, ErrAuthorization, ...), so callers can branch with errors.Is
// or the IsNotFound/IsConflict helper predicates. HTTP failures are
// classified centrally in ClassifyResponse; every resource type gets the
// same typed failures without re-interpreting status codes.
//
// # Lists and caching
//
// "List all of type T" queries are memoized per connection. All, AllIDs,
// AllNames, and MapAllIDsTo read through the cache; pass refresh to force a
// live fetch, or use the connection's flush operations to invalidate.
package jss
