// Package meta holds route metadata shared by the App and its handlers. It is
// internal so the Endpoint interface cannot be implemented outside the module.
package meta

import (
	"reflect"
	"time"
)

// Primitives.
const (
	PrimitiveQuery = "query" // GET, request decoded from the query string
	PrimitiveExec  = "exec"  // POST, request decoded from a JSON body
)

// MethodMetadata describes a registered endpoint.
type MethodMetadata struct {
	Primitive string
	Request   reflect.Type
	Response  reflect.Type
	CacheTTL  time.Duration
}

// HTTPMethod returns the HTTP method the primitive is served on.
func (m *MethodMetadata) HTTPMethod() string {
	if m.Primitive == PrimitiveQuery {
		return "GET"
	}
	return "POST"
}
