package typeops

import (
	"strconv"
	"sync/atomic"

	"github.com/broady/typemirror/mirror/ir"
)

// captureSeq mints capture identities. Tokens are never reused within a process.
var captureSeq atomic.Uint64

// Capture applies capture conversion. Each wildcard argument of a declared type
// is replaced by a fresh captured type variable bounded above by the wildcard's
// extends bound and below by its super bound. Types without wildcard arguments,
// including all non-declared types, are returned as is, so Capture is
// idempotent on its own output. Two calls never share captured variables.
func (ts *Types) Capture(t ir.Type) ir.Type {
	d, ok := t.(*ir.DeclaredType)
	if !ok || !d.HasWildcardArgs() {
		return t
	}
	out := *d
	out.Args = make([]ir.Type, len(d.Args))
	for i, a := range d.Args {
		w, ok := a.(*ir.WildcardType)
		if !ok {
			out.Args[i] = a
			continue
		}
		out.Args[i] = ts.captureWildcard(w)
	}
	return &out
}

func (ts *Types) captureWildcard(w *ir.WildcardType) *ir.CapturedType {
	id := captureSeq.Add(1)
	upper, lower := w.Extends, w.Super
	if upper == nil {
		upper = ts.object
	}
	if lower == nil {
		lower = ir.Null
	}
	elem := ir.NewSyntheticTypeParameter("capture#" + strconv.FormatUint(id, 10))
	return ir.NewCaptured(id, w, upper, lower, elem)
}
