package oracle

import (
	"context"

	"github.com/broady/typemirror/mirror/ir"
)

// TypeParams names one type.
type TypeParams struct {
	Type  string `json:"type" validate:"required"`
	Scope string `json:"scope"`
}

// PairParams names two types for a relation.
type PairParams struct {
	Left  string `json:"left" validate:"required"`
	Right string `json:"right" validate:"required"`
	Scope string `json:"scope"`
}

// TypesRequest names a list of types.
type TypesRequest struct {
	Types []string `json:"types" validate:"required,min=1,dive,required"`
	Scope string   `json:"scope"`
}

// AsMemberOfRequest names a containing type and one of its members.
type AsMemberOfRequest struct {
	Containing string `json:"containing" validate:"required"`
	Member     string `json:"member" validate:"required"`
	Scope      string `json:"scope"`
}

// RelationResult is the answer to a binary type relation.
type RelationResult struct {
	Left  TypeResult `json:"left"`
	Right TypeResult `json:"right"`
	Holds bool       `json:"holds"`
}

// TypeListResult is an ordered list of types.
type TypeListResult struct {
	Types []TypeResult `json:"types"`
}

// Erase returns the erasure of a type.
func (o *Oracle) Erase(ctx context.Context, req TypeParams) (TypeResult, error) {
	t, err := o.parse(req.Type, req.Scope)
	if err != nil {
		return TypeResult{}, err
	}
	e, err := o.ts.Erase(t)
	if err != nil {
		return TypeResult{}, err
	}
	return typeResult(e), nil
}

// IsSubtype reports whether left is a subtype of right.
func (o *Oracle) IsSubtype(ctx context.Context, req PairParams) (RelationResult, error) {
	return o.relation(req, o.ts.IsSubtype)
}

// IsAssignable reports whether a value of type left is assignable to right.
func (o *Oracle) IsAssignable(ctx context.Context, req PairParams) (RelationResult, error) {
	return o.relation(req, o.ts.IsAssignable)
}

// IsSameType reports whether left and right are the same type.
func (o *Oracle) IsSameType(ctx context.Context, req PairParams) (RelationResult, error) {
	return o.relation(req, o.ts.IsSameType)
}

func (o *Oracle) relation(req PairParams, rel func(t1, t2 ir.Type) (bool, error)) (RelationResult, error) {
	left, err := o.parse(req.Left, req.Scope)
	if err != nil {
		return RelationResult{}, err
	}
	right, err := o.parse(req.Right, req.Scope)
	if err != nil {
		return RelationResult{}, err
	}
	holds, err := rel(left, right)
	if err != nil {
		return RelationResult{}, err
	}
	return RelationResult{Left: typeResult(left), Right: typeResult(right), Holds: holds}, nil
}

// DirectSupertypes returns the immediate supertypes of a type.
func (o *Oracle) DirectSupertypes(ctx context.Context, req TypeParams) (TypeListResult, error) {
	return o.supertypes(req, o.ts.DirectSupertypes)
}

// AllSupertypes returns the transitive supertypes of a type, nearest first.
func (o *Oracle) AllSupertypes(ctx context.Context, req TypeParams) (TypeListResult, error) {
	return o.supertypes(req, o.ts.AllSupertypes)
}

func (o *Oracle) supertypes(req TypeParams, fn func(ir.Type) ([]ir.Type, error)) (TypeListResult, error) {
	t, err := o.parse(req.Type, req.Scope)
	if err != nil {
		return TypeListResult{}, err
	}
	sups, err := fn(t)
	if err != nil {
		return TypeListResult{}, err
	}
	return TypeListResult{Types: typeResults(sups)}, nil
}

// LeastUpperBounds returns the least upper bounds of the given types.
func (o *Oracle) LeastUpperBounds(ctx context.Context, req *TypesRequest) (TypeListResult, error) {
	ts, err := o.parseAll(req.Types, req.Scope)
	if err != nil {
		return TypeListResult{}, err
	}
	lub, err := o.ts.LeastUpperBounds(ts...)
	if err != nil {
		return TypeListResult{}, err
	}
	return TypeListResult{Types: typeResults(lub)}, nil
}

// Capture applies capture conversion. Each call yields fresh captured types.
func (o *Oracle) Capture(ctx context.Context, req *TypeParams) (TypeResult, error) {
	t, err := o.parse(req.Type, req.Scope)
	if err != nil {
		return TypeResult{}, err
	}
	return typeResult(o.ts.Capture(t)), nil
}

// AsMemberOf returns the type of a member as seen from the containing type.
func (o *Oracle) AsMemberOf(ctx context.Context, req *AsMemberOfRequest) (TypeResult, error) {
	t, err := o.parse(req.Containing, req.Scope)
	if err != nil {
		return TypeResult{}, err
	}
	containing, err := declared(t, "containing type")
	if err != nil {
		return TypeResult{}, err
	}
	member, err := o.lookupElement(req.Member)
	if err != nil {
		return TypeResult{}, err
	}
	mt, err := o.ts.AsMemberOf(containing, member)
	if err != nil {
		return TypeResult{}, err
	}
	return typeResult(mt), nil
}
