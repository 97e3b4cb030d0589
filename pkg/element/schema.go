// Copyright 2015 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package element implements the declarative schema kernel: Class
// descriptors (Leaf/Dict/List/Fields), a tree-instantiation step that
// mirrors a value.Value tree against a Class, a dependency DAG built
// from each Class's Requires edges, and the validate -> calculate
// provided -> parse traversal that produces a plan.
package element

// SchemaKind identifies how a Class materializes children from a
// value.Value.
type SchemaKind int

const (
	// Leaf classes have no children; their value must be a scalar of
	// one of the allowed kinds.
	Leaf SchemaKind = iota
	// Dict classes materialize one child of a fixed class per mapping
	// key, named after that key.
	Dict
	// List classes materialize one child of a fixed class per sequence
	// element, named after its index.
	List
	// Fields classes accept only a fixed, known set of mapping keys,
	// each materializing a child of its own declared class.
	Fields
	// Opaque classes materialize no children regardless of the
	// underlying value's kind: the class's own Parse/Validate functions
	// are handed the raw value.Value and do their own tree walking. Used
	// for subtrees whose resolution is not a structural mirror of the
	// document (type hierarchies, property merges).
	Opaque
)

// FieldEntry is one entry of a Fields schema: the mapping key and the
// Class of the child stored under it.
type FieldEntry struct {
	Name  string
	Class *Class
}

// ScalarType names the allowed Go representations of a Leaf's scalar
// value.
type ScalarType int

const (
	Any ScalarType = iota
	StringType
	IntType
	FloatType
	BoolType
)

// Schema is the static descriptor attached to a Class.
type Schema struct {
	Kind SchemaKind

	// Leaf
	ScalarTypes []ScalarType

	// Dict / List
	Child *Class

	// Fields
	Fields []FieldEntry
}

// BindingKind selects how a RequiresEdge resolves a value for the
// bindings map handed to Validate/Parse.
type BindingKind int

const (
	// BindField takes a named entry out of the matched target's
	// Provided() map.
	BindField BindingKind = iota
	// BindValue takes the matched target's parsed value.
	BindValue
	// BindRequirement is like BindValue but tolerates a missing match.
	BindRequirement
)

// Predicate filters which instances of a required Class actually serve
// as a dependency of source, given the tree being built (e.g. "the
// relationship's source equals this template").
type Predicate func(source, target *Instance) bool

// Binding describes one keyword argument threaded into Validate/Parse.
type Binding struct {
	// Keyword is the bindings map key passed to Validate/Parse.
	Keyword string
	Kind    BindingKind
	// Field is read from the target's Provided() map when Kind is
	// BindField; ignored otherwise.
	Field     string
	Predicate Predicate
	Multiple  bool
	Required  bool
}

// RequiresEdge is one entry of a Class's Requires list: before this
// class's instances run validate/parse, every matching instance of
// TargetClass must have completed calculate_provided and parse.
type RequiresEdge struct {
	TargetClass string
	Bindings    []Binding
}

// Class is the static, shared descriptor of an element kind: its
// schema shape, whether it is required, the minimum document version
// it needs, its dependency edges, the fields it provides to
// dependents, and the validate/calculate_provided/parse hooks that
// give it behavior. pkg/schema builds its Class values in constructor
// functions; BuildTree instantiates the Instances bound to them.
type Class struct {
	ClassName string
	SchemaOf  Schema
	Required  bool
	// MinVersion, if non-empty, is the minimum document version this
	// class's instances require, per version.Parse.
	MinVersion string
	Requires   []RequiresEdge
	Provides   []string

	Validate          func(i *Instance, bindings map[string]interface{}) error
	CalculateProvided func(i *Instance) map[string]interface{}
	// Parse is optional; when nil, DefaultParse(i) is used.
	Parse func(i *Instance, bindings map[string]interface{}) (interface{}, error)
}

// DefaultParse implements the structural default parse behavior
// described in spec §4.2: a Dict/Fields element parses into a mapping
// of its children's parsed values keyed by name, a List element parses
// into a slice of its children's parsed values in order, and a Leaf
// parses into its scalar value.
func DefaultParse(i *Instance, _ map[string]interface{}) (interface{}, error) {
	switch i.class.SchemaOf.Kind {
	case Leaf:
		if i.initial == nil {
			return nil, nil
		}
		v, _ := i.initial.Scalar()
		return v, nil
	case List:
		out := make([]interface{}, len(i.children))
		for idx, c := range i.children {
			out[idx] = c.ParsedValue()
		}
		return out, nil
	case Opaque:
		if i.initial == nil {
			return nil, nil
		}
		return i.initial.Restore(), nil
	default: // Dict, Fields
		out := make(map[string]interface{}, len(i.children))
		for _, c := range i.children {
			out[c.name] = c.ParsedValue()
		}
		return out, nil
	}
}

func typeMatches(t ScalarType, v interface{}) bool {
	switch t {
	case Any:
		return true
	case StringType:
		_, ok := v.(string)
		return ok
	case IntType:
		switch v.(type) {
		case int, int64:
			return true
		}
		return false
	case FloatType:
		switch v.(type) {
		case float32, float64:
			return true
		}
		return false
	case BoolType:
		_, ok := v.(bool)
		return ok
	default:
		return false
	}
}
