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

// Package value implements the location-aware value tree that sits
// between the YAML holder layer and the element framework. Every node
// of a parsed blueprint document is represented as a Value carrying its
// source location, so format and logic errors can always be reported
// against a file, line and column.
package value

import "fmt"

// Kind identifies the shape of a Value.
type Kind int

const (
	// Invalid marks a zero Value.
	Invalid Kind = iota
	// Scalar holds a string, int64, float64, bool or nil.
	Scalar
	// Mapping holds an ordered set of unique string keys.
	Mapping
	// Sequence holds an ordered list of Values.
	Sequence
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	default:
		return "invalid"
	}
}

// Location is the (filename, start/end line, start/end column) record
// carried by every Value. A synthetic Value built by FromObject carries
// the sentinel Location with all numeric fields set to -1.
type Location struct {
	File       string
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
}

// Synthetic reports whether l is the sentinel location used for values
// that were never parsed from source text.
func (l Location) Synthetic() bool {
	return l.StartLine == -1
}

// String renders the location the way engine error messages embed it:
// "file:line:col", or "<synthetic>" when there is no source position.
func (l Location) String() string {
	if l.Synthetic() {
		return "<synthetic>"
	}
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.StartLine, l.StartCol)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// entry is one key/value pair of a Mapping, kept in insertion order.
type entry struct {
	key   string
	value *Value
}

// A Value is one node of the parsed document: a scalar, an ordered
// mapping, or an ordered sequence, each tagged with the Location it was
// parsed from.
type Value struct {
	Kind     Kind
	Location Location

	scalar   interface{}
	entries  []entry
	index    map[string]int
	sequence []*Value
}

// syntheticLocation is shared by every value produced by FromObject.
var syntheticLocation = Location{StartLine: -1, StartCol: -1, EndLine: -1, EndCol: -1}

// NewScalar returns a scalar Value at loc.
func NewScalar(v interface{}, loc Location) *Value {
	return &Value{Kind: Scalar, Location: loc, scalar: v}
}

// NewMapping returns an empty, ordered Mapping Value at loc.
func NewMapping(loc Location) *Value {
	return &Value{Kind: Mapping, Location: loc, index: map[string]int{}}
}

// NewSequence returns an empty Sequence Value at loc.
func NewSequence(loc Location) *Value {
	return &Value{Kind: Sequence, Location: loc}
}

// Scalar returns the wrapped scalar and true, or nil, false if v is not
// a Scalar.
func (v *Value) Scalar() (interface{}, bool) {
	if v == nil || v.Kind != Scalar {
		return nil, false
	}
	return v.scalar, true
}

// Set appends or overwrites key in a Mapping Value, preserving the
// position of a key that already exists.
func (v *Value) Set(key string, child *Value) {
	if v.index == nil {
		v.index = map[string]int{}
	}
	if i, ok := v.index[key]; ok {
		v.entries[i].value = child
		return
	}
	v.index[key] = len(v.entries)
	v.entries = append(v.entries, entry{key: key, value: child})
}

// Get returns the child of a Mapping Value stored under key.
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.Kind != Mapping {
		return nil, false
	}
	i, ok := v.index[key]
	if !ok {
		return nil, false
	}
	return v.entries[i].value, true
}

// Keys returns a Mapping Value's keys in insertion order.
func (v *Value) Keys() []string {
	if v == nil || v.Kind != Mapping {
		return nil
	}
	keys := make([]string, len(v.entries))
	for i, e := range v.entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of mapping entries or sequence elements.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.Kind {
	case Mapping:
		return len(v.entries)
	case Sequence:
		return len(v.sequence)
	default:
		return 0
	}
}

// Append adds child to the end of a Sequence Value.
func (v *Value) Append(child *Value) {
	v.sequence = append(v.sequence, child)
}

// Items returns the elements of a Sequence Value in order.
func (v *Value) Items() []*Value {
	if v == nil || v.Kind != Sequence {
		return nil
	}
	return v.sequence
}

// Restore strips location information and returns a plain Go value:
// a scalar, a map[string]interface{}, or a []interface{}. Mapping key
// order is not recoverable from the returned map; callers that need
// deterministic order should walk Keys()/Items() instead.
func (v *Value) Restore() interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case Scalar:
		return v.scalar
	case Mapping:
		m := make(map[string]interface{}, len(v.entries))
		for _, e := range v.entries {
			m[e.key] = e.value.Restore()
		}
		return m
	case Sequence:
		s := make([]interface{}, len(v.sequence))
		for i, e := range v.sequence {
			s[i] = e.Restore()
		}
		return s
	default:
		return nil
	}
}

// FromObject wraps a plain Go value (as produced by Restore, or built
// ad hoc by an extension) into a Value tree using the sentinel
// synthetic Location. Supported inputs are nil, bool, string, int,
// int64, float64, map[string]interface{} and []interface{}; anything
// else panics, since FromObject is only ever called on values the
// engine itself constructed.
func FromObject(x interface{}) *Value {
	switch t := x.(type) {
	case map[string]interface{}:
		m := NewMapping(syntheticLocation)
		for k, v := range t {
			m.Set(k, FromObject(v))
		}
		return m
	case []interface{}:
		s := NewSequence(syntheticLocation)
		for _, v := range t {
			s.Append(FromObject(v))
		}
		return s
	case nil, bool, string, int, int64, float64:
		return NewScalar(t, syntheticLocation)
	default:
		panic(fmt.Sprintf("value: FromObject: unsupported type %T", x))
	}
}

// DeepCopy returns a structurally identical Value with its own entry
// and sequence storage, so a caller handed a Value across the
// initial_value/value boundary cannot mutate the source tree.
func (v *Value) DeepCopy() *Value {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case Scalar:
		return NewScalar(v.scalar, v.Location)
	case Mapping:
		m := NewMapping(v.Location)
		for _, e := range v.entries {
			m.Set(e.key, e.value.DeepCopy())
		}
		return m
	case Sequence:
		s := NewSequence(v.Location)
		for _, e := range v.sequence {
			s.Append(e.DeepCopy())
		}
		return s
	default:
		return &Value{}
	}
}
