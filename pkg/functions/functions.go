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

// Package functions implements the intrinsic-function registry: a
// process-wide map from function name to descriptor that lets the
// element framework recognize values like get_input as opaque,
// deferred placeholders instead of validating them as ordinary data.
package functions

import "github.com/blueprintlang/blueprint/pkg/value"

// A Call is the parsed form of an intrinsic function invocation: the
// registered name plus its raw argument value, preserved verbatim so
// it survives property and input merges untouched.
type Call struct {
	Name string
	Args *value.Value
}

// Descriptor is what a function extension registers: a name plus
// optional validate/evaluate hooks. Evaluate is never invoked by this
// module (runtime evaluation is explicitly out of scope); it exists so
// an embedder's extension can attach one without a second registry.
type Descriptor struct {
	Name     string
	Validate func(args *value.Value) error
	Evaluate func(args *value.Value) (interface{}, error)
}

// Registry holds the set of known intrinsic-function names.
type Registry struct {
	entries map[string]Descriptor
}

// NewRegistry returns a Registry pre-populated with the default
// minimal set: get_input, get_attribute, get_property and concat.
func NewRegistry() *Registry {
	r := &Registry{entries: map[string]Descriptor{}}
	for _, name := range []string{"get_input", "get_attribute", "get_property", "concat"} {
		r.entries[name] = Descriptor{Name: name}
	}
	return r
}

// Add registers d, overwriting any existing entry with the same name.
func (r *Registry) Add(d Descriptor) {
	r.entries[d.Name] = d
}

// Replace is an alias for Add kept for symmetry with the REPLACE
// extension action named in the spec's extension descriptors.
func (r *Registry) Replace(d Descriptor) {
	r.Add(d)
}

// Remove deletes name from the registry, if present.
func (r *Registry) Remove(name string) {
	delete(r.entries, name)
}

// Lookup returns the Descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.entries[name]
	return d, ok
}

// Parse returns (Call, true) if v is a single-entry mapping whose key
// is a registered function name, treating that as a function
// invocation; otherwise it returns (Call{}, false) and the caller
// should treat v as ordinary data.
func (r *Registry) Parse(v *value.Value) (Call, bool) {
	if v == nil || v.Kind != value.Mapping || v.Len() != 1 {
		return Call{}, false
	}
	keys := v.Keys()
	name := keys[0]
	if _, ok := r.entries[name]; !ok {
		return Call{}, false
	}
	args, _ := v.Get(name)
	return Call{Name: name, Args: args}, true
}
