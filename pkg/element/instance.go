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

package element

import (
	"strconv"

	"github.com/blueprintlang/blueprint/internal/bperrors"
	"github.com/blueprintlang/blueprint/pkg/value"
)

// Instance is one node of the element tree, mirroring a value.Value
// against its Class. Elements hold no pointers to unrelated elements;
// cross-element lookups go through the Context's instance list and the
// RequiresEdge predicates evaluated during DAG construction.
type Instance struct {
	class  *Class
	parent *Instance
	name   string
	ctx    *Context

	initial *value.Value

	children       []*Instance
	childrenByName map[string]*Instance

	parsed    interface{}
	parsedSet bool
	provided  map[string]interface{}
}

// ClassName returns the owning Class's registered name.
func (i *Instance) ClassName() string { return i.class.ClassName }

// Name returns the scalar key (Dict/Fields) or index (List) this
// element sits under in its parent.
func (i *Instance) Name() string { return i.name }

// Parent returns the enclosing element, or nil at the root.
func (i *Instance) Parent() *Instance { return i.parent }

// Children returns this element's children in document order.
func (i *Instance) Children() []*Instance { return i.children }

// Context returns the traversal Context this element was built with.
func (i *Instance) Context() *Context { return i.ctx }

// Child looks up a named child of a Dict/Fields element.
func (i *Instance) Child(name string) (*Instance, bool) {
	c, ok := i.childrenByName[name]
	return c, ok
}

// InitialValue returns the deep, immutable source value this element
// was built from. It is nil for an absent, non-required field.
func (i *Instance) InitialValue() *value.Value { return i.initial }

// Location returns the source location of InitialValue, or the
// synthetic location if this element has no source value.
func (i *Instance) Location() value.Location {
	if i.initial != nil {
		return i.initial.Location
	}
	return value.Location{StartLine: -1, StartCol: -1}
}

// Path returns the dot-joined element path from the root, used in
// every error message per spec §7.
func (i *Instance) Path() []string {
	if i.parent == nil {
		return nil
	}
	return append(i.parent.Path(), i.name)
}

// ParsedValue returns the value produced by Parse. Reading it before
// Parse has run is a SchemaAPI error in spirit; callers within this
// package only ever call it after the engine's topological pass has
// reached this instance, so it is safe to return the zero value here.
func (i *Instance) ParsedValue() interface{} { return i.parsed }

// Provided returns the fields this element made available to
// dependents via CalculateProvided.
func (i *Instance) Provided() map[string]interface{} { return i.provided }

// BuildTree instantiates an element tree mirroring root against class,
// registering every instance (including root) with ctx so the engine
// can later build the dependency DAG over the whole tree.
func BuildTree(ctx *Context, root *value.Value, class *Class) (*Instance, error) {
	return build(ctx, nil, "", root, class)
}

func build(ctx *Context, parent *Instance, name string, v *value.Value, class *Class) (*Instance, error) {
	inst := &Instance{class: class, parent: parent, name: name, initial: v, ctx: ctx}

	if v == nil {
		if class.Required {
			return nil, bperrors.Formatf(bperrors.CodeMissingRequiredField, parentLocation(parent), childPath(parent, name),
				"missing required field %q", name)
		}
		ctx.register(inst)
		return inst, nil
	}

	switch class.SchemaOf.Kind {
	case Opaque:
		// No children materialized; the class's own hooks walk v.

	case Leaf:
		if v.Kind != value.Scalar {
			return nil, bperrors.Formatf(bperrors.CodeUnknownTopLevelKey, v.Location, inst.Path(),
				"expected scalar, got %s", v.Kind)
		}
		if len(class.SchemaOf.ScalarTypes) > 0 {
			scalar, _ := v.Scalar()
			ok := false
			for _, t := range class.SchemaOf.ScalarTypes {
				if typeMatches(t, scalar) {
					ok = true
					break
				}
			}
			if !ok {
				return nil, bperrors.Formatf(bperrors.CodeUnknownTopLevelKey, v.Location, inst.Path(),
					"value %v does not match expected type", scalar)
			}
		}

	case Dict:
		inst.childrenByName = map[string]*Instance{}
		for _, key := range v.Keys() {
			cv, _ := v.Get(key)
			child, err := build(ctx, inst, key, cv, class.SchemaOf.Child)
			if err != nil {
				return nil, err
			}
			inst.children = append(inst.children, child)
			inst.childrenByName[key] = child
		}

	case List:
		for idx, item := range v.Items() {
			child, err := build(ctx, inst, strconv.Itoa(idx), item, class.SchemaOf.Child)
			if err != nil {
				return nil, err
			}
			inst.children = append(inst.children, child)
		}

	case Fields:
		known := make(map[string]*Class, len(class.SchemaOf.Fields))
		for _, f := range class.SchemaOf.Fields {
			known[f.Name] = f.Class
		}
		for _, key := range v.Keys() {
			if _, ok := known[key]; !ok {
				return nil, bperrors.Formatf(bperrors.CodeUnknownTopLevelKey, v.Location, childPath(inst, key),
					"unknown key %q", key)
			}
		}
		inst.childrenByName = map[string]*Instance{}
		for _, f := range class.SchemaOf.Fields {
			cv, _ := v.Get(f.Name)
			child, err := build(ctx, inst, f.Name, cv, f.Class)
			if err != nil {
				return nil, err
			}
			inst.children = append(inst.children, child)
			inst.childrenByName[f.Name] = child
		}
	}

	ctx.register(inst)
	return inst, nil
}

func parentLocation(parent *Instance) value.Location {
	if parent == nil {
		return value.Location{StartLine: -1, StartCol: -1}
	}
	return parent.Location()
}

func childPath(parent *Instance, name string) []string {
	if parent == nil {
		return []string{name}
	}
	return append(parent.Path(), name)
}
