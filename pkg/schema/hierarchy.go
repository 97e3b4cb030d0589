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

// Package schema implements the concrete blueprint shape: Version,
// Imports, Inputs, Outputs, DataTypes, NodeTypes, Relationships,
// Plugins, Workflows, Groups and NodeTemplates, plus the type-hierarchy
// and property/interface merge utilities the node-template elaboration
// pass relies on.
package schema

import (
	"fmt"

	"github.com/blueprintlang/blueprint/internal/bperrors"
	"github.com/blueprintlang/blueprint/pkg/value"
)

// PropertySchema is one property definition on a type, as declared
// under a type's "properties" key.
type PropertySchema struct {
	Type        string
	Default     *value.Value
	HasDefault  bool
	Description string
}

// TypeDef is a fully-resolved type: its own declarations merged with
// every ancestor along derived_from, root-last.
type TypeDef struct {
	Name          string
	DerivedFrom   string
	Properties    map[string]PropertySchema
	Interfaces    map[string]map[string]*value.Value
	TypeHierarchy []string
	Raw           *value.Value
}

// ResolveHierarchy resolves every top-level type declared in defs
// (a mapping of type name to type definition, e.g. the raw node_types
// value), following derived_from lazily so forward references within
// the same document are permitted. unknownCode selects the error code
// used when a derived_from reference cannot be found, since NodeTypes
// and Relationships use distinct codes per spec §4.3/§7.
func ResolveHierarchy(defs *value.Value, path []string, unknownCode int) (map[string]*TypeDef, error) {
	cache := map[string]*TypeDef{}
	visiting := map[string]bool{}

	if defs == nil {
		return cache, nil
	}
	for _, name := range defs.Keys() {
		if _, err := resolveOne(name, defs, path, unknownCode, cache, visiting); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func resolveOne(name string, defs *value.Value, path []string, unknownCode int, cache map[string]*TypeDef, visiting map[string]bool) (*TypeDef, error) {
	if t, ok := cache[name]; ok {
		return t, nil
	}
	raw, ok := defs.Get(name)
	if !ok {
		return nil, bperrors.Logicf(unknownCode, defs.Location, path, "unknown type %q", name)
	}
	if visiting[name] {
		return nil, bperrors.Logicf(bperrors.CodeCyclicDerivedFrom, raw.Location, append(path, name), "cyclic derived_from at %q", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	var parent *TypeDef
	var derivedFromName string
	if dfVal, ok := raw.Get("derived_from"); ok {
		if s, ok := dfVal.Scalar(); ok {
			derivedFromName, _ = s.(string)
		}
		if derivedFromName != "" {
			p, err := resolveOne(derivedFromName, defs, path, unknownCode, cache, visiting)
			if err != nil {
				return nil, err
			}
			parent = p
		}
	}

	props := map[string]PropertySchema{}
	if parent != nil {
		for k, v := range parent.Properties {
			props[k] = v
		}
	}
	if propsVal, ok := raw.Get("properties"); ok {
		for _, pname := range propsVal.Keys() {
			pdef, _ := propsVal.Get(pname)
			props[pname] = parsePropertySchema(pdef)
		}
	}

	ifaces := map[string]map[string]*value.Value{}
	if parent != nil {
		for ifaceName, ops := range parent.Interfaces {
			copied := map[string]*value.Value{}
			for opName, opVal := range ops {
				copied[opName] = opVal
			}
			ifaces[ifaceName] = copied
		}
	}
	if ifacesVal, ok := raw.Get("interfaces"); ok {
		for _, ifaceName := range ifacesVal.Keys() {
			ifaceVal, _ := ifacesVal.Get(ifaceName)
			ops, ok := ifaces[ifaceName]
			if !ok {
				ops = map[string]*value.Value{}
				ifaces[ifaceName] = ops
			}
			for _, opName := range ifaceVal.Keys() {
				opVal, _ := ifaceVal.Get(opName)
				ops[opName] = opVal
			}
		}
	}

	hierarchy := []string{name}
	if parent != nil {
		hierarchy = append(hierarchy, parent.TypeHierarchy...)
	}

	t := &TypeDef{
		Name:          name,
		DerivedFrom:   derivedFromName,
		Properties:    props,
		Interfaces:    ifaces,
		TypeHierarchy: hierarchy,
		Raw:           raw,
	}
	cache[name] = t
	return t, nil
}

func parsePropertySchema(def *value.Value) PropertySchema {
	ps := PropertySchema{Type: "string"}
	if def == nil {
		return ps
	}
	if t, ok := def.Get("type"); ok {
		if s, ok := t.Scalar(); ok {
			ps.Type = fmt.Sprintf("%v", s)
		}
	}
	if d, ok := def.Get("default"); ok {
		ps.Default = d
		ps.HasDefault = true
	}
	if d, ok := def.Get("description"); ok {
		if s, ok := d.Scalar(); ok {
			ps.Description = fmt.Sprintf("%v", s)
		}
	}
	return ps
}

// ContainsHostedOn reports whether hierarchy names the distinguished
// HostedOn relationship type.
func ContainsHostedOn(hierarchy []string) bool {
	for _, h := range hierarchy {
		if h == "tosca.relationships.HostedOn" {
			return true
		}
	}
	return false
}
