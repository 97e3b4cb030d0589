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

package schema

import (
	"github.com/blueprintlang/blueprint/internal/bperrors"
	"github.com/blueprintlang/blueprint/pkg/element"
	"github.com/blueprintlang/blueprint/pkg/value"
)

// rawMapping is an Opaque class that performs no structural
// decomposition: its Parse returns the field's raw *value.Value,
// letting classes downstream (NodeTemplates in particular) walk it
// with domain-specific merge/hierarchy logic instead of the generic
// Dict/List recursion.
func rawMapping(name string, required bool) *element.Class {
	return &element.Class{
		ClassName: name,
		SchemaOf:  element.Schema{Kind: element.Opaque},
		Required:  required,
		Parse: func(i *element.Instance, _ map[string]interface{}) (interface{}, error) {
			return i.InitialValue(), nil
		},
	}
}

func rawList(name string) *element.Class {
	return &element.Class{
		ClassName: name,
		SchemaOf:  element.Schema{Kind: element.Opaque},
		Parse: func(i *element.Instance, _ map[string]interface{}) (interface{}, error) {
			return i.InitialValue(), nil
		},
	}
}

// versionClass is the Version element: a required leaf string parsed
// into the document's declared dialect identifier.
func versionClass() *element.Class {
	return &element.Class{
		ClassName: "tosca_definitions_version",
		SchemaOf:  element.Schema{Kind: element.Leaf, ScalarTypes: []element.ScalarType{element.StringType}},
		Required:  true,
		Provides:  []string{"validate_version"},
		CalculateProvided: func(i *element.Instance) map[string]interface{} {
			v, _ := i.InitialValue().Scalar()
			return map[string]interface{}{"validate_version": v}
		},
	}
}

// inputsClass parses the inputs section into its restored mapping. It
// does not check the shape of individual inputs: their keys, declared
// types and defaults are passed through unvalidated.
func inputsClass() *element.Class {
	return &element.Class{
		ClassName: "inputs",
		SchemaOf:  element.Schema{Kind: element.Opaque},
		Provides:  []string{"names"},
		CalculateProvided: func(i *element.Instance) map[string]interface{} {
			return map[string]interface{}{"names": i.InitialValue() != nil}
		},
		Parse: func(i *element.Instance, _ map[string]interface{}) (interface{}, error) {
			return restoreMappingOrEmpty(i.InitialValue()), nil
		},
	}
}

func outputsClass() *element.Class {
	return &element.Class{
		ClassName: "outputs",
		SchemaOf:  element.Schema{Kind: element.Opaque},
		Parse: func(i *element.Instance, _ map[string]interface{}) (interface{}, error) {
			return restoreMappingOrEmpty(i.InitialValue()), nil
		},
	}
}

func restoreMappingOrEmpty(v *value.Value) map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	out := v.Restore()
	m, ok := out.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return m
}

// hierarchyClass builds a class whose Parse resolves a derived_from
// type hierarchy over its raw mapping and provides the resolved
// map[string]*TypeDef both to downstream BindValue consumers and as
// the plan's restored form of this section.
func hierarchyClass(name string, unknownCode int) *element.Class {
	return &element.Class{
		ClassName: name,
		SchemaOf:  element.Schema{Kind: element.Opaque},
		Provides:  []string{"types"},
		Parse: func(i *element.Instance, _ map[string]interface{}) (interface{}, error) {
			types, err := ResolveHierarchy(i.InitialValue(), []string{name}, unknownCode)
			if err != nil {
				return nil, err
			}
			return types, nil
		},
	}
}

// TypeDefsOf type-asserts a NodeTypes/Relationships/Plugins/DataTypes
// Instance's parsed value back into its resolved hierarchy map.
func TypeDefsOf(parsed interface{}) map[string]*TypeDef {
	m, _ := parsed.(map[string]*TypeDef)
	if m == nil {
		return map[string]*TypeDef{}
	}
	return m
}

// Document returns the root Fields Class mirroring the document
// surface named in spec §6: tosca_definitions_version is the only
// required key; every other top-level key is optional and defaults to
// empty. imports is accepted structurally but never parsed here — it
// is consumed entirely by pkg/importgraph before the element tree is
// built.
func Document() *element.Class {
	nodeTypes := hierarchyClass("node_types", bperrors.CodeUnknownNodeType)
	relationships := hierarchyClass("relationships", bperrors.CodeUnknownRelationshipType)
	plugins := hierarchyClass("plugins", bperrors.CodeUnknownOperationPlugin)
	dataTypes := hierarchyClass("data_types", bperrors.CodeUndefinedProperty)
	workflows := rawMapping("workflows", false)
	groups := rawMapping("groups", false)
	policyTypes := rawMapping("policy_types", false)
	policyTriggers := rawMapping("policy_triggers", false)
	policies := rawMapping("policies", false)
	dslDefinitions := rawMapping("dsl_definitions", false)

	nodeTemplates := nodeTemplatesClass(nodeTypes, relationships, plugins)

	return &element.Class{
		ClassName: "document",
		SchemaOf: element.Schema{Kind: element.Fields, Fields: []element.FieldEntry{
			{Name: "tosca_definitions_version", Class: versionClass()},
			{Name: "imports", Class: rawList("imports")},
			{Name: "inputs", Class: inputsClass()},
			{Name: "outputs", Class: outputsClass()},
			{Name: "data_types", Class: dataTypes},
			{Name: "node_types", Class: nodeTypes},
			{Name: "relationships", Class: relationships},
			{Name: "plugins", Class: plugins},
			{Name: "workflows", Class: workflows},
			{Name: "groups", Class: groups},
			{Name: "node_templates", Class: nodeTemplates},
			{Name: "policy_types", Class: policyTypes},
			{Name: "policy_triggers", Class: policyTriggers},
			{Name: "policies", Class: policies},
			{Name: "dsl_definitions", Class: dslDefinitions},
		}},
	}
}
