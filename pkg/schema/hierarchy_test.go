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
	"testing"

	"github.com/blueprintlang/blueprint/internal/bperrors"
	"github.com/blueprintlang/blueprint/pkg/holder"
	"github.com/blueprintlang/blueprint/pkg/value"
)

func mustLoad(t *testing.T, text string) *value.Value {
	t.Helper()
	v, err := holder.Load("test.yaml", text)
	if err != nil {
		t.Fatalf("holder.Load: %v", err)
	}
	return v
}

func TestResolveHierarchySimpleDerivation(t *testing.T) {
	doc := mustLoad(t, `
tosca.nodes.Root:
  properties:
    name:
      type: string
      default: root
tosca.nodes.Compute:
  derived_from: tosca.nodes.Root
  properties:
    cpus:
      type: integer
`)
	types, err := ResolveHierarchy(doc, []string{"node_types"}, bperrors.CodeUnknownNodeType)
	if err != nil {
		t.Fatalf("ResolveHierarchy: %v", err)
	}
	compute, ok := types["tosca.nodes.Compute"]
	if !ok {
		t.Fatal("missing tosca.nodes.Compute")
	}
	if _, ok := compute.Properties["name"]; !ok {
		t.Error("expected inherited property name")
	}
	if _, ok := compute.Properties["cpus"]; !ok {
		t.Error("expected own property cpus")
	}
	wantHierarchy := []string{"tosca.nodes.Compute", "tosca.nodes.Root"}
	if len(compute.TypeHierarchy) != len(wantHierarchy) || compute.TypeHierarchy[0] != wantHierarchy[0] || compute.TypeHierarchy[1] != wantHierarchy[1] {
		t.Errorf("TypeHierarchy = %v, want %v", compute.TypeHierarchy, wantHierarchy)
	}
}

func TestResolveHierarchyForwardReference(t *testing.T) {
	doc := mustLoad(t, `
child:
  derived_from: parent
parent:
  properties:
    x:
      type: string
      default: y
`)
	types, err := ResolveHierarchy(doc, []string{"node_types"}, bperrors.CodeUnknownNodeType)
	if err != nil {
		t.Fatalf("ResolveHierarchy: %v", err)
	}
	if _, ok := types["child"].Properties["x"]; !ok {
		t.Error("expected forward-referenced parent property to be inherited")
	}
}

func TestResolveHierarchyCycleIsLogicError(t *testing.T) {
	doc := mustLoad(t, `
a:
  derived_from: b
b:
  derived_from: a
`)
	_, err := ResolveHierarchy(doc, []string{"node_types"}, bperrors.CodeUnknownNodeType)
	if err == nil {
		t.Fatal("expected cyclic derived_from error")
	}
	e, ok := bperrors.As(err)
	if !ok || e.Code != bperrors.CodeCyclicDerivedFrom {
		t.Errorf("err = %v, want CodeCyclicDerivedFrom", err)
	}
}

func TestResolveHierarchyUnknownParentUsesCallerCode(t *testing.T) {
	doc := mustLoad(t, `
child:
  derived_from: nonexistent
`)
	_, err := ResolveHierarchy(doc, []string{"relationships"}, bperrors.CodeUnknownRelationshipType)
	if err == nil {
		t.Fatal("expected unknown type error")
	}
	e, ok := bperrors.As(err)
	if !ok || e.Code != bperrors.CodeUnknownRelationshipType {
		t.Errorf("err = %v, want CodeUnknownRelationshipType", err)
	}
}

func TestContainsHostedOn(t *testing.T) {
	if !ContainsHostedOn([]string{"tosca.relationships.HostedOn", "tosca.relationships.Root"}) {
		t.Error("expected true for hierarchy containing HostedOn")
	}
	if ContainsHostedOn([]string{"tosca.relationships.Root"}) {
		t.Error("expected false for hierarchy without HostedOn")
	}
}
