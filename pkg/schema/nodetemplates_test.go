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
)

func TestIsHostTypeRecognizesComputeDescendants(t *testing.T) {
	if !isHostType([]string{"my.Vm", ComputeRootType, "tosca.nodes.Root"}) {
		t.Error("expected hierarchy containing ComputeRootType to be a host type")
	}
	if isHostType([]string{"tosca.nodes.Application", "tosca.nodes.Root"}) {
		t.Error("expected non-Compute hierarchy not to be a host type")
	}
}

func TestBuildOneTemplateUnknownTypeIsLogicError(t *testing.T) {
	doc := mustLoad(t, `
vm:
  type: tosca.nodes.DoesNotExist
`)
	def, _ := doc.Get("vm")
	_, err := buildOneTemplate("vm", def, map[string]*TypeDef{}, []string{"node_templates"})
	if err == nil {
		t.Fatal("expected unknown node type error")
	}
	e, ok := bperrors.As(err)
	if !ok || e.Code != bperrors.CodeUnknownNodeType {
		t.Errorf("err = %v, want CodeUnknownNodeType", err)
	}
}

func TestBuildOneTemplateDefaultsInstancesDeployToOne(t *testing.T) {
	doc := mustLoad(t, `
vm:
  type: tosca.nodes.Compute
`)
	def, _ := doc.Get("vm")
	nodeTypes := map[string]*TypeDef{"tosca.nodes.Compute": {Name: "tosca.nodes.Compute", TypeHierarchy: []string{"tosca.nodes.Compute"}}}
	tb, err := buildOneTemplate("vm", def, nodeTypes, []string{"node_templates"})
	if err != nil {
		t.Fatalf("buildOneTemplate: %v", err)
	}
	if tb.instancesDeploy != 1 {
		t.Errorf("instancesDeploy = %d, want 1", tb.instancesDeploy)
	}
}

func TestElaborateRelationshipsUnknownTargetIsLogicError(t *testing.T) {
	doc := mustLoad(t, `
relationships:
  - type: tosca.relationships.HostedOn
    target: nonexistent
`)
	tb := &tmplBuild{name: "app"}
	relTypes := map[string]*TypeDef{"tosca.relationships.HostedOn": {Name: "tosca.relationships.HostedOn", TypeHierarchy: []string{"tosca.relationships.HostedOn"}}}
	err := elaborateRelationships(tb, doc, map[string]*tmplBuild{"app": tb}, relTypes, map[string]*TypeDef{}, []string{"node_templates"})
	if err == nil {
		t.Fatal("expected unknown relationship target error")
	}
	e, ok := bperrors.As(err)
	if !ok || e.Code != bperrors.CodeUnknownRelationshipTarget {
		t.Errorf("err = %v, want CodeUnknownRelationshipTarget", err)
	}
}

func TestElaborateRelationshipsUnknownTypeIsLogicError(t *testing.T) {
	doc := mustLoad(t, `
relationships:
  - type: tosca.relationships.DoesNotExist
    target: vm
`)
	tb := &tmplBuild{name: "app"}
	vm := &tmplBuild{name: "vm"}
	err := elaborateRelationships(tb, doc, map[string]*tmplBuild{"app": tb, "vm": vm}, map[string]*TypeDef{}, map[string]*TypeDef{}, []string{"node_templates"})
	if err == nil {
		t.Fatal("expected unknown relationship type error")
	}
	e, ok := bperrors.As(err)
	if !ok || e.Code != bperrors.CodeUnknownRelationshipType {
		t.Errorf("err = %v, want CodeUnknownRelationshipType", err)
	}
}

func TestPropagateHostIDsCyclicChainIsLogicError(t *testing.T) {
	a := &tmplBuild{name: "a", typeDef: &TypeDef{TypeHierarchy: []string{"tosca.nodes.Application"}}}
	b := &tmplBuild{name: "b", typeDef: &TypeDef{TypeHierarchy: []string{"tosca.nodes.Application"}}}
	a.relationships = []relBuild{{targetName: "b", typeHierarchy: []string{"tosca.relationships.HostedOn"}}}
	b.relationships = []relBuild{{targetName: "a", typeHierarchy: []string{"tosca.relationships.HostedOn"}}}

	builds := map[string]*tmplBuild{"a": a, "b": b}
	err := propagateHostIDs(builds, []string{"a", "b"})
	if err == nil {
		t.Fatal("expected cyclic HostedOn chain error")
	}
	if _, ok := bperrors.As(err); !ok {
		t.Errorf("err = %v, want *bperrors.Error", err)
	}
}

func TestPropagateHostIDsNoHostedOnLeavesHostIDEmpty(t *testing.T) {
	a := &tmplBuild{name: "a", typeDef: &TypeDef{TypeHierarchy: []string{"tosca.nodes.Application"}}}
	builds := map[string]*tmplBuild{"a": a}
	if err := propagateHostIDs(builds, []string{"a"}); err != nil {
		t.Fatalf("propagateHostIDs: %v", err)
	}
	if a.hostID != "" {
		t.Errorf("hostID = %q, want empty", a.hostID)
	}
}
