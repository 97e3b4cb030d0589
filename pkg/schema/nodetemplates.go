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
	"sort"

	"github.com/blueprintlang/blueprint/internal/bperrors"
	"github.com/blueprintlang/blueprint/pkg/element"
	"github.com/blueprintlang/blueprint/pkg/plan"
	"github.com/blueprintlang/blueprint/pkg/value"
)

// ComputeRootType is the TOSCA root type that marks a node type as a
// host: any type whose hierarchy contains it is its own host.
const ComputeRootType = "tosca.nodes.Compute"

type relBuild struct {
	typeName         string
	targetName       string
	properties       map[string]interface{}
	sourceOperations map[string]*plan.Operation
	targetOperations map[string]*plan.Operation
	sourceInterfaces map[string]map[string]string
	targetInterfaces map[string]map[string]string
	typeHierarchy    []string
}

type tmplBuild struct {
	name             string
	typeName         string
	typeDef          *TypeDef
	properties       map[string]interface{}
	operations       map[string]*plan.Operation
	mergedInterfaces map[string]map[string]MergedOperation
	relationships    []relBuild
	instancesDeploy  int
	hostID           string
	plugins          []plan.Plugin
}

func nodeTemplatesClass(nodeTypes, relationships, plugins *element.Class) *element.Class {
	return &element.Class{
		ClassName: "node_templates",
		SchemaOf:  element.Schema{Kind: element.Opaque},
		Provides:  []string{"node_template_names", "deployment_plugins_to_install"},
		Requires: []element.RequiresEdge{
			{TargetClass: "node_types", Bindings: []element.Binding{{Keyword: "nodeTypes", Kind: element.BindValue, Required: true}}},
			{TargetClass: "relationships", Bindings: []element.Binding{{Keyword: "relationshipTypes", Kind: element.BindValue, Required: true}}},
			{TargetClass: "plugins", Bindings: []element.Binding{{Keyword: "pluginTypes", Kind: element.BindValue, Required: true}}},
		},
		Parse: func(i *element.Instance, bindings map[string]interface{}) (interface{}, error) {
			return elaborateNodeTemplates(i, bindings)
		},
	}
}

func elaborateNodeTemplates(i *element.Instance, bindings map[string]interface{}) (interface{}, error) {
	raw := i.InitialValue()
	nodeTypes := TypeDefsOf(bindings["nodeTypes"])
	relTypes := TypeDefsOf(bindings["relationshipTypes"])
	pluginTypes := TypeDefsOf(bindings["pluginTypes"])

	path := []string{"node_templates"}
	builds := map[string]*tmplBuild{}
	order := []string{}

	if raw == nil {
		return []*plan.NodeTemplate{}, nil
	}

	for _, name := range raw.Keys() {
		order = append(order, name)
		def, _ := raw.Get(name)
		tb, err := buildOneTemplate(name, def, nodeTypes, path)
		if err != nil {
			return nil, err
		}
		builds[name] = tb
	}

	for _, name := range order {
		def, _ := raw.Get(name)
		if err := elaborateRelationships(builds[name], def, builds, relTypes, pluginTypes, path); err != nil {
			return nil, err
		}
	}

	for _, name := range order {
		if err := compileTemplateOperations(builds[name], pluginTypes, path); err != nil {
			return nil, err
		}
	}

	if err := propagateHostIDs(builds, order); err != nil {
		return nil, err
	}

	if err := computePluginSets(builds, order); err != nil {
		return nil, err
	}

	nodes := make([]*plan.NodeTemplate, 0, len(order))
	for _, name := range order {
		nodes = append(nodes, toPlanNodeTemplate(builds[name]))
	}
	return nodes, nil
}

func buildOneTemplate(name string, def *value.Value, nodeTypes map[string]*TypeDef, path []string) (*tmplBuild, error) {
	childPath := append(append([]string{}, path...), name)

	typeVal, ok := def.Get("type")
	if !ok {
		return nil, bperrors.Formatf(bperrors.CodeMissingRequiredField, def.Location, childPath, "node template %q missing type", name)
	}
	typeScalar, _ := typeVal.Scalar()
	typeName, _ := typeScalar.(string)
	typeDef, ok := nodeTypes[typeName]
	if !ok {
		return nil, bperrors.Logicf(bperrors.CodeUnknownNodeType, typeVal.Location, childPath, "unknown node type %q", typeName)
	}

	var propsVal *value.Value
	if p, ok := def.Get("properties"); ok {
		propsVal = p
	}
	props, err := MergeProperties(typeDef.Properties, propsVal, nil, childPath)
	if err != nil {
		return nil, err
	}

	deploy := 1
	hasInstances := false
	if instances, ok := def.Get("instances"); ok {
		hasInstances = true
		if d, ok := instances.Get("deploy"); ok {
			if s, ok := d.Scalar(); ok {
				if n, ok := toInt(s); ok {
					if n < 0 {
						return nil, bperrors.Formatf(bperrors.CodeNegativeInstancesDeploy, d.Location, childPath, "instances.deploy must not be negative, got %d", n)
					}
					deploy = n
				}
			}
		}
	}
	if hasCapabilitiesScalable(def) && hasInstances {
		return nil, bperrors.Logicf(bperrors.CodeDeprecatedMix, def.Location, childPath,
			"instances.deploy and capabilities.scalable are mutually exclusive")
	}

	var ifaceRaw *value.Value
	if iv, ok := def.Get("interfaces"); ok {
		ifaceRaw = iv
	}
	merged := MergeInterfaces(typeDef.Interfaces, ifaceRaw)

	return &tmplBuild{
		name:             name,
		typeName:         typeName,
		typeDef:          typeDef,
		properties:       props,
		instancesDeploy:  deploy,
		mergedInterfaces: merged,
	}, nil
}

func hasCapabilitiesScalable(def *value.Value) bool {
	caps, ok := def.Get("capabilities")
	if !ok {
		return false
	}
	_, ok = caps.Get("scalable")
	return ok
}

func elaborateRelationships(tb *tmplBuild, def *value.Value, all map[string]*tmplBuild, relTypes map[string]*TypeDef, pluginTypes map[string]*TypeDef, path []string) error {
	childPath := append(append([]string{}, path...), tb.name)
	relsVal, ok := def.Get("relationships")
	if !ok {
		return nil
	}

	hostedOnCount := 0
	for _, item := range relsVal.Items() {
		typeVal, _ := item.Get("type")
		typeScalar, _ := typeVal.Scalar()
		typeName, _ := typeScalar.(string)
		relType, ok := relTypes[typeName]
		if !ok {
			return bperrors.Logicf(bperrors.CodeUnknownRelationshipType, typeVal.Location, childPath, "unknown relationship type %q", typeName)
		}

		targetVal, _ := item.Get("target")
		targetScalar, _ := targetVal.Scalar()
		targetName, _ := targetScalar.(string)
		if targetName == tb.name {
			return bperrors.Logicf(bperrors.CodeRelationshipTargetEqSelf, targetVal.Location, childPath, "relationship target equals source %q", tb.name)
		}
		if _, ok := all[targetName]; !ok {
			return bperrors.Logicf(bperrors.CodeUnknownRelationshipTarget, targetVal.Location, childPath, "relationship target %q does not exist", targetName)
		}

		if ContainsHostedOn(relType.TypeHierarchy) {
			hostedOnCount++
			if hostedOnCount > 1 {
				return bperrors.Logicf(bperrors.CodeDuplicateHostedOn, item.Location, childPath, "more than one HostedOn relationship on %q", tb.name)
			}
		}

		var propsVal *value.Value
		if p, ok := item.Get("properties"); ok {
			propsVal = p
		}
		relProps, err := MergeProperties(relType.Properties, propsVal, nil, childPath)
		if err != nil {
			return err
		}

		var sourceOverride, targetOverride *value.Value
		if v, ok := item.Get("source_interfaces"); ok {
			sourceOverride = v
		}
		if v, ok := item.Get("target_interfaces"); ok {
			targetOverride = v
		}
		sourceMerged := MergeInterfaces(relType.Interfaces, sourceOverride)
		targetMerged := MergeInterfaces(relType.Interfaces, targetOverride)

		sourceOps, sourceRaw, err := CompileInterfaces(sourceMerged, pluginTypes, nil, nil, false, append(childPath, "source_interfaces"))
		if err != nil {
			return err
		}
		targetOps, targetRaw, err := CompileInterfaces(targetMerged, pluginTypes, nil, nil, false, append(childPath, "target_interfaces"))
		if err != nil {
			return err
		}

		tb.relationships = append(tb.relationships, relBuild{
			typeName:         typeName,
			targetName:       targetName,
			properties:       relProps,
			typeHierarchy:    relType.TypeHierarchy,
			sourceOperations: sourceOps,
			targetOperations: targetOps,
			sourceInterfaces: sourceRaw,
			targetInterfaces: targetRaw,
		})
	}
	return nil
}

func compileTemplateOperations(tb *tmplBuild, pluginTypes map[string]*TypeDef, path []string) error {
	childPath := append(append([]string{}, path...), tb.name)
	ops, _, err := CompileInterfaces(tb.mergedInterfaces, pluginTypes, nil, nil, false, childPath)
	if err != nil {
		return err
	}
	tb.operations = ops
	return nil
}

func propagateHostIDs(builds map[string]*tmplBuild, order []string) error {
	resolved := map[string]bool{}
	for _, name := range order {
		tb := builds[name]
		if isHostType(tb.typeDef.TypeHierarchy) {
			tb.hostID = name
			resolved[name] = true
		}
	}

	for progress := true; progress; {
		progress = false
		for _, name := range order {
			tb := builds[name]
			if resolved[name] {
				continue
			}
			target := hostedOnTarget(tb)
			if target == "" {
				resolved[name] = true // no HostedOn chain: host_id stays empty
				continue
			}
			if resolved[target] {
				tb.hostID = builds[target].hostID
				resolved[name] = true
				progress = true
			}
		}
	}

	for _, name := range order {
		if !resolved[name] {
			return bperrors.Logicf(bperrors.CodeCyclicDerivedFrom, value.Location{StartLine: -1, StartCol: -1}, []string{"node_templates", name},
				"cyclic HostedOn chain involving %q", name)
		}
	}
	return nil
}

// isHostType reports whether a node type's hierarchy descends from the
// Compute root type, making any template of this type its own host.
func isHostType(hierarchy []string) bool {
	for _, t := range hierarchy {
		if t == ComputeRootType {
			return true
		}
	}
	return false
}

func hostedOnTarget(tb *tmplBuild) string {
	for _, r := range tb.relationships {
		if ContainsHostedOn(r.typeHierarchy) {
			return r.targetName
		}
	}
	return ""
}

func computePluginSets(builds map[string]*tmplBuild, order []string) error {
	for _, name := range order {
		tb := builds[name]
		set := map[plan.Plugin]bool{}
		for _, op := range tb.operations {
			addPlugin(set, op)
		}
		for _, r := range tb.relationships {
			for _, op := range r.sourceOperations {
				addPlugin(set, op)
			}
		}
		tb.plugins = sortedPlugins(set)

		if tb.hostID == "" {
			for _, p := range tb.plugins {
				if p.Executor == plan.ExecutorHostAgent {
					return bperrors.Logicf(bperrors.CodeOrphanHostAgentPlugin, value.Location{StartLine: -1, StartCol: -1}, []string{"node_templates", name},
						"node %q has a host_agent plugin %q but no host", name, p.Name)
				}
			}
		}
	}

	// target_operations contribute plugins to the relationship's target
	// template itself, matching "anchored to this node" in spec §4.4
	// step 5.
	for _, name := range order {
		tb := builds[name]
		for _, r := range tb.relationships {
			target, ok := builds[r.targetName]
			if !ok {
				continue
			}
			set := map[plan.Plugin]bool{}
			for _, p := range target.plugins {
				set[p] = true
			}
			for _, op := range r.targetOperations {
				addPlugin(set, op)
			}
			target.plugins = sortedPlugins(set)
		}
	}
	return nil
}

func addPlugin(set map[plan.Plugin]bool, op *plan.Operation) {
	if op == nil || op.Plugin == nil {
		return
	}
	set[plan.Plugin{Name: *op.Plugin, Executor: op.Executor}] = true
}

func sortedPlugins(set map[plan.Plugin]bool) []plan.Plugin {
	out := make([]plan.Plugin, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].Executor < out[b].Executor
	})
	return out
}

func toPlanNodeTemplate(tb *tmplBuild) *plan.NodeTemplate {
	nt := &plan.NodeTemplate{
		Name:                       tb.name,
		ID:                         tb.name,
		Type:                       tb.typeName,
		TypeHierarchy:              tb.typeDef.TypeHierarchy,
		Properties:                 tb.properties,
		Interfaces:                 interfaceImplementations(tb.mergedInterfaces),
		Operations:                 tb.operations,
		HostID:                     tb.hostID,
		InstancesDeploy:            tb.instancesDeploy,
		Plugins:                    tb.plugins,
		DeploymentPluginsToInstall: pluginsByExecutor(tb.plugins, plan.ExecutorCentralDeploymentAgent),
	}
	for _, r := range tb.relationships {
		nt.Relationships = append(nt.Relationships, &plan.Relationship{
			Type:             r.typeName,
			TargetID:         r.targetName,
			Properties:       r.properties,
			SourceOperations: r.sourceOperations,
			TargetOperations: r.targetOperations,
			SourceInterfaces: r.sourceInterfaces,
			TargetInterfaces: r.targetInterfaces,
			TypeHierarchy:    r.typeHierarchy,
		})
	}
	return nt
}

func interfaceImplementations(merged map[string]map[string]MergedOperation) map[string]map[string]string {
	out := map[string]map[string]string{}
	for iface, ops := range merged {
		out[iface] = map[string]string{}
		for op, mo := range ops {
			out[iface][op] = mo.Implementation
		}
	}
	return out
}

func pluginsByExecutor(plugins []plan.Plugin, executor plan.Executor) []plan.Plugin {
	var out []plan.Plugin
	for _, p := range plugins {
		if p.Executor == executor {
			out = append(out, p)
		}
	}
	return out
}

// PluginsToInstallPerHost computes, for every node that is its own
// host, the union of local-executor plugins across every template
// hosted on it (spec §4.4 step 7).
func PluginsToInstallPerHost(nodes []*plan.NodeTemplate) map[string][]plan.Plugin {
	byID := map[string]*plan.NodeTemplate{}
	for _, n := range nodes {
		byID[n.ID] = n
	}

	result := map[string][]plan.Plugin{}
	for _, host := range nodes {
		if host.HostID != host.ID {
			continue
		}
		set := map[plan.Plugin]bool{}
		for _, n := range nodes {
			if n.HostID != host.ID {
				continue
			}
			for _, p := range n.Plugins {
				if p.Executor == plan.ExecutorLocal {
					set[p] = true
				}
			}
		}
		plugins := make([]plan.Plugin, 0, len(set))
		for p := range set {
			plugins = append(plugins, p)
		}
		sort.Slice(plugins, func(a, b int) bool {
			if plugins[a].Name != plugins[b].Name {
				return plugins[a].Name < plugins[b].Name
			}
			return plugins[a].Executor < plugins[b].Executor
		})
		result[host.ID] = plugins
		host.PluginsToInstall = plugins
	}
	return result
}
