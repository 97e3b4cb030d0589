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

// Package treeprint renders a *plan.Plan as an indented, human-readable
// tree: one line per node template, with relationships, operations and
// plugin sets nested underneath.
package treeprint

import (
	"fmt"
	"io"
	"sort"

	"github.com/blueprintlang/blueprint/pkg/indent"
	"github.com/blueprintlang/blueprint/pkg/plan"
)

// Write writes p's nodes, sorted by name, to w.
func Write(w io.Writer, p *plan.Plan) {
	fmt.Fprintf(w, "version: %s\n", p.Version)
	nodes := append([]*plan.NodeTemplate(nil), p.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	for _, n := range nodes {
		writeNode(w, n)
	}
	if len(p.DeploymentPluginsToInstall) > 0 {
		fmt.Fprintf(w, "deployment_plugins: {\n")
		writePlugins(indent.NewWriter(w, "  "), p.DeploymentPluginsToInstall)
		fmt.Fprintln(w, "}")
	}
}

// writeNode writes n and everything hung off it to w.
func writeNode(w io.Writer, n *plan.NodeTemplate) {
	fmt.Fprintf(w, "%s: %s {\n", n.Name, n.Type) //}
	body := indent.NewWriter(w, "  ")
	if n.HostID != "" {
		fmt.Fprintf(body, "host: %s\n", n.HostID)
	}
	fmt.Fprintf(body, "instances: %d\n", n.InstancesDeploy)

	if len(n.Properties) > 0 {
		fmt.Fprintf(body, "properties: {\n")
		writeScalarMap(indent.NewWriter(body, "  "), n.Properties)
		fmt.Fprintln(body, "}")
	}

	if len(n.Operations) > 0 {
		fmt.Fprintf(body, "operations: {\n")
		writeOperations(indent.NewWriter(body, "  "), n.Operations)
		fmt.Fprintln(body, "}")
	}

	for _, r := range n.Relationships {
		fmt.Fprintf(body, "-> %s: %s {\n", r.TargetID, r.Type) //}
		writeOperations(indent.NewWriter(body, "  "), r.SourceOperations)
		fmt.Fprintln(body, "}")
	}

	if len(n.Plugins) > 0 {
		fmt.Fprintf(body, "plugins: {\n")
		writePlugins(indent.NewWriter(body, "  "), n.Plugins)
		fmt.Fprintln(body, "}")
	}
	// { to keep brace matching working in an editor scanning this file
	fmt.Fprintln(w, "}")
}

func writeScalarMap(w io.Writer, m map[string]interface{}) {
	var names []string
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(w, "%s: %v\n", k, m[k])
	}
}

func writeOperations(w io.Writer, ops map[string]*plan.Operation) {
	var names []string
	for k := range ops {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		op := ops[k]
		if op.Plugin == nil {
			fmt.Fprintf(w, "%s: (unimplemented)\n", k)
			continue
		}
		fmt.Fprintf(w, "%s: %s.%s [%s]\n", k, *op.Plugin, op.Operation, op.Executor)
	}
}

func writePlugins(w io.Writer, plugins []plan.Plugin) {
	for _, p := range plugins {
		fmt.Fprintf(w, "%s [%s]\n", p.Name, p.Executor)
	}
}
