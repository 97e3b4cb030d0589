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
	"github.com/blueprintlang/blueprint/internal/bperrors"
	"github.com/blueprintlang/blueprint/pkg/functions"
	"github.com/blueprintlang/blueprint/pkg/value"
	"github.com/blueprintlang/blueprint/pkg/version"
)

// Context is the traversal context shared by every Instance built and
// run together: the document's declared version, the function
// registry, and the arena of every instantiated element. Elements hold
// no pointers to each other; all cross-element navigation during DAG
// construction goes through Context.instances.
type Context struct {
	DocumentVersion version.Ordinal
	Functions       *functions.Registry

	instances []*Instance
}

// NewContext returns a Context with a default function registry.
func NewContext(docVersion version.Ordinal) *Context {
	return &Context{DocumentVersion: docVersion, Functions: functions.NewRegistry()}
}

func (c *Context) register(i *Instance) {
	c.instances = append(c.instances, i)
}

// resolvedEdge pairs a dependent instance with the instances that
// satisfy one of its RequiresEdge entries, precomputed once so the
// processing pass only needs to read already-computed Provided/Parsed
// values in topological order.
type resolvedEdge struct {
	binding Binding
	targets []*Instance
}

// Run builds the dependency DAG, then visits every instance once in
// topological order, running its version gate, validate,
// calculate_provided and parse in turn before moving to the next
// instance. It returns the root's parsed value, which callers treat as
// the plan.
func Run(ctx *Context, root *Instance) (interface{}, error) {
	order, edges, err := buildDAG(ctx)
	if err != nil {
		return nil, err
	}

	for _, inst := range order {
		if inst.class.MinVersion != "" {
			min := version.Parse(inst.class.MinVersion)
			if ctx.DocumentVersion.LessThan(min) {
				return nil, bperrors.Logicf(bperrors.CodeVersionTooOld, inst.Location(), inst.Path(),
					"%s requires version %s, document declares %s", inst.class.ClassName, min.String(), ctx.DocumentVersion.String())
			}
		}

		bindings := resolveBindings(edges[inst])

		if inst.class.Validate != nil {
			if err := inst.class.Validate(inst, bindings); err != nil {
				return nil, err
			}
		}

		if inst.class.CalculateProvided != nil {
			inst.provided = inst.class.CalculateProvided(inst)
		}

		parseFn := inst.class.Parse
		if parseFn == nil {
			parseFn = DefaultParse
		}
		parsed, err := parseFn(inst, bindings)
		if err != nil {
			return nil, err
		}
		inst.parsed = parsed
		inst.parsedSet = true
	}

	return root.ParsedValue(), nil
}

func resolveBindings(resolved []resolvedEdge) map[string]interface{} {
	bindings := make(map[string]interface{}, len(resolved))
	for _, r := range resolved {
		switch r.binding.Kind {
		case BindField:
			if r.binding.Multiple {
				vals := make([]interface{}, 0, len(r.targets))
				for _, t := range r.targets {
					if t.provided != nil {
						vals = append(vals, t.provided[r.binding.Field])
					}
				}
				bindings[r.binding.Keyword] = vals
			} else if len(r.targets) > 0 && r.targets[0].provided != nil {
				bindings[r.binding.Keyword] = r.targets[0].provided[r.binding.Field]
			}
		case BindValue, BindRequirement:
			if r.binding.Multiple {
				vals := make([]interface{}, len(r.targets))
				for idx, t := range r.targets {
					vals[idx] = t.ParsedValue()
				}
				bindings[r.binding.Keyword] = vals
			} else if len(r.targets) > 0 {
				bindings[r.binding.Keyword] = r.targets[0].ParsedValue()
			}
		}
	}
	return bindings
}

// buildDAG matches every instance's Requires edges against the full
// instance arena, builds an adjacency graph, and returns a topological
// order together with each instance's resolved edges. A cycle is
// reported as a SchemaAPI error, per spec §7.
func buildDAG(ctx *Context) ([]*Instance, map[*Instance][]resolvedEdge, error) {
	byClass := map[string][]*Instance{}
	for _, inst := range ctx.instances {
		byClass[inst.class.ClassName] = append(byClass[inst.class.ClassName], inst)
	}

	edges := make(map[*Instance][]resolvedEdge, len(ctx.instances))
	inDegree := make(map[*Instance]int, len(ctx.instances))
	dependents := make(map[*Instance][]*Instance)

	for _, inst := range ctx.instances {
		inDegree[inst] = 0
	}

	// A Dict/Fields/List element's default parse reads every child's
	// already-computed ParsedValue, so every child must be validated and
	// parsed before its parent regardless of any cross-class Requires
	// edge. This structural ordering is independent of the functional
	// dependencies resolved below.
	for _, inst := range ctx.instances {
		for _, child := range inst.children {
			inDegree[inst]++
			dependents[child] = append(dependents[child], inst)
		}
	}

	for _, inst := range ctx.instances {
		for _, edge := range inst.class.Requires {
			targetClass := edge.TargetClass
			if targetClass == "self" {
				targetClass = inst.class.ClassName
			}
			candidates := byClass[targetClass]

			for _, binding := range edge.Bindings {
				var matched []*Instance
				for _, cand := range candidates {
					if cand == inst {
						continue
					}
					if binding.Predicate != nil && !binding.Predicate(inst, cand) {
						continue
					}
					matched = append(matched, cand)
				}
				if len(matched) == 0 && binding.Required && binding.Kind != BindRequirement {
					return nil, nil, bperrors.SchemaAPIf(bperrors.CodeCyclicRequires, inst.Location(), inst.Path(),
						"no instance of %q satisfies required dependency %q", targetClass, binding.Keyword)
				}
				edges[inst] = append(edges[inst], resolvedEdge{binding: binding, targets: matched})
				for _, m := range matched {
					inDegree[inst]++
					dependents[m] = append(dependents[m], inst)
				}
			}
		}
	}

	var queue []*Instance
	for _, inst := range ctx.instances {
		if inDegree[inst] == 0 {
			queue = append(queue, inst)
		}
	}

	var order []*Instance
	for len(queue) > 0 {
		inst := queue[0]
		queue = queue[1:]
		order = append(order, inst)
		for _, dep := range dependents[inst] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(ctx.instances) {
		var stuck []string
		for _, inst := range ctx.instances {
			if inDegree[inst] > 0 {
				stuck = append(stuck, inst.class.ClassName)
			}
		}
		return nil, nil, bperrors.SchemaAPIf(bperrors.CodeCyclicRequires, value.Location{StartLine: -1, StartCol: -1}, nil,
			"cyclic requires dependency among: %v", stuck)
	}

	return order, edges, nil
}
