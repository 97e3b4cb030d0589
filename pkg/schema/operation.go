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
	"strings"

	"github.com/blueprintlang/blueprint/internal/bperrors"
	"github.com/blueprintlang/blueprint/pkg/functions"
	"github.com/blueprintlang/blueprint/pkg/plan"
	"github.com/blueprintlang/blueprint/pkg/value"
)

// ScriptPluginName is the reserved built-in script plugin (spec §4.5,
// Open Question 4 in SPEC_FULL.md).
const ScriptPluginName = "script"

// ScriptTaskName is the task run when an operation's implementation
// resolves to the script plugin outside a workflow context, qualified
// under the script-runner module the same way the plugin's other
// tasks are (spec §4.5, Open Question 4 in SPEC_FULL.md).
const ScriptTaskName = "script_runner.tasks.run"

// WorkflowScriptTaskName is the task run when the script plugin is
// invoked inside a workflow operation.
const WorkflowScriptTaskName = "script_runner.tasks.execute_workflow"

// CompileInterfaces turns merged interfaces into the doubly-keyed
// operation map described by spec §4.5: every operation is stored
// under both its bare name and its "interface.operation" qualified
// name, with bare-name collisions across interfaces dropping the bare
// entry.
func CompileInterfaces(merged map[string]map[string]MergedOperation, plugins map[string]*TypeDef, operationSchemas map[string]map[string]PropertySchema, funcs *functions.Registry, inWorkflow bool, path []string) (map[string]*plan.Operation, map[string]map[string]string, error) {
	ops := map[string]*plan.Operation{}
	seenBare := map[string]bool{}
	collided := map[string]bool{}
	rawIfaces := map[string]map[string]string{}

	for ifaceName, operations := range merged {
		rawIfaces[ifaceName] = map[string]string{}
		for opName, mo := range operations {
			rawIfaces[ifaceName][opName] = mo.Implementation

			rec, err := compileOne(mo, plugins, operationSchemas[ifaceName+"."+opName], funcs, inWorkflow, append(path, ifaceName, opName))
			if err != nil {
				return nil, nil, err
			}
			qualified := ifaceName + "." + opName
			ops[qualified] = rec

			if seenBare[opName] {
				collided[opName] = true
			}
			seenBare[opName] = true
			ops[opName] = rec
		}
	}

	for bare := range collided {
		delete(ops, bare)
	}
	return ops, rawIfaces, nil
}

func compileOne(mo MergedOperation, plugins map[string]*TypeDef, opSchema map[string]PropertySchema, funcs *functions.Registry, inWorkflow bool, path []string) (*plan.Operation, error) {
	executor := plan.Executor(mo.Executor)
	if executor == "" {
		executor = plan.ExecutorLocal
	}

	rec := &plan.Operation{
		Inputs:        mergeOperationInputs(opSchema, mo.Inputs),
		Executor:      executor,
		MaxRetries:    mo.MaxRetries,
		RetryInterval: mo.RetryInterval,
	}

	if mo.Implementation == "" {
		return rec, nil
	}

	idx := strings.LastIndex(mo.Implementation, ".")
	var pluginName, opName string
	if idx < 0 {
		pluginName, opName = "", mo.Implementation
	} else {
		pluginName, opName = mo.Implementation[:idx], mo.Implementation[idx+1:]
	}

	if _, ok := plugins[pluginName]; ok {
		rec.Plugin = &pluginName
		rec.Operation = opName
		return rec, nil
	}

	// Not a declared plugin: treat the whole implementation as a script
	// path run by the built-in script plugin.
	script := ScriptPluginName
	rec.Plugin = &script
	rec.ScriptPath = mo.Implementation
	if inWorkflow {
		rec.Operation = WorkflowScriptTaskName
	} else {
		rec.Operation = ScriptTaskName
	}
	return rec, nil
}

func mergeOperationInputs(schema map[string]PropertySchema, instance map[string]interface{}) map[string]interface{} {
	result := map[string]interface{}{}
	for name, ps := range schema {
		if v, ok := instance[name]; ok {
			result[name] = v
		} else if ps.HasDefault {
			result[name] = ps.Default.Restore()
		}
	}
	for k, v := range instance {
		if _, ok := schema[k]; !ok {
			result[k] = v
		}
	}
	return result
}

// RequireOperationInputs validates that every mandatory input (schema
// entry with no default) was supplied, per the missing-input boundary
// behavior of spec §8.
func RequireOperationInputs(schema map[string]PropertySchema, inputs map[string]interface{}, path []string) error {
	for name, ps := range schema {
		if ps.HasDefault {
			continue
		}
		if _, ok := inputs[name]; !ok {
			return bperrors.Logicf(bperrors.CodeMissingMandatoryInput, value.Location{StartLine: -1, StartCol: -1}, append(path, name),
				"missing required input %q", name)
		}
	}
	return nil
}
