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

	"github.com/blueprintlang/blueprint/pkg/plan"
)

func TestCompileInterfacesResolvesDeclaredPlugin(t *testing.T) {
	merged := map[string]map[string]MergedOperation{
		"standard": {"create": {Implementation: "agent.create", Executor: "local"}},
	}
	plugins := map[string]*TypeDef{"agent": {Name: "agent"}}

	ops, _, err := CompileInterfaces(merged, plugins, nil, nil, false, nil)
	if err != nil {
		t.Fatalf("CompileInterfaces: %v", err)
	}
	op := ops["standard.create"]
	if op == nil || op.Plugin == nil || *op.Plugin != "agent" || op.Operation != "create" {
		t.Fatalf("op = %+v", op)
	}
	if bare := ops["create"]; bare == nil || bare.Plugin == nil || *bare.Plugin != "agent" {
		t.Errorf("expected bare-name alias for the sole create operation, got %+v", bare)
	}
}

func TestCompileInterfacesBareCollisionDropsBareAlias(t *testing.T) {
	merged := map[string]map[string]MergedOperation{
		"standard": {"create": {Implementation: "agent.create"}},
		"custom":   {"create": {Implementation: "agent.other_create"}},
	}
	plugins := map[string]*TypeDef{"agent": {Name: "agent"}}

	ops, _, err := CompileInterfaces(merged, plugins, nil, nil, false, nil)
	if err != nil {
		t.Fatalf("CompileInterfaces: %v", err)
	}
	if _, ok := ops["create"]; ok {
		t.Error("expected bare alias to be dropped on collision")
	}
	if ops["standard.create"] == nil || ops["custom.create"] == nil {
		t.Error("expected both qualified entries to survive")
	}
}

func TestCompileInterfacesUndeclaredPluginFallsBackToScript(t *testing.T) {
	merged := map[string]map[string]MergedOperation{
		"standard": {"create": {Implementation: "scripts/create.sh"}},
	}
	ops, _, err := CompileInterfaces(merged, map[string]*TypeDef{}, nil, nil, false, nil)
	if err != nil {
		t.Fatalf("CompileInterfaces: %v", err)
	}
	op := ops["standard.create"]
	if op.Plugin == nil || *op.Plugin != ScriptPluginName {
		t.Fatalf("expected script plugin fallback, got %+v", op)
	}
	if op.ScriptPath != "scripts/create.sh" {
		t.Errorf("ScriptPath = %q", op.ScriptPath)
	}
	if op.Operation != "script_runner.tasks.run" {
		t.Errorf("Operation = %q, want %q outside a workflow", op.Operation, "script_runner.tasks.run")
	}
}

func TestCompileInterfacesWorkflowUsesExecuteWorkflowTask(t *testing.T) {
	merged := map[string]map[string]MergedOperation{
		"custom": {"run_workflow": {Implementation: "workflows/deploy.sh"}},
	}
	ops, _, err := CompileInterfaces(merged, map[string]*TypeDef{}, nil, nil, true, nil)
	if err != nil {
		t.Fatalf("CompileInterfaces: %v", err)
	}
	if got := ops["custom.run_workflow"].Operation; got != "script_runner.tasks.execute_workflow" {
		t.Errorf("Operation = %q, want %q", got, "script_runner.tasks.execute_workflow")
	}
}

func TestCompileOneDefaultsExecutorAndCopiesRetry(t *testing.T) {
	retries := 3
	mo := MergedOperation{Implementation: "agent.create", Executor: "", MaxRetries: &retries}
	op, err := compileOne(mo, map[string]*TypeDef{"agent": {Name: "agent"}}, nil, nil, false, nil)
	if err != nil {
		t.Fatalf("compileOne: %v", err)
	}
	if op.Executor != plan.ExecutorLocal {
		t.Errorf("Executor = %q, want local default", op.Executor)
	}
	if op.MaxRetries == nil || *op.MaxRetries != 3 {
		t.Errorf("MaxRetries = %v, want 3", op.MaxRetries)
	}
}
