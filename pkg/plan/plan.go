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

// Package plan defines the fully-elaborated output of the engine: a
// flat list of node instances with merged properties, resolved type
// hierarchies, compiled interface operations and computed plugin
// installation requirements. Every record carries json tags so a
// caller (or cmd/blueprintc) can serialize a Plan directly.
package plan

// Executor classifies a Plugin by where its operations run.
type Executor string

const (
	ExecutorLocal                Executor = "local"
	ExecutorHostAgent            Executor = "host_agent"
	ExecutorCentralDeploymentAgent Executor = "central_deployment_agent"
)

// Plugin is one (plugin_name, executor) pair required to run a
// deployment. The same plugin under a different executor is a distinct
// Plugin.
type Plugin struct {
	Name     string   `json:"name"`
	Executor Executor `json:"executor"`
}

// Operation is a single invocable task on an interface.
type Operation struct {
	Plugin                 *string                `json:"plugin"`
	Operation              string                 `json:"operation"`
	Inputs                 map[string]interface{} `json:"inputs"`
	Executor               Executor               `json:"executor"`
	MaxRetries             *int                   `json:"max_retries"`
	RetryInterval          *float64               `json:"retry_interval"`
	HasIntrinsicFunctions  bool                   `json:"has_intrinsic_functions"`
	ScriptPath             string                 `json:"script_path,omitempty"`
}

// Relationship is one elaborated relationship instance hung off a node
// template.
type Relationship struct {
	Type              string                `json:"type"`
	TargetID          string                `json:"target_id"`
	Properties        map[string]interface{} `json:"properties"`
	SourceInterfaces  map[string]map[string]string `json:"source_interfaces"`
	TargetInterfaces  map[string]map[string]string `json:"target_interfaces"`
	SourceOperations  map[string]*Operation `json:"source_operations"`
	TargetOperations  map[string]*Operation `json:"target_operations"`
	TypeHierarchy     []string              `json:"type_hierarchy"`
}

// NodeTemplate is one elaborated node instance.
type NodeTemplate struct {
	Name                         string                  `json:"name"`
	ID                           string                  `json:"id"`
	Type                         string                  `json:"type"`
	TypeHierarchy                []string                `json:"type_hierarchy"`
	Properties                   map[string]interface{}  `json:"properties"`
	Interfaces                   map[string]map[string]string `json:"interfaces"`
	Operations                   map[string]*Operation   `json:"operations"`
	Relationships                []*Relationship         `json:"relationships"`
	HostID                       string                  `json:"host_id,omitempty"`
	InstancesDeploy              int                     `json:"instances_deploy"`
	Plugins                      []Plugin                `json:"plugins"`
	PluginsToInstall             []Plugin                `json:"plugins_to_install"`
	DeploymentPluginsToInstall   []Plugin                `json:"deployment_plugins_to_install"`
}

// Plan is the top-level elaborated output of the engine.
type Plan struct {
	Version                    string                     `json:"version"`
	Inputs                     map[string]interface{}     `json:"inputs"`
	Outputs                    map[string]interface{}     `json:"outputs"`
	DataTypes                  map[string]interface{}     `json:"data_types"`
	NodeTypes                  map[string]interface{}     `json:"node_types"`
	Relationships              map[string]interface{}     `json:"relationships"`
	Groups                     map[string]interface{}     `json:"groups"`
	Workflows                  map[string]interface{}     `json:"workflows"`
	PolicyTypes                map[string]interface{}     `json:"policy_types"`
	PolicyTriggers             map[string]interface{}     `json:"policy_triggers"`
	Policies                   map[string]interface{}     `json:"policies"`
	PluginsToInstallPerNode    map[string][]Plugin         `json:"plugins_to_install_per_node"`
	DeploymentPluginsToInstall []Plugin                    `json:"deployment_plugins_to_install"`
	WorkflowPluginsToInstall   []Plugin                    `json:"workflow_plugins_to_install"`
	Nodes                      []*NodeTemplate             `json:"nodes"`
}
