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

package treeprint

import (
	"bytes"
	"strings"
	"testing"

	"github.com/blueprintlang/blueprint/pkg/plan"
)

func TestWriteIncludesNodeNameAndHost(t *testing.T) {
	p := &plan.Plan{
		Version: "tosca_simple_yaml_1_0",
		Nodes: []*plan.NodeTemplate{
			{Name: "app", Type: "tosca.nodes.Application", HostID: "vm", InstancesDeploy: 1},
			{Name: "vm", Type: "tosca.nodes.Compute", HostID: "vm", InstancesDeploy: 1},
		},
	}
	var buf bytes.Buffer
	Write(&buf, p)
	out := buf.String()

	for _, want := range []string{"app: tosca.nodes.Application", "host: vm", "vm: tosca.nodes.Compute"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSortsNodesByName(t *testing.T) {
	p := &plan.Plan{
		Nodes: []*plan.NodeTemplate{
			{Name: "zeta", Type: "t"},
			{Name: "alpha", Type: "t"},
		},
	}
	var buf bytes.Buffer
	Write(&buf, p)
	out := buf.String()
	if strings.Index(out, "alpha") > strings.Index(out, "zeta") {
		t.Errorf("expected alpha before zeta:\n%s", out)
	}
}
