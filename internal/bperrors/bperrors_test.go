package bperrors

import (
	"strings"
	"testing"

	"github.com/blueprintlang/blueprint/pkg/value"
)

func TestErrorString(t *testing.T) {
	loc := value.Location{File: "bp.yaml", StartLine: 4, StartCol: 2}
	err := Logicf(CodeOrphanHostAgentPlugin, loc, []string{"node_templates", "t"}, "plugin %q has no host", "agent")

	got := err.Error()
	for _, want := range []string{"logic", "24", "node_templates.t", "bp.yaml:4:2", `plugin "agent" has no host`} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}

func TestAs(t *testing.T) {
	var err error = Formatf(CodeMissingRequiredField, value.Location{StartLine: -1}, nil, "missing field")
	e, ok := As(err)
	if !ok {
		t.Fatal("As returned false for *Error")
	}
	if e.Kind != Format || e.Code != CodeMissingRequiredField {
		t.Errorf("unexpected kind/code: %v/%d", e.Kind, e.Code)
	}
}

func TestPathIsCopied(t *testing.T) {
	path := []string{"a", "b"}
	err := SchemaAPIf(CodeCyclicRequires, value.Location{StartLine: -1}, path, "cycle")
	path[0] = "mutated"
	if err.Path[0] != "a" {
		t.Errorf("Error.Path aliases caller slice: got %v", err.Path)
	}
}
