package functions

import (
	"testing"

	"github.com/blueprintlang/blueprint/pkg/value"
)

func TestParseRecognizesRegisteredFunction(t *testing.T) {
	r := NewRegistry()
	m := value.NewMapping(value.Location{})
	m.Set("get_input", value.NewScalar("port", value.Location{}))

	call, ok := r.Parse(m)
	if !ok {
		t.Fatal("Parse did not recognize get_input")
	}
	if call.Name != "get_input" {
		t.Errorf("call.Name = %q", call.Name)
	}
	arg, _ := call.Args.Scalar()
	if arg != "port" {
		t.Errorf("call.Args = %v", arg)
	}
}

func TestParseIgnoresOrdinaryData(t *testing.T) {
	r := NewRegistry()
	m := value.NewMapping(value.Location{})
	m.Set("default", value.NewScalar("d", value.Location{}))

	if _, ok := r.Parse(m); ok {
		t.Error("Parse treated ordinary mapping as a function call")
	}

	if _, ok := r.Parse(value.NewScalar("x", value.Location{})); ok {
		t.Error("Parse treated scalar as a function call")
	}
}

func TestRemoveAndReplace(t *testing.T) {
	r := NewRegistry()
	r.Remove("concat")
	m := value.NewMapping(value.Location{})
	m.Set("concat", value.NewScalar("a", value.Location{}))
	if _, ok := r.Parse(m); ok {
		t.Error("Parse still recognizes removed function")
	}

	r.Add(Descriptor{Name: "custom_fn"})
	m2 := value.NewMapping(value.Location{})
	m2.Set("custom_fn", value.NewScalar("x", value.Location{}))
	if _, ok := r.Parse(m2); !ok {
		t.Error("Parse does not recognize added function")
	}
}
