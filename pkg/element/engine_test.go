package element

import (
	"testing"

	"github.com/blueprintlang/blueprint/pkg/value"
	"github.com/blueprintlang/blueprint/pkg/version"
)

func TestBuildAndRunDictOfLeaves(t *testing.T) {
	leaf := &Class{ClassName: "leaf", SchemaOf: Schema{Kind: Leaf, ScalarTypes: []ScalarType{StringType}}}
	dict := &Class{ClassName: "dict", SchemaOf: Schema{Kind: Dict, Child: leaf}}

	root := value.NewMapping(value.Location{})
	root.Set("a", value.NewScalar("1", value.Location{}))
	root.Set("b", value.NewScalar("2", value.Location{}))

	ctx := NewContext(version.Parse("1.0"))
	tree, err := BuildTree(ctx, root, dict)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	got, err := Run(ctx, tree)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	m, ok := got.(map[string]interface{})
	if !ok {
		t.Fatalf("result type = %T", got)
	}
	if m["a"] != "1" || m["b"] != "2" {
		t.Errorf("result = %v", m)
	}
}

func TestRequiresBindingOrdersAndBinds(t *testing.T) {
	producer := &Class{
		ClassName: "producer",
		SchemaOf:  Schema{Kind: Leaf, ScalarTypes: []ScalarType{StringType}},
		Provides:  []string{"val"},
		CalculateProvided: func(i *Instance) map[string]interface{} {
			v, _ := i.InitialValue().Scalar()
			return map[string]interface{}{"val": v}
		},
	}
	var sawBinding string
	consumer := &Class{
		ClassName: "consumer",
		SchemaOf:  Schema{Kind: Leaf, ScalarTypes: []ScalarType{StringType}},
		Requires: []RequiresEdge{{
			TargetClass: "producer",
			Bindings:    []Binding{{Keyword: "v", Kind: BindField, Field: "val", Required: true}},
		}},
		Validate: func(i *Instance, bindings map[string]interface{}) error {
			sawBinding, _ = bindings["v"].(string)
			return nil
		},
	}
	root := &Class{ClassName: "root", SchemaOf: Schema{Kind: Fields, Fields: []FieldEntry{
		{Name: "producer", Class: producer},
		{Name: "consumer", Class: consumer},
	}}}

	rootVal := value.NewMapping(value.Location{})
	rootVal.Set("producer", value.NewScalar("hello", value.Location{}))
	rootVal.Set("consumer", value.NewScalar("ignored", value.Location{}))

	ctx := NewContext(version.Parse("1.0"))
	tree, err := BuildTree(ctx, rootVal, root)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if _, err := Run(ctx, tree); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sawBinding != "hello" {
		t.Errorf("consumer saw binding %q, want hello", sawBinding)
	}
}

func TestUnknownFieldsKeyIsFormatError(t *testing.T) {
	leaf := &Class{ClassName: "leaf", SchemaOf: Schema{Kind: Leaf}}
	root := &Class{ClassName: "root", SchemaOf: Schema{Kind: Fields, Fields: []FieldEntry{{Name: "known", Class: leaf}}}}

	rootVal := value.NewMapping(value.Location{})
	rootVal.Set("unknown", value.NewScalar("x", value.Location{}))

	ctx := NewContext(version.Parse("1.0"))
	if _, err := BuildTree(ctx, rootVal, root); err == nil {
		t.Fatal("expected format error for unknown key")
	}
}

func TestMissingRequiredFieldIsFormatError(t *testing.T) {
	leaf := &Class{ClassName: "leaf", SchemaOf: Schema{Kind: Leaf}, Required: true}
	root := &Class{ClassName: "root", SchemaOf: Schema{Kind: Fields, Fields: []FieldEntry{{Name: "needed", Class: leaf}}}}

	rootVal := value.NewMapping(value.Location{})

	ctx := NewContext(version.Parse("1.0"))
	if _, err := BuildTree(ctx, rootVal, root); err == nil {
		t.Fatal("expected format error for missing required field")
	}
}

func TestParentParsesAfterChildrenDespiteUnrelatedRequiresEdge(t *testing.T) {
	// "child" has a Requires edge onto its sibling "gate", which used to
	// give the Fields root itself a bogus in-degree of 0 (the root
	// declares no Requires of its own) and let the root's default parse
	// -- which reads every child's already-computed ParsedValue -- run
	// before "child" had been processed at all.
	var parseOrder []string

	gate := &Class{
		ClassName: "gate",
		SchemaOf:  Schema{Kind: Leaf, ScalarTypes: []ScalarType{StringType}},
		Provides:  []string{"ready"},
		CalculateProvided: func(i *Instance) map[string]interface{} {
			parseOrder = append(parseOrder, "gate")
			return map[string]interface{}{"ready": true}
		},
	}
	child := &Class{
		ClassName: "child",
		SchemaOf:  Schema{Kind: Leaf, ScalarTypes: []ScalarType{StringType}},
		Requires: []RequiresEdge{{
			TargetClass: "gate",
			Bindings:    []Binding{{Keyword: "g", Kind: BindField, Field: "ready", Required: true}},
		}},
		Validate: func(i *Instance, bindings map[string]interface{}) error {
			parseOrder = append(parseOrder, "child")
			return nil
		},
	}
	root := &Class{
		ClassName: "root",
		SchemaOf: Schema{Kind: Fields, Fields: []FieldEntry{
			{Name: "child", Class: child},
			{Name: "gate", Class: gate},
		}},
		Validate: func(i *Instance, bindings map[string]interface{}) error {
			parseOrder = append(parseOrder, "root")
			return nil
		},
	}

	rootVal := value.NewMapping(value.Location{})
	rootVal.Set("child", value.NewScalar("c", value.Location{}))
	rootVal.Set("gate", value.NewScalar("g", value.Location{}))

	ctx := NewContext(version.Parse("1.0"))
	tree, err := BuildTree(ctx, rootVal, root)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	got, err := Run(ctx, tree)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	m := got.(map[string]interface{})
	if m["child"] != "c" || m["gate"] != "g" {
		t.Errorf("result = %v", m)
	}
	if len(parseOrder) != 3 || parseOrder[2] != "root" {
		t.Errorf("parseOrder = %v, want root validated last", parseOrder)
	}
}

func TestVersionGateRejectsOldDocument(t *testing.T) {
	gated := &Class{ClassName: "gated", SchemaOf: Schema{Kind: Leaf}, MinVersion: "1.1"}

	rootVal := value.NewScalar("x", value.Location{})
	ctx := NewContext(version.Parse("1.0"))
	tree, err := BuildTree(ctx, rootVal, gated)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if _, err := Run(ctx, tree); err == nil {
		t.Fatal("expected version gate error")
	}
}
