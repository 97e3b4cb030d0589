package resolve

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestStaticResolver(t *testing.T) {
	r := Static{"a.yaml": "content"}
	got, err := r.Resolve(context.Background(), "a.yaml")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "content" {
		t.Errorf("Resolve() = %q, want %q", got, "content")
	}

	_, err = r.Resolve(context.Background(), "missing.yaml")
	var nr *NotResolvable
	if !errors.As(err, &nr) {
		t.Fatalf("want NotResolvable, got %v", err)
	}
}

func TestDefaultResolverFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/bp.yaml"
	if err := os.WriteFile(path, []byte("tosca_definitions_version: 1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewDefault(nil)
	got, err := d.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "tosca_definitions_version: 1.0\n" {
		t.Errorf("Resolve() = %q", got)
	}

	if _, err := d.Resolve(context.Background(), dir+"/missing.yaml"); err == nil {
		t.Fatal("want error for missing file")
	}
}
