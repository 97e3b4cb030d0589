package version

import "testing"

func TestCompareBareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"1.1", "1.0", 1},
		{"1.9", "1.10", -1},
		{"1.0", "1.0.1", -1},
		{"2.0", "1.9", 1},
	}
	for _, tt := range tests {
		got := Parse(tt.a).Compare(Parse(tt.b))
		if got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompareToscaIdentifiers(t *testing.T) {
	a := Parse("tosca_simple_yaml_1_3")
	b := Parse("tosca_simple_yaml_1_4")
	if !a.LessThan(b) {
		t.Errorf("%v should be less than %v", a, b)
	}

	c := Parse("tosca_simple_yaml_1_3")
	d := Parse("1.3")
	if c.Compare(d) != 0 {
		t.Errorf("tosca_simple_yaml_1_3 should equal bare 1.3, got %d", c.Compare(d))
	}
}

func TestOrdinalStringPreservesOriginal(t *testing.T) {
	o := Parse("tosca_simple_yaml_1_3")
	if o.String() != "tosca_simple_yaml_1_3" {
		t.Errorf("String() = %q", o.String())
	}
}
