package holder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSimpleMapping(t *testing.T) {
	text := "tosca_definitions_version: 1.0\nnode_types:\n  A:\n    properties:\n      k:\n        default: d\n"
	root, err := Load("bp.yaml", text)
	require.NoError(t, err)

	v, ok := root.Get("tosca_definitions_version")
	require.True(t, ok)
	scalar, _ := v.Scalar()
	assert.Equal(t, "1.0", scalar)
	assert.False(t, v.Location.Synthetic())
	assert.Equal(t, "bp.yaml", v.Location.File)

	nodeTypes, ok := root.Get("node_types")
	require.True(t, ok)
	a, ok := nodeTypes.Get("A")
	require.True(t, ok)
	props, ok := a.Get("properties")
	require.True(t, ok)
	k, ok := props.Get("k")
	require.True(t, ok)
	def, ok := k.Get("default")
	require.True(t, ok)
	defVal, _ := def.Scalar()
	assert.Equal(t, "d", defVal)
}

func TestLoadSequence(t *testing.T) {
	text := "imports:\n  - a.yaml\n  - b.yaml\n"
	root, err := Load("bp.yaml", text)
	require.NoError(t, err)

	imports, ok := root.Get("imports")
	require.True(t, ok)
	require.Equal(t, 2, imports.Len())
	first, _ := imports.Items()[0].Scalar()
	assert.Equal(t, "a.yaml", first)
}

func TestLoadEmptyDocument(t *testing.T) {
	root, err := Load("empty.yaml", "")
	require.NoError(t, err)
	assert.Equal(t, 0, root.Len())
}
