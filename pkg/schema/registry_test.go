package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/strictjson/pkg/types"
)

// withField wires a field after construction, standing in for a buggy
// generator emitting a recursive declaration.
func withField(t *Type, f Field) {
	t.index[f.Name] = len(t.fields)
	t.fields = append(t.fields, f)
}

func TestRegistryAcceptsValidSchema(t *testing.T) {
	address := ObjectOf("Address",
		Field{Name: "street", Type: StringOf(), Required: true},
		Field{Name: "city", Type: StringOf(), Required: true},
	)
	customer := ObjectOf("Customer",
		Field{Name: "name", Type: StringOf(), Required: true},
		Field{Name: "age", Type: Int32Of(), Nullable: true},
		Field{Name: "address", Type: address},
	)
	order := ObjectOf("Order",
		Field{Name: "id", Type: Int64Of(), Required: true},
		Field{Name: "total", Type: Float64Of(), Required: true},
		Field{Name: "placed_at", Type: TimestampOf(), Required: true},
		Field{Name: "customer", Type: customer, Required: true},
		Field{Name: "tags", Type: SetOf(StringOf())},
		Field{Name: "lines", Type: ListOf(Int64Of())},
	)

	reg, err := NewRegistry(order)
	require.Nil(t, err)
	assert.Same(t, order, reg.Root())

	f, ok := order.FieldByName("placed_at")
	require.True(t, ok)
	assert.Equal(t, Timestamp, f.Type.Kind())
	_, ok = order.FieldByName("PLACED_AT")
	assert.False(t, ok, "field lookup must be case-sensitive")
}

func TestRegistryRejectsNilRoot(t *testing.T) {
	_, err := NewRegistry(nil)
	require.NotNil(t, err)
	assert.Equal(t, types.KindSchema, err.Kind)
}

func TestRegistryRejectsDuplicateFieldNames(t *testing.T) {
	bad := ObjectOf("Bad",
		Field{Name: "x", Type: Int64Of()},
		Field{Name: "x", Type: StringOf()},
	)
	_, err := NewRegistry(bad)
	require.NotNil(t, err)
	assert.Equal(t, types.KindSchema, err.Kind)
	assert.Contains(t, err.Actual, `duplicate field "x"`)
}

func TestRegistryRejectsNilFieldType(t *testing.T) {
	bad := ObjectOf("Bad", Field{Name: "x"})
	_, err := NewRegistry(bad)
	require.NotNil(t, err)
	assert.Equal(t, types.KindSchema, err.Kind)
}

func TestRegistryRejectsCycle(t *testing.T) {
	// Schemas are built bottom-up, so a cycle needs late field wiring;
	// constructing one through a helper mirrors what a buggy generator
	// could emit.
	a := ObjectOf("A")
	b := ObjectOf("B", Field{Name: "a", Type: a})
	withField(a, Field{Name: "b", Type: b})

	_, err := NewRegistry(a)
	require.NotNil(t, err)
	assert.Equal(t, types.KindSchema, err.Kind)
	assert.Contains(t, err.Actual, "cycle")
}

func TestRegistryRejectsSelfReference(t *testing.T) {
	node := ObjectOf("Node")
	withField(node, Field{Name: "next", Type: node})
	_, err := NewRegistry(node)
	require.NotNil(t, err)
	assert.Equal(t, types.KindSchema, err.Kind)
}

func TestRegistryCycleThroughCollection(t *testing.T) {
	node := ObjectOf("Node")
	withField(node, Field{Name: "children", Type: ListOf(node)})
	_, err := NewRegistry(node)
	require.NotNil(t, err)
	assert.Equal(t, types.KindSchema, err.Kind)
}

func TestRegistryDepthBoundary(t *testing.T) {
	build := func(levels int) *Type {
		leaf := ObjectOf("L1", Field{Name: "v", Type: Int64Of()})
		for i := 2; i <= levels; i++ {
			leaf = ObjectOf(fmt.Sprintf("L%d", i), Field{Name: "child", Type: leaf})
		}
		return leaf
	}

	_, err := NewRegistry(build(MaxObjectDepth))
	assert.Nil(t, err, "exactly %d levels must register", MaxObjectDepth)

	_, err = NewRegistry(build(MaxObjectDepth + 1))
	require.NotNil(t, err)
	assert.Equal(t, types.KindSchema, err.Kind)
}

func TestRegistryDiamondIsNotACycle(t *testing.T) {
	shared := ObjectOf("Shared", Field{Name: "v", Type: StringOf()})
	left := ObjectOf("Left", Field{Name: "s", Type: shared})
	right := ObjectOf("Right", Field{Name: "s", Type: shared})
	root := ObjectOf("Root",
		Field{Name: "l", Type: left},
		Field{Name: "r", Type: right},
	)
	_, err := NewRegistry(root)
	assert.Nil(t, err)
}
