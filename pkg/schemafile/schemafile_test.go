package schemafile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/strictjson/pkg/bind"
	"github.com/usestring/strictjson/pkg/schema"
	"github.com/usestring/strictjson/pkg/types"
)

const orderSchema = `{
  "root": "Order",
  "types": {
    "Order": {
      "fields": {
        "id":        {"type": "int64", "required": true},
        "total":     {"type": "float64", "required": true},
        "placed_at": {"type": "timestamp", "required": true},
        "tags":      {"type": "set", "elem": {"type": "string"}},
        "lines":     {"type": "list", "elem": {"type": "ref", "name": "Line"}},
        "customer":  {"type": "ref", "name": "Customer", "nullable": true}
      }
    },
    "Line": {
      "fields": {
        "sku":   {"type": "string", "required": true},
        "count": {"type": "int32", "required": true}
      }
    },
    "Customer": {
      "fields": {
        "name": {"type": "string", "required": true}
      }
    }
  }
}`

func TestLoadResolvesTypes(t *testing.T) {
	reg, err := Load([]byte(orderSchema))
	require.Nil(t, err)

	root := reg.Root()
	assert.Equal(t, "Order", root.Name())

	// Field declaration order survives the document round trip.
	names := make([]string, 0, len(root.Fields()))
	for _, f := range root.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "total", "placed_at", "tags", "lines", "customer"}, names)

	lines, ok := root.FieldByName("lines")
	require.True(t, ok)
	require.Equal(t, schema.List, lines.Type.Kind())
	assert.Equal(t, "Line", lines.Type.Elem().Name())

	customer, ok := root.FieldByName("customer")
	require.True(t, ok)
	assert.True(t, customer.Nullable)
	assert.False(t, customer.Required)
}

func TestLoadedSchemaBinds(t *testing.T) {
	reg, err := Load([]byte(orderSchema))
	require.Nil(t, err)

	b := bind.New(reg, bind.DefaultOptions())
	n, berr := b.Decode(context.Background(), []byte(`{
	  "id": 9, "total": 24.50, "placed_at": "2025-01-01T00:00:00Z",
	  "lines": [{"sku": "A-1", "count": 2}],
	  "customer": null
	}`))
	require.Nil(t, berr)
	f, _ := n.Field("customer")
	assert.Equal(t, bind.ExplicitNull, f.Presence)
}

func TestLoadForwardReference(t *testing.T) {
	doc := `{
	  "root": "A",
	  "types": {
	    "A": {"fields": {"b": {"type": "ref", "name": "B"}}},
	    "B": {"fields": {"v": {"type": "int64"}}}
	  }
	}`
	_, err := Load([]byte(doc))
	assert.Nil(t, err, "refs may point at types declared later")
}

func TestLoadRejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing root key", `{"types": {"T": {"fields": {}}}}`},
		{"root names unknown type", `{"root": "Nope", "types": {"T": {"fields": {}}}}`},
		{"unknown scalar", `{"root": "T", "types": {"T": {"fields": {"x": {"type": "double"}}}}}`},
		{"list without elem", `{"root": "T", "types": {"T": {"fields": {"x": {"type": "list"}}}}}`},
		{"ref without name", `{"root": "T", "types": {"T": {"fields": {"x": {"type": "ref"}}}}}`},
		{"ref to unknown type", `{"root": "T", "types": {"T": {"fields": {"x": {"type": "ref", "name": "Ghost"}}}}}`},
		{"stray top-level key", `{"root": "T", "extra": 1, "types": {"T": {"fields": {}}}}`},
		{
			"self cycle",
			`{"root": "T", "types": {"T": {"fields": {"next": {"type": "ref", "name": "T"}}}}}`,
		},
		{
			"mutual cycle",
			`{"root": "A", "types": {
			   "A": {"fields": {"b": {"type": "ref", "name": "B"}}},
			   "B": {"fields": {"a": {"type": "ref", "name": "A"}}}}}`,
		},
		{
			"cycle through a list",
			`{"root": "T", "types": {"T": {"fields": {"kids": {"type": "list", "elem": {"type": "ref", "name": "T"}}}}}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.NotNil(t, err)
			assert.Equal(t, types.KindSchema, err.Kind, "got %v", err)
		})
	}
}

func TestLoadMalformedJSONKeepsLexicalKind(t *testing.T) {
	_, err := Load([]byte(`{"root": "T",`))
	require.NotNil(t, err)
	assert.NotEqual(t, types.KindSchema, err.Kind)
}

func TestLoadDepthOverTen(t *testing.T) {
	doc := `{"root": "L11", "types": {`
	doc += `"L1": {"fields": {"v": {"type": "int64"}}}`
	for i := 2; i <= 11; i++ {
		doc += fmt.Sprintf(`, "L%d": {"fields": {"child": {"type": "ref", "name": "L%d"}}}`, i, i-1)
	}
	doc += `}}`
	_, err := Load([]byte(doc))
	require.NotNil(t, err)
	assert.Equal(t, types.KindSchema, err.Kind)
}
