package batch

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

func testBinder(t *testing.T) *bind.Binder {
	t.Helper()
	reg, err := schema.NewRegistry(schema.ObjectOf("T",
		schema.Field{Name: "id", Type: schema.Int64Of(), Required: true}))
	require.Nil(t, err)
	return bind.New(reg, bind.DefaultOptions())
}

func TestRunPreservesOrder(t *testing.T) {
	b := testBinder(t)

	const n = 200
	payloads := make([][]byte, n)
	for i := range payloads {
		payloads[i] = []byte(fmt.Sprintf(`{"id": %d}`, i))
	}

	results, err := Run(context.Background(), b, payloads, 8)
	require.NoError(t, err)
	require.Len(t, results, n)
	for i, res := range results {
		require.Nil(t, res.Err, "payload %d", i)
		f, _ := res.Node.Field("id")
		assert.Equal(t, int64(i), f.Node.Int64())
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	b := testBinder(t)

	payloads := [][]byte{
		[]byte(`{"id": 1}`),
		[]byte(`{"id": "two"}`),
		[]byte(`{"id": 3}`),
	}
	results, err := Run(context.Background(), b, payloads, 2)
	require.NoError(t, err)

	assert.Nil(t, results[0].Err)
	require.NotNil(t, results[1].Err)
	assert.Equal(t, types.KindTypeMismatch, results[1].Err.Kind)
	assert.Nil(t, results[2].Err)
}

func TestRunCancelledContext(t *testing.T) {
	b := testBinder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payloads := [][]byte{[]byte(`{"id": 1}`), []byte(`{"id": 2}`)}
	results, err := Run(ctx, b, payloads, 2)
	require.NoError(t, err)
	for i, res := range results {
		require.NotNil(t, res.Err, "payload %d", i)
		assert.Equal(t, types.KindCancelled, res.Err.Kind)
	}
}

func TestRunSingleWorkerFloor(t *testing.T) {
	b := testBinder(t)
	results, err := Run(context.Background(), b, [][]byte{[]byte(`{"id": 5}`)}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Err)
}
