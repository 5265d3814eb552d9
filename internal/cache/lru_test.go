package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/strictjson/pkg/types"
)

const userSchema = `{
  "root": "User",
  "types": {"User": {"fields": {"name": {"type": "string", "required": true}}}}
}`

func TestLoaderCachesByDigest(t *testing.T) {
	l, err := NewLoader(8)
	require.NoError(t, err)

	first, lerr := l.Load([]byte(userSchema))
	require.Nil(t, lerr)
	second, lerr := l.Load([]byte(userSchema))
	require.Nil(t, lerr)
	assert.Same(t, first, second, "identical documents share one registry")
	assert.Equal(t, 1, l.Len())
}

func TestLoaderDistinctDocuments(t *testing.T) {
	l, err := NewLoader(8)
	require.NoError(t, err)

	a, lerr := l.Load([]byte(userSchema))
	require.Nil(t, lerr)
	other := `{"root": "T", "types": {"T": {"fields": {"x": {"type": "int64"}}}}}`
	b, lerr := l.Load([]byte(other))
	require.Nil(t, lerr)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, l.Len())
}

func TestLoaderDoesNotCacheFailures(t *testing.T) {
	l, err := NewLoader(8)
	require.NoError(t, err)

	bad := []byte(`{"root": "Ghost", "types": {"T": {"fields": {}}}}`)
	_, lerr := l.Load(bad)
	require.NotNil(t, lerr)
	assert.Equal(t, types.KindSchema, lerr.Kind)
	assert.Equal(t, 0, l.Len())
}

func TestLoaderConcurrentLoadsShareResult(t *testing.T) {
	l, err := NewLoader(8)
	require.NoError(t, err)

	const n = 32
	results := make([]any, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg, lerr := l.Load([]byte(userSchema))
			if lerr != nil {
				t.Errorf("load %d: %v", i, lerr)
				return
			}
			results[i] = reg
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}
