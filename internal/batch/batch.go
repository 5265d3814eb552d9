// Package batch decodes many independent payloads concurrently
// against one binder. Binds are pure, so fanning them out over a
// worker pool needs no coordination beyond the wait.
package batch

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/usestring/strictjson/pkg/bind"
	"github.com/usestring/strictjson/pkg/types"
)

// Result is the outcome for one payload. Exactly one of Node and Err
// is set.
type Result struct {
	Node *bind.Node
	Err  *types.Error
}

// Run decodes payloads on a pool of workers and returns results
// positionally aligned with the inputs. Results never mix payloads:
// each failure carries only its own document's error. When ctx
// expires, payloads not yet submitted are marked Cancelled and
// in-flight binds abort at their next boundary check.
func Run(ctx context.Context, b *bind.Binder, payloads [][]byte, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]Result, len(payloads))
	var wg sync.WaitGroup
	for i, data := range payloads {
		if ctxErr := ctx.Err(); ctxErr != nil {
			for j := i; j < len(payloads); j++ {
				results[j] = Result{Err: &types.Error{Kind: types.KindCancelled, Actual: ctxErr.Error()}}
			}
			break
		}
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			node, bindErr := b.Decode(ctx, data)
			results[i] = Result{Node: node, Err: bindErr}
		}); submitErr != nil {
			wg.Done()
			results[i] = Result{Err: &types.Error{Kind: types.KindCancelled, Actual: submitErr.Error()}}
		}
	}
	wg.Wait()
	return results, nil
}
